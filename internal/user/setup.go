package user

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate 负责自动迁移用户表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移users表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}
