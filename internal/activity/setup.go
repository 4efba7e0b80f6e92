package activity

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate 负责自动迁移活动日志表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("无法迁移activity_logs表: %w", err)
	}
	fmt.Println("ActivityLog数据库表迁移成功。")
	return nil
}
