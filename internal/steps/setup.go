package steps

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate 负责自动迁移每日步数表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&DailyStepRecord{}); err != nil {
		return fmt.Errorf("无法迁移daily_steps表: %w", err)
	}
	fmt.Println("DailySteps数据库表迁移成功。")
	return nil
}
