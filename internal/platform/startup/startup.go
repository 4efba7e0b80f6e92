package startup

import (
	"fmt"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/activity"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/chat"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/steps"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"gorm.io/gorm"
)

// InitializeApplication 执行所有模块的数据库迁移。
// 任何一步失败都会中止启动流程。
func InitializeApplication(db *gorm.DB) error {
	fmt.Println("开始执行应用初始化...")

	if err := user.Migrate(db); err != nil {
		return fmt.Errorf("用户模块迁移失败: %w", err)
	}
	if err := activity.Migrate(db); err != nil {
		return fmt.Errorf("活动模块迁移失败: %w", err)
	}
	if err := steps.Migrate(db); err != nil {
		return fmt.Errorf("步数模块迁移失败: %w", err)
	}
	if err := chat.Migrate(db); err != nil {
		return fmt.Errorf("聊天模块迁移失败: %w", err)
	}

	fmt.Println("应用初始化成功完成。")
	return nil
}
