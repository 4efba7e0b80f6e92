package chat

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate 负责自动迁移聊天记录表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Message{}); err != nil {
		return fmt.Errorf("无法迁移chat_messages表: %w", err)
	}
	fmt.Println("ChatMessage数据库表迁移成功。")
	return nil
}
