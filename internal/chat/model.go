package chat

import (
	"time"
)

// Message 定义了一条聊天记录。只追加，从不编辑或删除。
type Message struct {
	ID uint `gorm:"primarykey"`

	// UserID 是会话所属用户，删除用户时级联清理。
	UserID uint `gorm:"not null;index"`

	// Text 是消息正文。
	Text string `gorm:"type:text;not null"`

	// IsFromUser 区分用户消息和助手回复。
	IsFromUser bool `gorm:"not null"`

	// ImageURL 是助手回复中提取的配图地址，可以为空。
	ImageURL string `gorm:"type:varchar(256)"`

	// Timestamp 是消息时间。
	Timestamp time.Time `gorm:"not null;index"`
}

// TableName 指定表名，与级联删除语句保持一致。
func (Message) TableName() string {
	return "chat_messages"
}
