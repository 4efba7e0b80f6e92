package user

import (
	"time"
)

// User 定义了用户在SQLite数据库中的持久化模型。
// 密码只以bcrypt哈希形式存储，任何地方都不保留明文。
type User struct {
	ID uint `gorm:"primarykey"`

	// Username 是登录名，全局唯一。
	Username string `gorm:"type:varchar(64);uniqueIndex;not null"`

	// Email 用于接收一次性验证码，可以为空。
	Email string `gorm:"type:varchar(128)"`

	// PasswordHash 是bcrypt加盐哈希后的密码。
	PasswordHash string `gorm:"not null"`

	// StepGoal 是用户设置的每日步数目标，0表示尚未设置。
	StepGoal int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile 是对外暴露的用户信息，不包含任何口令材料。
type Profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	StepGoal int    `json:"stepGoal"`
}

// ProfileOf 将持久化模型裁剪为对外的Profile。
func ProfileOf(u *User) Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email, StepGoal: u.StepGoal}
}
