package activity

import (
	"time"
)

// --- 活动类别 ---
// 统计管道只认识这三类，其余类别在聚合时被忽略。

const (
	TypeCardio   = "Cardio"
	TypeStrength = "Strength"
	TypeFood     = "Food & Drinks"
)

// Entry 定义了一条手动记录的活动日志（运动或饮食）。
// 一经保存不可变，除非用户显式编辑后重新保存。
type Entry struct {
	ID uint `gorm:"primarykey"`

	// UserID 是日志所属用户，删除用户时级联清理。
	UserID uint `gorm:"not null;index"`

	// Date 是这条日志的发生时间。
	Date time.Time `gorm:"not null;index"`

	// Type 是活动类别，取值见上方常量。
	Type string `gorm:"type:varchar(32);not null"`

	// Name 是用户输入的活动名称，例如"晨跑"、"午餐"。
	Name string `gorm:"type:varchar(128);not null"`

	// Value 是数值量：有氧为分钟数，饮食为卡路里。
	Value float64 `gorm:"not null"`

	// Unit 是Value的单位标签，例如"min"、"kcal"。
	Unit string `gorm:"type:varchar(32);not null"`

	// Sets/Reps 仅力量训练使用。
	Sets int
	Reps int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名，与级联删除语句保持一致。
func (Entry) TableName() string {
	return "activity_logs"
}

// DayTotal 是按天聚合查询的一行结果。
type DayTotal struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
}
