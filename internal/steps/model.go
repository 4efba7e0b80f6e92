package steps

import (
	"time"
)

// DayFormat 是每日步数桶的日期键格式。
const DayFormat = "2006-01-02"

// DailyStepRecord 是某个用户某一天的步数桶。
// (user_id, date)上的唯一索引保证每个用户每天只有一个逻辑桶，
// 并发写入通过"冲突即累加"的upsert合并到同一行。
type DailyStepRecord struct {
	ID uint `gorm:"primarykey"`

	UserID uint `gorm:"not null;uniqueIndex:uidx_daily_steps_user_date"`

	// Date 是"2006-01-02"格式的本地日期键。
	Date string `gorm:"type:varchar(10);not null;uniqueIndex:uidx_daily_steps_user_date"`

	// StepCount 是当天累计的步数。
	StepCount int `gorm:"not null;default:0"`

	// CaloriesBurned 是由步数推算的卡路里估计值。
	CaloriesBurned float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名，与级联删除语句保持一致。
func (DailyStepRecord) TableName() string {
	return "daily_steps"
}
