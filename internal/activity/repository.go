package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"gorm.io/gorm"
	"time"
)

// ErrNotOwned 表示请求操作的日志不存在或不属于该用户。
var ErrNotOwned = errors.New("日志不存在或无权操作")

// Repository 封装活动日志的读写。
// 每次成功写入都会向事件总线发布失效事件，驱动统计管道重组。
type Repository struct {
	db  *gorm.DB
	bus *bus.Bus
}

// NewRepository 创建活动日志仓库。
func NewRepository(db *gorm.DB, b *bus.Bus) *Repository {
	return &Repository{db: db, bus: b}
}

// Create 新增一条日志。
func (r *Repository) Create(ctx context.Context, e *Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("创建活动日志失败: %w", err)
	}
	r.bus.Publish(bus.Event{Topic: bus.TopicActivity, UserID: e.UserID})
	return nil
}

// Update 覆盖一条已有日志。只有日志的所有者可以编辑。
func (r *Repository) Update(ctx context.Context, e *Entry) error {
	result := r.db.WithContext(ctx).Model(&Entry{}).
		Where("id = ? AND user_id = ?", e.ID, e.UserID).
		Updates(map[string]interface{}{
			"date":  e.Date,
			"type":  e.Type,
			"name":  e.Name,
			"value": e.Value,
			"unit":  e.Unit,
			"sets":  e.Sets,
			"reps":  e.Reps,
		})
	if result.Error != nil {
		return fmt.Errorf("更新活动日志失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotOwned
	}
	r.bus.Publish(bus.Event{Topic: bus.TopicActivity, UserID: e.UserID})
	return nil
}

// Delete 删除一条日志。只有日志的所有者可以删除。
func (r *Repository) Delete(ctx context.Context, userID, entryID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&Entry{})
	if result.Error != nil {
		return fmt.Errorf("删除活动日志失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotOwned
	}
	r.bus.Publish(bus.Event{Topic: bus.TopicActivity, UserID: userID})
	return nil
}

// ListSince 返回用户在指定时间之后的全部日志，按时间倒序。
func (r *Repository) ListSince(ctx context.Context, userID uint, since time.Time) ([]Entry, error) {
	var entries []Entry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date desc").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询活动日志失败: %w", err)
	}
	return entries, nil
}

// DailySummaryByUnit 按单位过滤并按天分组求和，用于图表展示。
// 结果最近的一天在前，每个有匹配日志的天恰好一行；没有匹配日志的天不出现。
func (r *Repository) DailySummaryByUnit(ctx context.Context, userID uint, unit string) ([]DayTotal, error) {
	var rows []DayTotal
	err := r.db.WithContext(ctx).Raw(`
	SELECT DATE(date) AS day, SUM(value) AS total
	FROM activity_logs
	WHERE user_id = ? AND unit = ?
	GROUP BY DATE(date)
	ORDER BY day DESC
	`, userID, unit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按天聚合查询失败: %w", err)
	}
	return rows, nil
}
