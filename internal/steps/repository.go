package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 封装每日步数桶的读写。
// 写入路径只有一个：统计管道的增量累加。
type Repository struct {
	db              *gorm.DB
	bus             *bus.Bus
	caloriesPerStep float64
}

// NewRepository 创建步数仓库。caloriesPerStep是步数到卡路里的换算系数。
func NewRepository(db *gorm.DB, b *bus.Bus, caloriesPerStep float64) *Repository {
	return &Repository{db: db, bus: b, caloriesPerStep: caloriesPerStep}
}

// AddSteps 将一个正的步数增量累加到用户当天的桶中。
// 不存在则创建，存在则在原行上累加，保证每个用户每天只有一个桶。
func (r *Repository) AddSteps(ctx context.Context, userID uint, day time.Time, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("步数增量必须为正: %d", delta)
	}

	dateKey := day.Format(DayFormat)
	rec := DailyStepRecord{
		UserID:         userID,
		Date:           dateKey,
		StepCount:      delta,
		CaloriesBurned: float64(delta) * r.caloriesPerStep,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"step_count":      gorm.Expr("step_count + ?", delta),
			"calories_burned": gorm.Expr("(step_count + ?) * ?", delta, r.caloriesPerStep),
			"updated_at":      time.Now(),
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("累加步数失败: %w", err)
	}

	r.bus.Publish(bus.Event{Topic: bus.TopicSteps, UserID: userID})
	return nil
}

// SumSince 返回用户自指定日期（含）以来的步数总和。
func (r *Repository) SumSince(ctx context.Context, userID uint, since time.Time) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&DailyStepRecord{}).
		Select("SUM(step_count)").
		Where("user_id = ? AND date >= ?", userID, since.Format(DayFormat)).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("汇总步数失败: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ListSince 返回用户自指定日期以来的每日桶，按日期倒序，供历史页展示。
func (r *Repository) ListSince(ctx context.Context, userID uint, since time.Time) ([]DailyStepRecord, error) {
	var records []DailyStepRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since.Format(DayFormat)).
		Order("date desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询步数记录失败: %w", err)
	}
	return records, nil
}
