package steps

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func day(s string) time.Time {
	d, _ := time.ParseInLocation(DayFormat, s, time.Local)
	return d
}

// TestAddStepsSingleBucket 同一用户同一天的多次累加落在同一行上
func TestAddStepsSingleBucket(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, bus.New(), 0.04)
	ctx := context.Background()

	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-15"), 100))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-15"), 50))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-15"), 30))

	var records []DailyStepRecord
	require.NoError(t, db.Where("user_id = ?", 1).Find(&records).Error)
	require.Len(t, records, 1, "同一用户同一天只能有一个步数桶")
	assert.Equal(t, 180, records[0].StepCount)
	assert.InDelta(t, 180*0.04, records[0].CaloriesBurned, 1e-9)
}

// TestAddStepsSeparateBuckets 不同用户和不同日期各自独立成桶
func TestAddStepsSeparateBuckets(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, bus.New(), 0.04)
	ctx := context.Background()

	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-15"), 100))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-16"), 200))
	require.NoError(t, repo.AddSteps(ctx, 2, day("2024-03-15"), 300))

	var count int64
	require.NoError(t, db.Model(&DailyStepRecord{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

// TestAddStepsRejectsNonPositive 非正增量被拒绝
func TestAddStepsRejectsNonPositive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, bus.New(), 0.04)
	ctx := context.Background()

	assert.Error(t, repo.AddSteps(ctx, 1, day("2024-03-15"), 0))
	assert.Error(t, repo.AddSteps(ctx, 1, day("2024-03-15"), -10))

	var count int64
	require.NoError(t, db.Model(&DailyStepRecord{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// TestAddStepsPublishesEvent 成功写入后发布步数变更事件
func TestAddStepsPublishesEvent(t *testing.T) {
	db := newTestDB(t)
	b := bus.New()
	repo := NewRepository(db, b, 0.04)

	sub := b.Subscribe()
	defer sub.Cancel()

	require.NoError(t, repo.AddSteps(context.Background(), 7, day("2024-03-15"), 10))

	select {
	case ev := <-sub.C:
		assert.Equal(t, bus.TopicSteps, ev.Topic)
		assert.EqualValues(t, 7, ev.UserID)
	case <-time.After(time.Second):
		t.Fatal("未收到步数变更事件")
	}
}

// TestSumSince 步数总和按日期窗口和用户过滤
func TestSumSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, bus.New(), 0.04)
	ctx := context.Background()

	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-01"), 1000))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-14"), 2000))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-15"), 500))
	require.NoError(t, repo.AddSteps(ctx, 2, day("2024-03-15"), 9999))

	// 窗口内
	total, err := repo.SumSince(ctx, 1, day("2024-03-14"))
	require.NoError(t, err)
	assert.Equal(t, 2500, total)

	// 整月
	total, err = repo.SumSince(ctx, 1, day("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 3500, total)

	// 无记录时总和为0而不是错误
	total, err = repo.SumSince(ctx, 3, day("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

// TestListSince 历史桶按日期倒序返回
func TestListSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, bus.New(), 0.04)
	ctx := context.Background()

	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-10"), 100))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-12"), 200))
	require.NoError(t, repo.AddSteps(ctx, 1, day("2024-03-11"), 300))

	records, err := repo.ListSince(ctx, 1, day("2024-03-10"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-03-12", records[0].Date)
	assert.Equal(t, "2024-03-11", records[1].Date)
	assert.Equal(t, "2024-03-10", records[2].Date)
}
