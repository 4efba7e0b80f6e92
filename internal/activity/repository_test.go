package activity

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

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewRepository(db, bus.New())
}

func at(s string) time.Time {
	d, _ := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	return d
}

// TestCreateAndList 新增的日志能按时间窗口查回，按时间倒序
func TestCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entries := []Entry{
		{UserID: 1, Date: at("2024-03-15 08:00"), Type: TypeCardio, Name: "晨跑", Value: 30, Unit: "min"},
		{UserID: 1, Date: at("2024-03-15 12:30"), Type: TypeFood, Name: "午餐", Value: 650, Unit: "kcal"},
		{UserID: 1, Date: at("2024-03-14 19:00"), Type: TypeStrength, Name: "深蹲", Value: 60, Unit: "kg", Sets: 4, Reps: 8},
		{UserID: 2, Date: at("2024-03-15 09:00"), Type: TypeCardio, Name: "骑行", Value: 45, Unit: "min"},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	// 只返回该用户窗口内的日志
	got, err := repo.ListSince(ctx, 1, at("2024-03-15 00:00"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "午餐", got[0].Name)
	assert.Equal(t, "晨跑", got[1].Name)
}

// TestUpdateOwnership 编辑只对日志所有者生效
func TestUpdateOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := Entry{UserID: 1, Date: at("2024-03-15 08:00"), Type: TypeCardio, Name: "晨跑", Value: 30, Unit: "min"}
	require.NoError(t, repo.Create(ctx, &e))

	// 所有者可以编辑
	e.Value = 45
	require.NoError(t, repo.Update(ctx, &e))

	got, err := repo.ListSince(ctx, 1, at("2024-03-15 00:00"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 45.0, got[0].Value)

	// 其他用户编辑同一条日志被拒绝
	stolen := e
	stolen.UserID = 2
	assert.ErrorIs(t, repo.Update(ctx, &stolen), ErrNotOwned)
}

// TestDeleteOwnership 删除只对日志所有者生效
func TestDeleteOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := Entry{UserID: 1, Date: at("2024-03-15 08:00"), Type: TypeFood, Name: "早餐", Value: 400, Unit: "kcal"}
	require.NoError(t, repo.Create(ctx, &e))

	assert.ErrorIs(t, repo.Delete(ctx, 2, e.ID), ErrNotOwned)
	require.NoError(t, repo.Delete(ctx, 1, e.ID))
	assert.ErrorIs(t, repo.Delete(ctx, 1, e.ID), ErrNotOwned)
}

// TestDailySummaryByUnit 按天分组聚合：有记录的天恰好一行，空天不出现
func TestDailySummaryByUnit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entries := []Entry{
		{UserID: 1, Date: at("2024-03-14 08:00"), Type: TypeFood, Name: "早餐", Value: 300, Unit: "kcal"},
		{UserID: 1, Date: at("2024-03-14 12:00"), Type: TypeFood, Name: "午餐", Value: 500, Unit: "kcal"},
		// 3月15日没有kcal记录，只有分钟
		{UserID: 1, Date: at("2024-03-15 08:00"), Type: TypeCardio, Name: "晨跑", Value: 30, Unit: "min"},
		{UserID: 1, Date: at("2024-03-16 12:00"), Type: TypeFood, Name: "午餐", Value: 450, Unit: "kcal"},
		// 其他用户的记录不参与聚合
		{UserID: 2, Date: at("2024-03-14 12:00"), Type: TypeFood, Name: "午餐", Value: 999, Unit: "kcal"},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	rows, err := repo.DailySummaryByUnit(ctx, 1, "kcal")
	require.NoError(t, err)
	require.Len(t, rows, 2, "没有kcal记录的天不应出现")
	assert.Equal(t, "2024-03-16", rows[0].Day)
	assert.InDelta(t, 450.0, rows[0].Total, 1e-9)
	assert.Equal(t, "2024-03-14", rows[1].Day)
	assert.InDelta(t, 800.0, rows[1].Total, 1e-9)
}
