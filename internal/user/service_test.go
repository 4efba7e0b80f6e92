package user_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/activity"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/chat"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/steps"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceFixture struct {
	db    *gorm.DB
	store *prefs.MemoryStore
	svc   *user.Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, user.Migrate(db))
	require.NoError(t, activity.Migrate(db))
	require.NoError(t, steps.Migrate(db))
	require.NoError(t, chat.Migrate(db))

	store := prefs.NewMemoryStore(bus.New())
	return &serviceFixture{
		db:    db,
		store: store,
		svc:   user.NewService(db, store, nil, nil),
	}
}

// TestRegisterAndLogin 注册后可以用同一组凭据登录，登录建立会话
func TestRegisterAndLogin(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	// 口令以哈希形式存储，绝不落明文
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.NotContains(t, u.PasswordHash, "secret123")

	logged, err := f.svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	current, err := f.store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, current)
}

// TestRegisterDuplicate 用户名冲突返回专门的错误
func TestRegisterDuplicate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", "secret123", "")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "alice", "other456", "")
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
}

// TestLoginFailures 错误凭据不建立会话
func TestLoginFailures(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", "secret123", "")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, user.ErrWrongPassword)

	_, err = f.svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	current, err := f.store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Zero(t, current, "失败的登录不应留下会话")
}

// TestLogout 登出清除会话
func TestLogout(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", "secret123", "")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx))
	current, err := f.store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Zero(t, current)
}

// TestUpdateStepGoal 目标同时写入关系存储和偏好存储
func TestUpdateStepGoal(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, "alice", "secret123", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStepGoal(ctx, u.ID, 8000))

	persisted, err := f.svc.StepGoalOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 8000, persisted)

	cached, ok, err := f.store.StepGoal(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8000, cached)

	assert.Error(t, f.svc.UpdateStepGoal(ctx, u.ID, -1))
}

// TestChangePassword 改密需要正确的旧密码
func TestChangePassword(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, "alice", "secret123", "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, u.ID, "wrong", "newpass456"), user.ErrWrongPassword)
	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "secret123", "newpass456"))

	_, err = f.svc.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, user.ErrWrongPassword)
	_, err = f.svc.Login(ctx, "alice", "newpass456")
	assert.NoError(t, err)
}

// TestDeleteAccountCascades 注销删除用户及其全部从属数据并清除会话
func TestDeleteAccountCascades(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, "alice", "secret123", "")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	// 制造从属数据
	require.NoError(t, f.db.Exec(
		"INSERT INTO activity_logs (user_id, date, type, name, value, unit, sets, reps) VALUES (?, ?, ?, ?, ?, ?, 0, 0)",
		u.ID, "2024-03-15 08:00:00", activity.TypeCardio, "晨跑", 30.0, "min").Error)
	require.NoError(t, f.db.Exec(
		"INSERT INTO daily_steps (user_id, date, step_count, calories_burned) VALUES (?, ?, ?, ?)",
		u.ID, "2024-03-15", 1000, 40.0).Error)
	require.NoError(t, f.db.Exec(
		"INSERT INTO chat_messages (user_id, text, is_from_user, image_url, timestamp) VALUES (?, ?, ?, '', ?)",
		u.ID, "你好", true, "2024-03-15 08:00:00").Error)

	require.NoError(t, f.svc.DeleteAccount(ctx, u.ID))

	for _, table := range []string{"users", "activity_logs", "daily_steps", "chat_messages"} {
		var count int64
		require.NoError(t, f.db.Table(table).Count(&count).Error)
		assert.Zero(t, count, "表 %s 应被清空", table)
	}

	current, err := f.store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Zero(t, current)
}
