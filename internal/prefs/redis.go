package prefs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"github.com/redis/go-redis/v9"
)

// --- Redis 键名常量 ---

const (
	// sessionKey 存储当前登录用户的ID。至多存在一个值，登出时删除。
	sessionKey = "prefs:session:user_id"

	// darkModeKey 存储深色模式开关，"1"/"0"。
	darkModeKey = "prefs:darkmode"

	// stepGoalKeyPrefix 按用户ID存储步数目标，例如 prefs:step_goal:42。
	stepGoalKeyPrefix = "prefs:step_goal:"
)

// RedisStore 是Store的Redis实现，负责持久化标量偏好并广播变更事件。
type RedisStore struct {
	rdb *redis.Client
	bus *bus.Bus
}

// NewRedisStore 创建一个以Redis为后端的偏好存储。
func NewRedisStore(rdb *redis.Client, b *bus.Bus) *RedisStore {
	return &RedisStore{rdb: rdb, bus: b}
}

func stepGoalKey(userID uint) string {
	return stepGoalKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// CurrentUser 返回当前登录用户的ID，未登录时返回0。
func (s *RedisStore) CurrentUser(ctx context.Context) (uint, error) {
	val, err := s.rdb.Get(ctx, sessionKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("读取会话失败: %w", err)
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("会话值格式错误: %w", err)
	}
	return uint(id), nil
}

// SetCurrentUser 记录新的登录会话并广播会话变更。
func (s *RedisStore) SetCurrentUser(ctx context.Context, userID uint) error {
	if err := s.rdb.Set(ctx, sessionKey, strconv.FormatUint(uint64(userID), 10), 0).Err(); err != nil {
		return fmt.Errorf("写入会话失败: %w", err)
	}
	s.bus.Publish(bus.Event{Topic: bus.TopicSession, UserID: userID})
	return nil
}

// ClearCurrentUser 清除会话并以UserID=0广播登出。
func (s *RedisStore) ClearCurrentUser(ctx context.Context) error {
	if err := s.rdb.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("清除会话失败: %w", err)
	}
	s.bus.Publish(bus.Event{Topic: bus.TopicSession, UserID: 0})
	return nil
}

// DarkMode 返回深色模式开关，未设置时为false。
func (s *RedisStore) DarkMode(ctx context.Context) (bool, error) {
	val, err := s.rdb.Get(ctx, darkModeKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取深色模式偏好失败: %w", err)
	}
	return val == "1", nil
}

// SetDarkMode 写入深色模式开关。
func (s *RedisStore) SetDarkMode(ctx context.Context, on bool) error {
	val := "0"
	if on {
		val = "1"
	}
	if err := s.rdb.Set(ctx, darkModeKey, val, 0).Err(); err != nil {
		return fmt.Errorf("写入深色模式偏好失败: %w", err)
	}
	s.bus.Publish(bus.Event{Topic: bus.TopicDarkMode})
	return nil
}

// StepGoal 返回指定用户的步数目标。
func (s *RedisStore) StepGoal(ctx context.Context, userID uint) (int, bool, error) {
	val, err := s.rdb.Get(ctx, stepGoalKey(userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("读取步数目标失败: %w", err)
	}
	goal, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("步数目标格式错误: %w", err)
	}
	return goal, true, nil
}

// SetStepGoal 写入步数目标并广播目标变更。
func (s *RedisStore) SetStepGoal(ctx context.Context, userID uint, goal int) error {
	if err := s.rdb.Set(ctx, stepGoalKey(userID), strconv.Itoa(goal), 0).Err(); err != nil {
		return fmt.Errorf("写入步数目标失败: %w", err)
	}
	s.bus.Publish(bus.Event{Topic: bus.TopicGoal, UserID: userID})
	return nil
}
