package prefs

import (
	"context"
	"sync"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
)

// MemoryStore 是Store的进程内实现，行为与RedisStore一致。
// 供测试以及未配置Redis的单机运行使用。
type MemoryStore struct {
	mu        sync.RWMutex
	userID    uint
	hasUser   bool
	darkMode  bool
	stepGoals map[uint]int
	bus       *bus.Bus
}

// NewMemoryStore 创建一个空的内存偏好存储。
func NewMemoryStore(b *bus.Bus) *MemoryStore {
	return &MemoryStore{stepGoals: make(map[uint]int), bus: b}
}

func (s *MemoryStore) CurrentUser(ctx context.Context) (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasUser {
		return 0, nil
	}
	return s.userID, nil
}

func (s *MemoryStore) SetCurrentUser(ctx context.Context, userID uint) error {
	s.mu.Lock()
	s.userID = userID
	s.hasUser = true
	s.mu.Unlock()
	s.bus.Publish(bus.Event{Topic: bus.TopicSession, UserID: userID})
	return nil
}

func (s *MemoryStore) ClearCurrentUser(ctx context.Context) error {
	s.mu.Lock()
	s.userID = 0
	s.hasUser = false
	s.mu.Unlock()
	s.bus.Publish(bus.Event{Topic: bus.TopicSession, UserID: 0})
	return nil
}

func (s *MemoryStore) DarkMode(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode, nil
}

func (s *MemoryStore) SetDarkMode(ctx context.Context, on bool) error {
	s.mu.Lock()
	s.darkMode = on
	s.mu.Unlock()
	s.bus.Publish(bus.Event{Topic: bus.TopicDarkMode})
	return nil
}

func (s *MemoryStore) StepGoal(ctx context.Context, userID uint) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goal, ok := s.stepGoals[userID]
	return goal, ok, nil
}

func (s *MemoryStore) SetStepGoal(ctx context.Context, userID uint, goal int) error {
	s.mu.Lock()
	s.stepGoals[userID] = goal
	s.mu.Unlock()
	s.bus.Publish(bus.Event{Topic: bus.TopicGoal, UserID: userID})
	return nil
}
