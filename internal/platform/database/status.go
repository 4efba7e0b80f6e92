package database

import (
	"fmt"
	"sync"
)

// Status 负责线程安全地管理和提供Redis偏好存储的健康状态。
// 与存储句柄一样，它被显式构造并注入到需要感知降级模式的组件中。
type Status struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

// NewStatus 创建一个状态管理器，启动时默认视为健康。
func NewStatus() *Status {
	return &Status{isRedisHealthy: true}
}

// IsRedisHealthy 返回当前Redis的健康状态。
func (s *Status) IsRedisHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRedisHealthy
}

// Update 用于线程安全地更新健康状态。
func (s *Status) Update(isHealthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 只有当状态发生变化时才打印日志
	if s.isRedisHealthy != isHealthy {
		s.isRedisHealthy = isHealthy
		if isHealthy {
			fmt.Println("健康检查: Redis服务状态已更新为 [可用]")
		} else {
			fmt.Println("健康检查警告: Redis服务状态已更新为 [不可用]")
		}
	}
}
