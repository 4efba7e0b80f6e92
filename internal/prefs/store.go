package prefs

import (
	"context"
)

// Store 是偏好存储的抽象：持久化的标量设置加上变更通知。
// 当前登录用户是其中最核心的一项，整个统计管道的身份输入都来自这里。
// 所有写入都会在成功后向事件总线发布对应主题的失效事件。
type Store interface {
	// CurrentUser 返回当前登录用户的ID，未登录时返回0。
	CurrentUser(ctx context.Context) (uint, error)
	// SetCurrentUser 记录新的登录会话。同一时刻至多存在一个会话。
	SetCurrentUser(ctx context.Context, userID uint) error
	// ClearCurrentUser 清除会话（登出）。
	ClearCurrentUser(ctx context.Context) error

	// DarkMode 返回深色模式开关。
	DarkMode(ctx context.Context) (bool, error)
	SetDarkMode(ctx context.Context, on bool) error

	// StepGoal 返回指定用户的步数目标；第二个返回值表示该用户是否设置过目标。
	StepGoal(ctx context.Context, userID uint) (int, bool, error)
	SetStepGoal(ctx context.Context, userID uint, goal int) error
}
