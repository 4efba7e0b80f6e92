package bus

import (
	"sync"
)

// --- 主题常量 ---

const (
	// TopicSession 表示当前登录用户发生变化，Event.UserID为新用户ID（0表示登出）
	TopicSession = "session"
	// TopicActivity 表示某用户的活动日志发生了增删改
	TopicActivity = "activity"
	// TopicSteps 表示某用户的每日步数桶被累加
	TopicSteps = "steps"
	// TopicGoal 表示某用户的步数目标被修改
	TopicGoal = "goal"
	// TopicDarkMode 表示深色模式偏好被修改
	TopicDarkMode = "darkmode"
)

// Event 是进程内失效通知的载体。
// 它只携带"谁的什么变了"，不携带具体数据；订阅方收到后自行重新读取。
type Event struct {
	Topic  string
	UserID uint
}

const subscriberBuffer = 16

// Bus 是一个进程内的失效通知总线。
// 仓库层在每次写入后发布事件，统计管道订阅事件以触发重组。
// 发布是非阻塞的：订阅者的缓冲满时会丢弃其最旧的事件再写入，
// 事件只承担"有变化"的语义，因此合并是安全的。
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]chan Event
	nextID uint64
}

// New 创建一个新的事件总线。
func New() *Bus {
	return &Bus{subs: make(map[uint64]chan Event)}
}

// Publish 将事件分发给所有订阅者。
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// 缓冲已满：丢弃最旧事件，保证最新事件总能写入
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Subscription 是一次订阅的句柄。Cancel之后C会被关闭。
type Subscription struct {
	C    <-chan Event
	bus  *Bus
	id   uint64
	once sync.Once
}

// Subscribe 注册一个新的订阅者。
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	b.nextID++
	id := b.nextID
	b.subs[id] = ch
	return &Subscription{C: ch, bus: b, id: id}
}

// Cancel 注销订阅并关闭事件channel。可以安全地重复调用。
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if ch, ok := s.bus.subs[s.id]; ok {
			delete(s.bus.subs, s.id)
			close(ch)
		}
	})
}
