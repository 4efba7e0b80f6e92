package stats

import (
	"context"
	"sync"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/activity"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/logger"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
)

// Summary 是统计管道向订阅者发出的汇总记录。
// 每次发射都是整体替换，不做增量修补。
type Summary struct {
	Steps          int     `json:"steps"`
	StepGoal       int     `json:"stepGoal"`
	CaloriesBurned float64 `json:"caloriesBurned"`
	FoodCalories   float64 `json:"foodCalories"`
	CardioMinutes  float64 `json:"cardioMinutes"`
	StrengthSets   int     `json:"strengthSets"`
}

// --- 管道的上游读取接口 ---
// 管道自身不持有任何权威状态，所有数据都从这些接口即时读取。

// ActivityReader 读取窗口内的活动日志。
type ActivityReader interface {
	ListSince(ctx context.Context, userID uint, since time.Time) ([]activity.Entry, error)
}

// StepsReader 读取窗口内的步数总和。
type StepsReader interface {
	SumSince(ctx context.Context, userID uint, since time.Time) (int, error)
}

// GoalReader 读取用户在关系存储中的持久化步数目标，0表示未设置。
type GoalReader interface {
	StepGoalOf(ctx context.Context, userID uint) (int, error)
}

// Pipeline 是系统中唯一真正的响应式组合：
// 把已登录用户、时间窗口、步数目标和持久化历史合成为一个可观察的Summary流。
type Pipeline struct {
	prefs    prefs.Store
	activity ActivityReader
	steps    StepsReader
	goals    GoalReader
	bus      *bus.Bus

	defaultGoal     int
	caloriesPerStep float64

	// now 可在测试中替换以固定时间
	now func() time.Time
}

// NewPipeline 创建统计管道。
func NewPipeline(store prefs.Store, ar ActivityReader, sr StepsReader, gr GoalReader, b *bus.Bus, defaultGoal int, caloriesPerStep float64) *Pipeline {
	return &Pipeline{
		prefs:           store,
		activity:        ar,
		steps:           sr,
		goals:           gr,
		bus:             b,
		defaultGoal:     defaultGoal,
		caloriesPerStep: caloriesPerStep,
		now:             time.Now,
	}
}

// Compose 对给定的用户和窗口执行一次完整的汇总组合。
// 未登录(userID==0)时恒定返回零值Summary，绝不读取存储。
func (p *Pipeline) Compose(ctx context.Context, userID uint, f Filter) (Summary, error) {
	if userID == 0 {
		return Summary{}, nil
	}

	start := WindowStart(f, p.now())

	// 三路并发读取：目标、活动日志、步数总和
	var (
		wg         sync.WaitGroup
		goal       int
		goalSet    bool
		entries    []activity.Entry
		stepsTotal int
		goalErr    error
		listErr    error
		sumErr     error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		goal, goalSet, goalErr = p.readGoal(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		entries, listErr = p.activity.ListSince(ctx, userID, start)
	}()
	go func() {
		defer wg.Done()
		stepsTotal, sumErr = p.steps.SumSince(ctx, userID, start)
	}()
	wg.Wait()

	for _, err := range []error{goalErr, listErr, sumErr} {
		if err != nil {
			return Summary{}, err
		}
	}

	if !goalSet || goal <= 0 {
		goal = p.defaultGoal
	}

	sum := Summary{
		Steps:          stepsTotal,
		StepGoal:       goal,
		CaloriesBurned: float64(stepsTotal) * p.caloriesPerStep,
	}

	// 把活动日志折叠进三个累加器，三类之外的条目忽略
	for _, e := range entries {
		switch e.Type {
		case activity.TypeFood:
			sum.FoodCalories += e.Value
		case activity.TypeCardio:
			sum.CardioMinutes += e.Value
		case activity.TypeStrength:
			sum.StrengthSets += e.Sets
		}
	}

	return sum, nil
}

// readGoal 先查偏好存储的目标缓存，未命中再回落到关系存储。
func (p *Pipeline) readGoal(ctx context.Context, userID uint) (int, bool, error) {
	goal, ok, err := p.prefs.StepGoal(ctx, userID)
	if err == nil && ok {
		return goal, true, nil
	}
	if err != nil {
		// 偏好存储暂时不可用：回落而不是失败
		logger.Warn("stats.goal_prefs_unavailable", "uid", userID, "err", err.Error())
	}
	persisted, gerr := p.goals.StepGoalOf(ctx, userID)
	if gerr != nil {
		return 0, false, gerr
	}
	return persisted, persisted > 0, nil
}

// composeResult 把一次组合的结果和它所属的代号一起送回订阅循环。
type composeResult struct {
	gen     uint64
	summary Summary
}

// Subscription 是对Summary流的一次订阅。
// 同一订阅收到的Summary是全序的：较新输入产生的结果绝不会被较旧的覆盖。
type Subscription struct {
	// C 是汇总记录流。订阅关闭后C被关闭。
	C <-chan Summary

	out      chan Summary
	filterCh chan Filter
	cancel   context.CancelFunc
	busSub   *bus.Subscription
	once     sync.Once
}

// SetFilter 切换时间窗口。切换会丢弃在途的组合并以新窗口重新开始。
func (s *Subscription) SetFilter(f Filter) {
	// 只保留最新一次切换请求
	select {
	case <-s.filterCh:
	default:
	}
	s.filterCh <- f
}

// Close 同步地停掉这次订阅创建的全部上游订阅。可以安全地重复调用。
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.busSub.Cancel()
		s.cancel()
	})
}

// Subscribe 启动一次订阅。窗口默认为Daily。
//
// 每当任一上游输入变化（会话、窗口、目标、该用户的历史），
// 订阅循环取消在途的组合、递增代号并重启整个组合；
// 代号已过期的结果直接丢弃，最新输入永远获胜，陈旧结果绝不送达。
func (p *Pipeline) Subscribe() *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		out:      make(chan Summary, 1),
		filterCh: make(chan Filter, 1),
		cancel:   cancel,
		busSub:   p.bus.Subscribe(),
	}
	s.C = s.out
	go p.run(ctx, s)
	return s
}

func (p *Pipeline) run(ctx context.Context, s *Subscription) {
	defer close(s.out)

	f := FilterDaily
	userID, err := p.prefs.CurrentUser(ctx)
	if err != nil {
		// 偏好存储暂时不可用：以未登录状态启动，等会话事件驱动恢复
		logger.Warn("stats.session_unavailable", "err", err.Error())
		userID = 0
	}

	var gen uint64
	resultCh := make(chan composeResult, 1)
	computeCancel := func() {}

	restart := func() {
		computeCancel()
		gen++
		cctx, cancel := context.WithCancel(ctx)
		computeCancel = cancel
		go func(g uint64, uid uint, filter Filter) {
			sum, err := p.Compose(cctx, uid, filter)
			if err != nil {
				// 读取失败不杀死订阅；下一次上游变化会带来重试
				if cctx.Err() == nil {
					logger.Warn("stats.compose_failed", "uid", uid, "err", err.Error())
				}
				return
			}
			select {
			case resultCh <- composeResult{gen: g, summary: sum}:
			case <-cctx.Done():
			}
		}(gen, userID, f)
	}
	restart()
	defer func() { computeCancel() }()

	events := s.busSub.C
	for {
		select {
		case <-ctx.Done():
			return

		case newFilter := <-s.filterCh:
			if newFilter != f {
				f = newFilter
				restart()
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch ev.Topic {
			case bus.TopicSession:
				userID = ev.UserID
				restart()
			case bus.TopicActivity, bus.TopicSteps, bus.TopicGoal:
				if ev.UserID == userID && userID != 0 {
					restart()
				}
			}

		case res := <-resultCh:
			if res.gen != gen {
				// 过期代号：结果产生时输入已被新的取代
				continue
			}
			// 合并发射：订阅者只需要最新的Summary
			select {
			case s.out <- res.summary:
			default:
				select {
				case <-s.out:
				default:
				}
				select {
				case s.out <- res.summary:
				default:
				}
			}
		}
	}
}
