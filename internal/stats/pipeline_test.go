package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/activity"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 上游读取接口的测试替身 ---

type fakeActivity struct {
	entries []activity.Entry
}

func (f *fakeActivity) ListSince(ctx context.Context, userID uint, since time.Time) ([]activity.Entry, error) {
	return f.entries, nil
}

type fakeSteps struct {
	mu    sync.Mutex
	total int
}

func (f *fakeSteps) SumSince(ctx context.Context, userID uint, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, nil
}

func (f *fakeSteps) setTotal(v int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.total = v
}

type fakeGoals struct {
	goal int
}

func (f *fakeGoals) StepGoalOf(ctx context.Context, userID uint) (int, error) {
	return f.goal, nil
}

func newTestPipeline(b *bus.Bus, store prefs.Store, fa *fakeActivity, fs *fakeSteps, fg *fakeGoals) *Pipeline {
	return NewPipeline(store, fa, fs, fg, b, 2500, 0.04)
}

// TestComposeUnauthenticated 未登录时恒定返回零值Summary
func TestComposeUnauthenticated(t *testing.T) {
	b := bus.New()
	p := newTestPipeline(b, prefs.NewMemoryStore(b), &fakeActivity{}, &fakeSteps{total: 9999}, &fakeGoals{})

	sum, err := p.Compose(context.Background(), 0, FilterDaily)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

// TestComposeCalories 卡路里由步数按系数换算: 2500步 * 0.04 = 100
func TestComposeCalories(t *testing.T) {
	b := bus.New()
	p := newTestPipeline(b, prefs.NewMemoryStore(b), &fakeActivity{}, &fakeSteps{total: 2500}, &fakeGoals{})

	sum, err := p.Compose(context.Background(), 1, FilterDaily)
	require.NoError(t, err)
	assert.Equal(t, 2500, sum.Steps)
	assert.InDelta(t, 100.0, sum.CaloriesBurned, 1e-9)
}

// TestComposeDefaultGoal 未设置目标时使用默认目标
func TestComposeDefaultGoal(t *testing.T) {
	b := bus.New()
	store := prefs.NewMemoryStore(b)
	p := newTestPipeline(b, store, &fakeActivity{}, &fakeSteps{}, &fakeGoals{goal: 0})

	sum, err := p.Compose(context.Background(), 1, FilterDaily)
	require.NoError(t, err)
	assert.Equal(t, 2500, sum.StepGoal)

	// 偏好存储中的目标优先于默认值
	require.NoError(t, store.SetStepGoal(context.Background(), 1, 8000))
	sum, err = p.Compose(context.Background(), 1, FilterDaily)
	require.NoError(t, err)
	assert.Equal(t, 8000, sum.StepGoal)
}

// TestComposeFoldsEntries 活动日志按类别折叠进三个累加器
func TestComposeFoldsEntries(t *testing.T) {
	b := bus.New()
	fa := &fakeActivity{entries: []activity.Entry{
		{Type: activity.TypeFood, Value: 350},
		{Type: activity.TypeFood, Value: 420},
		{Type: activity.TypeCardio, Value: 30},
		{Type: activity.TypeStrength, Value: 60, Sets: 4},
		{Type: activity.TypeStrength, Value: 40, Sets: 3},
		{Type: "Unknown", Value: 999},
	}}
	p := newTestPipeline(b, prefs.NewMemoryStore(b), fa, &fakeSteps{}, &fakeGoals{})

	sum, err := p.Compose(context.Background(), 1, FilterDaily)
	require.NoError(t, err)
	assert.InDelta(t, 770.0, sum.FoodCalories, 1e-9)
	assert.InDelta(t, 30.0, sum.CardioMinutes, 1e-9)
	assert.Equal(t, 7, sum.StrengthSets)
}

// TestSubscribeEmitsOnLogin 订阅在会话变化后重新组合并发射
func TestSubscribeEmitsOnLogin(t *testing.T) {
	b := bus.New()
	store := prefs.NewMemoryStore(b)
	fs := &fakeSteps{total: 1200}
	p := newTestPipeline(b, store, &fakeActivity{}, fs, &fakeGoals{})

	sub := p.Subscribe()
	defer sub.Close()

	// 初始发射：未登录，零值
	select {
	case sum := <-sub.C:
		assert.Equal(t, Summary{}, sum)
	case <-time.After(2 * time.Second):
		t.Fatal("未收到初始发射")
	}

	// 登录后重新组合，带上该用户的数据
	require.NoError(t, store.SetCurrentUser(context.Background(), 7))
	select {
	case sum := <-sub.C:
		assert.Equal(t, 1200, sum.Steps)
	case <-time.After(2 * time.Second):
		t.Fatal("登录后未收到发射")
	}
}

// TestSubscribeLatestWins 快速连续的变化下，订阅者最终只看到最新结果
func TestSubscribeLatestWins(t *testing.T) {
	b := bus.New()
	store := prefs.NewMemoryStore(b)
	fs := &fakeSteps{total: 500}
	p := newTestPipeline(b, store, &fakeActivity{}, fs, &fakeGoals{})

	require.NoError(t, store.SetCurrentUser(context.Background(), 3))

	sub := p.Subscribe()
	defer sub.Close()

	// 连续触发多次失效，不读取中间结果
	for i := 0; i < 5; i++ {
		b.Publish(bus.Event{Topic: bus.TopicSteps, UserID: 3})
	}
	fs.setTotal(4321)
	b.Publish(bus.Event{Topic: bus.TopicSteps, UserID: 3})

	// 合并发射下，排空channel后的最后一个Summary反映最新输入
	assert.Eventually(t, func() bool {
		var last Summary
		got := false
		for {
			select {
			case sum, ok := <-sub.C:
				if !ok {
					return false
				}
				last = sum
				got = true
			default:
				return got && last.Steps == 4321
			}
		}
	}, 3*time.Second, 20*time.Millisecond)
}

// TestSubscribeIgnoresOtherUsers 其他用户的数据变化不触发重新组合
func TestSubscribeIgnoresOtherUsers(t *testing.T) {
	b := bus.New()
	store := prefs.NewMemoryStore(b)
	p := newTestPipeline(b, store, &fakeActivity{}, &fakeSteps{}, &fakeGoals{})

	require.NoError(t, store.SetCurrentUser(context.Background(), 1))

	sub := p.Subscribe()
	defer sub.Close()

	// 排空初始发射
	select {
	case <-sub.C:
	case <-time.After(2 * time.Second):
		t.Fatal("未收到初始发射")
	}

	b.Publish(bus.Event{Topic: bus.TopicSteps, UserID: 99})

	select {
	case <-sub.C:
		t.Fatal("其他用户的变化不应触发发射")
	case <-time.After(200 * time.Millisecond):
	}
}

// TestSubscriptionClose 关闭订阅后C被关闭，重复关闭安全
func TestSubscriptionClose(t *testing.T) {
	b := bus.New()
	p := newTestPipeline(b, prefs.NewMemoryStore(b), &fakeActivity{}, &fakeSteps{}, &fakeGoals{})

	sub := p.Subscribe()
	sub.Close()
	sub.Close()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.C:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
