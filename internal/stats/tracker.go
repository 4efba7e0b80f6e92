package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/logger"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/sensor"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/lifecycle"
)

// StepWriter 是追踪器的持久化出口：把一个正增量累加进当天的步数桶。
type StepWriter interface {
	AddSteps(ctx context.Context, userID uint, day time.Time, delta int) error
}

// Tracker 是传感器增量的单一写入者。
// 它订阅传感器观测流和会话事件，把累计读数之间的正差值
// 持久化为当天步数桶的累加，负差和零差（重启、重复读数）绝不入库。
type Tracker struct {
	source *sensor.Source
	writer StepWriter
	prefs  prefs.Store
	bus    *bus.Bus

	// now 可在测试中替换以固定"今天"
	now func() time.Time
}

// NewTracker 创建步数追踪器。
func NewTracker(src *sensor.Source, w StepWriter, store prefs.Store, b *bus.Bus) *Tracker {
	return &Tracker{source: src, writer: w, prefs: store, bus: b, now: time.Now}
}

// Run 是追踪器的主循环，设计为以后台服务方式运行：
//
//	go tracker.Run(handle)
//
// 它在收到停机信号时退出，退出前同步注销传感器订阅，
// 订阅结束后不会再有任何由硬件驱动的写入发生。
func (t *Tracker) Run(handle *lifecycle.Handle) {
	defer handle.Close()

	sub := t.source.Subscribe()
	defer sub.Cancel()
	busSub := t.bus.Subscribe()
	defer busSub.Cancel()

	fmt.Println("步数追踪器 (Step Tracker) 已启动。")

	// 基准状态机：
	//   未登录            -> 忽略一切观测
	//   已登录、等待基准   -> 第一个观测只记为基准，不产生入库增量
	//   已登录、追踪中     -> 正差入库并推进基准；非正差只推进基准
	var (
		userID      uint
		baseline    float64
		hasBaseline bool
	)

	if uid, err := t.prefs.CurrentUser(handle.Ctx()); err == nil {
		userID = uid
	} else {
		logger.Warn("tracker.session_unavailable", "err", err.Error())
	}

	readings := sub.C
	events := busSub.C

	for {
		select {
		case <-handle.Done():
			fmt.Println("步数追踪器: 收到停机信号，退出。")
			return

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Topic != bus.TopicSession {
				continue
			}
			// 会话变化（登录、登出、换号）都会重置基准，
			// 下一个观测重新进入等待基准阶段
			userID = ev.UserID
			hasBaseline = false

		case v, ok := <-readings:
			if !ok {
				// 降级模式的流在单个0之后结束；继续响应会话事件直到停机
				readings = nil
				continue
			}
			if userID == 0 {
				continue
			}
			if !hasBaseline {
				// 第一个观测只建立基准。设备可能从未清零，
				// 直接入库会把启动时的累计值错误地记成当天的步数。
				baseline = v
				hasBaseline = true
				continue
			}

			delta := v - baseline
			if delta > 0 {
				err := t.writer.AddSteps(handle.Ctx(), userID, t.now(), int(delta))
				if err != nil {
					// 写入失败时不推进基准，下一个观测会带着同样的差值重试，
					// 否则这些步数会被悄悄丢掉
					logger.Warn("tracker.add_steps_failed", "uid", userID, "delta", int(delta), "err", err.Error())
					continue
				}
			}
			// 正差成功入库后推进；非正差（重启/重复）只推进不入库
			baseline = v
		}
	}
}
