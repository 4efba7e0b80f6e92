package sensor

import (
	"math"
	"sync"
)

// mode 表示Source当前使用的物理传感器。
type mode int

const (
	modeIdle mode = iota
	// modeStep 表示使用专用计步传感器，直接转发原始累计读数
	modeStep
	// modeMotion 表示回退到加速度传感器，用合加速度阈值手动计数
	modeMotion
	// modeNone 表示设备没有任何可用传感器，降级为单次0读数
	modeNone
)

// Source 把具体的物理传感器包装为单一的步数观测流。
// 不论底层是计步传感器、加速度回退还是完全缺失，
// 订阅方看到的都是一串（同一注册期内）单调不减的累计步数。
// 传感器缺失是降级信号而不是错误，Source从不触碰持久化存储。
type Source struct {
	device    Device
	threshold float64

	mu       sync.Mutex
	subs     map[uint64]chan float64
	nextID   uint64
	mode     mode
	manual   float64
	stopPump chan struct{}
	pumpDone chan struct{}
}

// NewSource 创建传感器源。threshold是加速度回退模式下的合加速度阈值。
func NewSource(device Device, threshold float64) *Source {
	return &Source{
		device:    device,
		threshold: threshold,
		subs:      make(map[uint64]chan float64),
	}
}

// Subscription 是对观测流的一次订阅。
type Subscription struct {
	// C 是步数观测channel。降级模式下它在发出单个0之后被关闭。
	C <-chan float64

	source *Source
	id     uint64
	once   sync.Once
}

// Subscribe 注册一个消费者。
// 第一个消费者触发底层硬件监听的注册；后续消费者共享同一个监听。
func (s *Source) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan float64, 8)
	s.nextID++
	id := s.nextID
	s.subs[id] = ch

	if s.mode == modeIdle {
		s.activateLocked()
	}

	// 降级模式：发出单个0观测后立刻结束这个订阅的流
	if s.mode == modeNone {
		ch <- 0
		close(ch)
	}

	return &Subscription{C: ch, source: s, id: id}
}

// activateLocked 按优先级探测硬件能力并启动泵协程。调用方必须持有s.mu。
func (s *Source) activateLocked() {
	s.stopPump = make(chan struct{})
	s.pumpDone = make(chan struct{})
	s.manual = 0

	if stepCh, ok := s.device.RegisterStepListener(); ok {
		s.mode = modeStep
		go s.pumpSteps(stepCh, s.stopPump, s.pumpDone)
		return
	}
	if motionCh, ok := s.device.RegisterMotionListener(); ok {
		s.mode = modeMotion
		go s.pumpMotion(motionCh, s.stopPump, s.pumpDone)
		return
	}
	// 两类传感器都不存在：降级，无泵协程
	s.mode = modeNone
	close(s.pumpDone)
}

// pumpSteps 将计步传感器的原始累计读数原样广播给所有订阅者。
func (s *Source) pumpSteps(readings <-chan float64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case v, ok := <-readings:
			if !ok {
				return
			}
			s.broadcast(v)
		}
	}
}

// pumpMotion 计算三轴读数的欧氏模长，超过阈值则手动计数并广播。
// 阈值(约12)需要超过静止时的重力模长(约9.8)，否则会把静止误判为行走。
func (s *Source) pumpMotion(readings <-chan [3]float64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case r, ok := <-readings:
			if !ok {
				return
			}
			magnitude := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
			if magnitude > s.threshold {
				s.mu.Lock()
				s.manual++
				v := s.manual
				s.mu.Unlock()
				s.broadcast(v)
			}
		}
	}
}

// broadcast 将一个观测分发给所有订阅者。
// 订阅者缓冲满时丢弃其最旧的观测：累计值语义下新观测总是包含旧观测。
func (s *Source) broadcast(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Cancel 取消订阅。最后一个订阅者离开时，底层硬件监听被注销恰好一次。
// 可以安全地重复调用。
func (sub *Subscription) Cancel() {
	sub.once.Do(func() {
		s := sub.source

		s.mu.Lock()
		ch, exists := s.subs[sub.id]
		if exists {
			delete(s.subs, sub.id)
			if s.mode != modeNone {
				// 降级模式下channel在订阅时已经关闭
				close(ch)
			}
		}
		last := len(s.subs) == 0 && s.mode != modeIdle
		currentMode := s.mode
		stop := s.stopPump
		done := s.pumpDone
		s.mu.Unlock()

		if !last {
			return
		}

		// 最后一个订阅者：停泵并注销硬件监听
		if currentMode == modeStep || currentMode == modeMotion {
			close(stop)
			<-done
		}
		switch currentMode {
		case modeStep:
			s.device.UnregisterStepListener()
		case modeMotion:
			s.device.UnregisterMotionListener()
		}

		s.mu.Lock()
		s.mode = modeIdle
		s.manual = 0
		s.mu.Unlock()
	})
}
