package sensor

import (
	"sync"
)

// Device 抽象了设备侧可用的运动传感器能力。
// 注册返回的channel在对应监听器注销后不再收到数据。
// ok=false 表示该类传感器在当前设备上不存在。
type Device interface {
	// RegisterStepListener 注册专用计步传感器，返回累计步数的原始读数流。
	RegisterStepListener() (readings <-chan float64, ok bool)
	UnregisterStepListener()

	// RegisterMotionListener 注册三轴加速度传感器，返回原始三轴读数流。
	RegisterMotionListener() (readings <-chan [3]float64, ok bool)
	UnregisterMotionListener()
}

// ChannelDevice 是Device的channel实现。
// 设备读数经由HTTP上报接口推入，代替操作系统的传感器回调。
type ChannelDevice struct {
	mu sync.Mutex

	hasStep   bool
	hasMotion bool

	stepCh   chan float64
	motionCh chan [3]float64

	stepOn   bool
	motionOn bool
}

// NewChannelDevice 按能力开关创建设备。
// 两个开关都为false时模拟完全没有运动传感器的设备。
func NewChannelDevice(hasStep, hasMotion bool) *ChannelDevice {
	return &ChannelDevice{
		hasStep:   hasStep,
		hasMotion: hasMotion,
		stepCh:    make(chan float64, 64),
		motionCh:  make(chan [3]float64, 64),
	}
}

func (d *ChannelDevice) RegisterStepListener() (<-chan float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasStep {
		return nil, false
	}
	d.stepOn = true
	return d.stepCh, true
}

func (d *ChannelDevice) UnregisterStepListener() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepOn = false
}

func (d *ChannelDevice) RegisterMotionListener() (<-chan [3]float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasMotion {
		return nil, false
	}
	d.motionOn = true
	return d.motionCh, true
}

func (d *ChannelDevice) UnregisterMotionListener() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.motionOn = false
}

// PushStep 推入一个计步传感器读数。未注册监听时读数被丢弃。
func (d *ChannelDevice) PushStep(cumulative float64) {
	d.mu.Lock()
	on := d.stepOn
	d.mu.Unlock()
	if !on {
		return
	}
	select {
	case d.stepCh <- cumulative:
	default:
		// 消费方落后时丢弃：累计读数会被下一个读数覆盖
	}
}

// PushMotion 推入一个三轴加速度读数。未注册监听时读数被丢弃。
func (d *ChannelDevice) PushMotion(x, y, z float64) {
	d.mu.Lock()
	on := d.motionOn
	d.mu.Unlock()
	if !on {
		return
	}
	select {
	case d.motionCh <- [3]float64{x, y, z}:
	default:
	}
}

// StepListenerActive 返回计步监听是否处于注册状态，供测试断言注销行为。
func (d *ChannelDevice) StepListenerActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stepOn
}

// MotionListenerActive 返回加速度监听是否处于注册状态。
func (d *ChannelDevice) MotionListenerActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.motionOn
}
