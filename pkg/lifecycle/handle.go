package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给单个后台服务的生命周期控制器。
// 服务在退出前必须通过defer调用Close，通知管理器自己已经完成关闭。
type Handle struct {
	ctx   context.Context
	Close func()
}

// Ctx 返回句柄内部的上下文。
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 返回一个channel，当管理器发出停机信号时该channel会关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 在Done()的channel关闭后，返回上下文被取消的原因。
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 暂停指定的时长；如果期间收到停机信号则提前返回错误。
// 后台重试循环中的休眠都应使用此方法。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)

	select {
	case <-h.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return h.Err()
	case <-timer.C:
		return nil
	}
}
