package health

import (
	"context"
	"fmt"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/database"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

// checkInterval 是两次健康检查之间的间隔
const checkInterval = 10 * time.Second

// pingTimeout 是单次Ping的超时
const pingTimeout = 2 * time.Second

// Checker 周期性地探测Redis并更新共享的健康状态。
// Redis不可用时偏好存储进入降级模式，恢复后自动回到正常模式。
type Checker struct {
	rdb    *redis.Client
	status *database.Status
}

// NewChecker 创建健康检查器。
func NewChecker(rdb *redis.Client, status *database.Status) *Checker {
	return &Checker{rdb: rdb, status: status}
}

// Run 是检查器的主循环，设计为以后台服务方式运行：
//
//	go checker.Run(handle)
//
// 它在收到停机信号时退出。
func (c *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()

	fmt.Println("Redis健康检查服务已启动。")

	for {
		c.checkOnce(handle.Ctx())

		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("健康检查服务: 收到停机信号，退出。")
			return
		}
	}
}

func (c *Checker) checkOnce(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := c.rdb.Ping(pingCtx).Err()
	c.status.Update(err == nil)
}
