package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/lifecycle"
)

const (
	httpShutdownTimeout     = 15 * time.Second
	gracefulShutdownTimeout = 30 * time.Second
	forcefulShutdownTimeout = 1 * time.Second
)

// Coordinator 负责协调整个应用的优雅停机。
// 后台服务按重要性分属两个管理器：优雅组允许较长的收尾时间，
// 强制组在最后时刻被快速终止。
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
}

// NewCoordinator 创建停机协调器。
func NewCoordinator() *Coordinator {
	return &Coordinator{
		GracefulManager: lifecycle.NewManager(),
		ForcefulManager: lifecycle.NewManager(),
	}
}

// ListenForSignalsAndShutdown 阻塞等待操作系统信号，然后按序执行停机：
// 先关闭HTTP服务器停止接收新请求，再停掉优雅组的后台服务，
// 最后终止强制组。每一步都有超时保护。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n收到停机信号，开始优雅关闭...")

	// 1. 关闭HTTP服务器，等待在途请求完成
	httpCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(httpCtx); err != nil {
		fmt.Printf("HTTP服务器关闭超时: %v\n", err)
	} else {
		fmt.Println("HTTP服务器已关闭。")
	}

	// 2. 停止优雅组的后台服务
	c.GracefulManager.Shutdown()
	if remaining := c.GracefulManager.WaitWithTimeout(gracefulShutdownTimeout); len(remaining) > 0 {
		fmt.Printf("停机警告: 以下服务未能在期限内退出: %v\n", remaining)
	}

	// 3. 终止强制组的后台服务
	c.ForcefulManager.Shutdown()
	if remaining := c.ForcefulManager.WaitWithTimeout(forcefulShutdownTimeout); len(remaining) > 0 {
		fmt.Printf("停机警告: 以下服务被强制终止: %v\n", remaining)
	}

	fmt.Println("所有服务已停止，进程退出。")
}
