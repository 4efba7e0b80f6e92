package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShutdownWaitsForServices 停机信号广播后，管理器等待服务退出
func TestShutdownWaitsForServices(t *testing.T) {
	m := NewManager()
	handle, err := m.NewServiceHandle("worker")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer handle.Close()
		<-handle.Done()
	}()

	m.Shutdown()
	remaining := m.WaitWithTimeout(2 * time.Second)
	assert.Empty(t, remaining)
	<-done
}

// TestDuplicateRegistration 同名服务不允许重复注册
func TestDuplicateRegistration(t *testing.T) {
	m := NewManager()
	_, err := m.NewServiceHandle("worker")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("worker")
	assert.Error(t, err)
}

// TestWaitTimeoutReportsStragglers 超时后返回未退出的服务名
func TestWaitTimeoutReportsStragglers(t *testing.T) {
	m := NewManager()
	_, err := m.NewServiceHandle("stuck")
	require.NoError(t, err)

	m.Shutdown()
	remaining := m.WaitWithTimeout(100 * time.Millisecond)
	assert.Equal(t, []string{"stuck"}, remaining)
}

// TestHandleSleepInterrupted 停机信号打断休眠
func TestHandleSleepInterrupted(t *testing.T) {
	m := NewManager()
	handle, err := m.NewServiceHandle("sleeper")
	require.NoError(t, err)
	defer handle.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		m.Shutdown()
	}()

	start := time.Now()
	err = handle.Sleep(5 * time.Second)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
