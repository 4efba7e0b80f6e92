package stats

import (
	"io"
	"net/http"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 暴露统计汇总的HTTP读取面：单次快照和SSE流。
type Handler struct {
	pipeline *Pipeline
}

// NewHandler 创建统计模块的HTTP处理器。
func NewHandler(p *Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// GetSummary 返回当前用户在指定窗口下的一次性汇总快照。
// GET /api/stats/summary?filter=daily|monthly
func (h *Handler) GetSummary(c *gin.Context) {
	f := ParseFilter(c.Query("filter"))
	sum, err := h.pipeline.Compose(c.Request.Context(), user.SessionUserID(c), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "汇总计算失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// StreamSummary 以Server-Sent Events持续推送汇总记录。
// 客户端断开时订阅被同步关闭，所有上游监听随之停止。
// GET /api/stats/stream?filter=daily|monthly
func (h *Handler) StreamSummary(c *gin.Context) {
	sub := h.pipeline.Subscribe()
	defer sub.Close()

	if raw := c.Query("filter"); raw != "" {
		sub.SetFilter(ParseFilter(raw))
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case sum, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("summary", sum)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
