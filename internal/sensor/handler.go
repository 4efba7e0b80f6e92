package sensor

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- 上报读数类型 ---

const (
	ReadingStepCounter   = "step_counter"
	ReadingAccelerometer = "accelerometer"
)

// Handler 接收设备侧上报的原始传感器读数并注入ChannelDevice。
// 它只做格式校验和转发，任何计数语义都在Source和统计管道中。
type Handler struct {
	device *ChannelDevice
}

// NewHandler 创建传感器上报处理器。
func NewHandler(device *ChannelDevice) *Handler {
	return &Handler{device: device}
}

type readingRequest struct {
	Type   string    `json:"type" binding:"required"`
	Value  float64   `json:"value"`
	Values []float64 `json:"values"`
}

// Ingest 处理 POST /api/sensor/reading。
func (h *Handler) Ingest(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读数格式错误"})
		return
	}

	switch req.Type {
	case ReadingStepCounter:
		h.device.PushStep(req.Value)
	case ReadingAccelerometer:
		if len(req.Values) != 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "加速度读数必须包含三个分量"})
			return
		}
		h.device.PushMotion(req.Values[0], req.Values[1], req.Values[2])
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法识别的读数类型: " + req.Type})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
