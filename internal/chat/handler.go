package chat

import (
	"net/http"
	"strings"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 是聊天模块的HTTP处理器。
type Handler struct {
	svc   *Service
	quota *Quota
}

// NewHandler 创建聊天模块的HTTP处理器。
func NewHandler(svc *Service, quota *Quota) *Handler {
	return &Handler{svc: svc, quota: quota}
}

type sendRequest struct {
	Text string `json:"text" binding:"required"`
}

// Send 处理一条用户提问并返回助手回复。
// POST /api/chat
func (h *Handler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求格式"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "消息不能为空"})
		return
	}

	userID := user.SessionUserID(c)

	ok, err := h.quota.Allow(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "今天的提问次数已用完，明天再来吧"})
		return
	}

	reply, err := h.svc.Send(c.Request.Context(), userID, text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "助手暂时无法回复，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// History 返回当前用户的全部聊天记录。
// GET /api/chat/history
func (h *Handler) History(c *gin.Context) {
	messages, err := h.svc.History(c.Request.Context(), user.SessionUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取聊天记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
