package steps

import (
	"net/http"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 暴露步数桶的HTTP接口：手动补录和历史查询。
type Handler struct {
	repo *Repository
}

// NewHandler 创建步数模块的HTTP处理器。
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type addRequest struct {
	Steps int `json:"steps" binding:"required"`
}

// Add 把一段手动补录的步数累加进当天的桶。
// 和传感器增量走同一条写入路径，单桶不变量对两种来源同时成立。
// POST /api/steps
func (h *Handler) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求格式"})
		return
	}
	if req.Steps <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "步数必须为正"})
		return
	}

	err := h.repo.AddSteps(c.Request.Context(), user.SessionUserID(c), time.Now(), req.Steps)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "记录步数失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "记录成功"})
}

// List 返回用户自指定日期以来的每日步数桶。
// GET /api/steps?since=2006-01-02  缺省为最近30天
func (h *Handler) List(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.ParseInLocation(DayFormat, raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日期格式，应为 " + DayFormat})
			return
		}
		since = parsed
	}

	records, err := h.repo.ListSince(c.Request.Context(), user.SessionUserID(c), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询步数记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
