package activity

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 将活动日志的HTTP请求翻译为仓库调用。
type Handler struct {
	repo *Repository
}

// NewHandler 创建活动模块的HTTP处理器。
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type entryRequest struct {
	Date  time.Time `json:"date" binding:"required"`
	Type  string    `json:"type" binding:"required"`
	Name  string    `json:"name" binding:"required"`
	Value *float64  `json:"value" binding:"required"`
	Unit  string    `json:"unit" binding:"required"`
	Sets  int       `json:"sets"`
	Reps  int       `json:"reps"`
}

// validate 检查请求体中用户可见的校验规则。
// 校验失败会阻止保存动作，错误不会到达存储层。
func (req *entryRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "活动名称不能为空"
	}
	switch req.Type {
	case TypeCardio, TypeStrength, TypeFood:
	default:
		return "无法识别的活动类别: " + req.Type
	}
	if *req.Value < 0 {
		return "数值不能为负数"
	}
	return ""
}

// Create 新增一条活动日志。
func (h *Handler) Create(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "必填字段缺失或格式错误"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	e := Entry{
		UserID: user.SessionUserID(c),
		Date:   req.Date,
		Type:   req.Type,
		Name:   strings.TrimSpace(req.Name),
		Value:  *req.Value,
		Unit:   req.Unit,
		Sets:   req.Sets,
		Reps:   req.Reps,
	}
	if err := h.repo.Create(c.Request.Context(), &e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// Update 编辑并重新保存一条日志。
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日志ID"})
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "必填字段缺失或格式错误"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	e := Entry{
		ID:     uint(id),
		UserID: user.SessionUserID(c),
		Date:   req.Date,
		Type:   req.Type,
		Name:   strings.TrimSpace(req.Name),
		Value:  *req.Value,
		Unit:   req.Unit,
		Sets:   req.Sets,
		Reps:   req.Reps,
	}
	if err := h.repo.Update(c.Request.Context(), &e); err != nil {
		if errors.Is(err, ErrNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// Delete 删除一条日志。
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日志ID"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), user.SessionUserID(c), uint(id)); err != nil {
		if errors.Is(err, ErrNotOwned) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

// List 返回指定时间之后的日志，默认返回当天。
func (h *Handler) List(c *gin.Context) {
	since := time.Now()
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since参数必须是RFC3339格式"})
			return
		}
		since = parsed
	}

	entries, err := h.repo.ListSince(c.Request.Context(), user.SessionUserID(c), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// DailySummary 返回按天分组的单位聚合，用于图表。
func (h *Handler) DailySummary(c *gin.Context) {
	unit := c.Query("unit")
	if unit == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit参数不能为空"})
		return
	}
	rows, err := h.repo.DailySummaryByUnit(c.Request.Context(), user.SessionUserID(c), unit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
