package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/gin-gonic/gin"
)

// Handler 将用户相关的HTTP请求翻译为服务调用。
// 校验失败和认证失败都在这一层解决，不会到达存储层。
type Handler struct {
	svc   *Service
	prefs prefs.Store
}

// NewHandler 创建用户模块的HTTP处理器。
func NewHandler(svc *Service, store prefs.Store) *Handler {
	return &Handler{svc: svc, prefs: store}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

// Register 处理注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名和密码不能为空"})
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名和密码不能为空"})
		return
	}

	u, err := h.svc.Register(c.Request.Context(), strings.TrimSpace(req.Username), req.Password, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, ProfileOf(u))
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理登录请求，成功后签发会话cookie并写入偏好存储。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名和密码不能为空"})
		return
	}

	u, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrWrongPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败，请稍后重试"})
		return
	}

	if err := SetSessionCookie(c, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, ProfileOf(u))
}

// Logout 处理登出请求。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登出失败，请稍后重试"})
		return
	}
	ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "已登出"})
}

// Profile 返回当前用户的信息。
func (h *Handler) Profile(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), SessionUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}
	c.JSON(http.StatusOK, ProfileOf(u))
}

type goalRequest struct {
	Goal *int `json:"goal" binding:"required"`
}

// UpdateGoal 设置当前用户的步数目标。
func (h *Handler) UpdateGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil || *req.Goal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "步数目标必须是非负整数"})
		return
	}
	if err := h.svc.UpdateStepGoal(c.Request.Context(), SessionUserID(c), *req.Goal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新目标失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": *req.Goal})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword 修改当前用户的密码。
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "新旧密码都不能为空"})
		return
	}
	err := h.svc.ChangePassword(c.Request.Context(), SessionUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrWrongPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "旧密码错误"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "修改密码失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密码已更新"})
}

// DeleteAccount 注销当前用户并级联删除其全部数据。
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.svc.DeleteAccount(c.Request.Context(), SessionUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注销失败，请稍后重试"})
		return
	}
	ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "账号已注销"})
}

type resetCodeRequest struct {
	Username string `json:"username" binding:"required"`
}

// SendResetCode 发送一次性验证码到用户邮箱。
func (h *Handler) SendResetCode(c *gin.Context) {
	var req resetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名不能为空"})
		return
	}
	sent, err := h.svc.SendResetCode(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发送验证码失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

type resetPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword 用一次性验证码重设密码。
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名、验证码和新密码都不能为空"})
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Username, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, ErrCodeInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重设密码失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密码已重设"})
}

type darkModeRequest struct {
	On *bool `json:"on" binding:"required"`
}

// GetDarkMode 返回深色模式偏好。
func (h *Handler) GetDarkMode(c *gin.Context) {
	on, err := h.prefs.DarkMode(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "偏好存储暂时不可用"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"on": on})
}

// SetDarkMode 更新深色模式偏好。
func (h *Handler) SetDarkMode(c *gin.Context) {
	var req darkModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if err := h.prefs.SetDarkMode(c.Request.Context(), *req.On); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "偏好存储暂时不可用"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"on": *req.On})
}
