package user

import (
	"net/http"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName 是会话cookie的名称
	CookieName = "smartfit-session"
	// CookieMaxAge 是会话cookie的有效期（秒）
	CookieMaxAge = 30 * 24 * 60 * 60
	// UserIDKey 是已认证用户ID在Gin上下文中的键
	UserIDKey = "userID"
)

// SetSessionCookie 在登录成功后签发HMAC签名的会话cookie。
func SetSessionCookie(c *gin.Context, userID uint) error {
	signed, err := token.SignSession(token.SessionPayload{
		UserID:   userID,
		IssuedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	c.SetCookie(CookieName, signed, CookieMaxAge, "/", "", false, true)
	return nil
}

// ClearSessionCookie 在登出时清除会话cookie。
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// RequireSession 校验会话cookie并将用户ID放入Gin上下文。
// 无效或缺失的会话一律返回401，不会创建部分会话。
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
			return
		}
		payload, ok := token.ParseSession(raw)
		if !ok || payload.UserID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "会话无效，请重新登录"})
			return
		}
		c.Set(UserIDKey, payload.UserID)
		c.Next()
	}
}

// SessionUserID 从Gin上下文中读取已认证的用户ID。
func SessionUserID(c *gin.Context) uint {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
