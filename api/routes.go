package api

import (
	"github.com/PhacedDaWind/SmartFit-sub000/internal/activity"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/chat"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/sensor"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/stats"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/steps"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/gin-gonic/gin"
)

// Handlers 聚合所有模块的HTTP处理器，由main在装配时填充。
type Handlers struct {
	User     *user.Handler
	Activity *activity.Handler
	Steps    *steps.Handler
	Stats    *stats.Handler
	Sensor   *sensor.Handler
	Chat     *chat.Handler
}

// SetupRoutes 注册所有API路由。
// 除注册、登录和找回密码外，其余路由都要求有效会话。
func SetupRoutes(r *gin.Engine, h Handlers) {
	api := r.Group("/api")

	// --- 无需会话的认证入口 ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.User.Register)
		auth.POST("/login", h.User.Login)
		auth.POST("/reset-code", h.User.SendResetCode)
		auth.POST("/reset-password", h.User.ResetPassword)
	}

	// --- 会话保护的业务路由 ---
	authed := api.Group("")
	authed.Use(user.RequireSession())
	{
		authed.POST("/auth/logout", h.User.Logout)

		authed.GET("/user/profile", h.User.Profile)
		authed.PUT("/user/goal", h.User.UpdateGoal)
		authed.PUT("/user/password", h.User.ChangePassword)
		authed.DELETE("/user", h.User.DeleteAccount)

		authed.GET("/prefs/darkmode", h.User.GetDarkMode)
		authed.PUT("/prefs/darkmode", h.User.SetDarkMode)

		authed.POST("/activities", h.Activity.Create)
		authed.PUT("/activities/:id", h.Activity.Update)
		authed.DELETE("/activities/:id", h.Activity.Delete)
		authed.GET("/activities", h.Activity.List)
		authed.GET("/activities/summary", h.Activity.DailySummary)

		authed.POST("/steps", h.Steps.Add)
		authed.GET("/steps", h.Steps.List)

		authed.GET("/stats/summary", h.Stats.GetSummary)
		authed.GET("/stats/stream", h.Stats.StreamSummary)

		authed.POST("/sensor/reading", h.Sensor.Ingest)

		authed.POST("/chat", h.Chat.Send)
		authed.GET("/chat/history", h.Chat.History)
	}
}
