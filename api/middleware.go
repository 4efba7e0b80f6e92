package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 是请求标识的响应头名称
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配一个唯一标识并回写到响应头。
// 客户端带上已有的标识时沿用，便于跨端关联日志。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set("requestID", id)
		c.Next()
	}
}
