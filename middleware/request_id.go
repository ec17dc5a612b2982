package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID 为每个请求生成 ksuid，客户端传入的 X-Request-Id 优先
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
