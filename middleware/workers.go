package middleware

import (
	"github.com/gin-gonic/gin"
)

// Workers 限制同时执行的请求数为 n，其余请求排队等待
// 没有排队超时；客户端断开时放弃排队
func Workers(n int) gin.HandlerFunc {
	if n <= 0 {
		n = 1
	}
	slots := make(chan struct{}, n)

	return func(c *gin.Context) {
		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			c.Next()
		case <-c.Request.Context().Done():
			c.AbortWithStatus(499)
		}
	}
}
