package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// limitBody 限制请求体大小，超出时 JSON 解码会失败
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
