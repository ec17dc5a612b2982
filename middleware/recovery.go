package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery panic 转为 500，响应体与其它失败一致
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("request_id", GetRequestID(c)),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"detail": fmt.Sprint(recovered),
		})
	})
}
