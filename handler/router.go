package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/middleware"
)

// NewRouter 注册全部路由
func NewRouter(cfg *config.Config, logger *zap.Logger, removal *RemovalHandler, health *HealthHandler) *gin.Engine {
	r := gin.New()
	// 两条路径都直接命中，不做重定向
	r.RedirectTrailingSlash = false
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())

	r.GET("/health", health.Health)
	r.GET("/version", health.Version)

	remove := r.Group("/remove-background")
	remove.Use(limitBody(cfg.Server.MaxBodyBytes), middleware.Workers(cfg.Server.Workers))
	{
		remove.POST("", removal.RemoveBackground)
		remove.POST("/", removal.RemoveBackground)
	}

	return r
}
