package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/cutout/rembg"
)

// BuildInfo 构建信息，由 main 通过 ldflags 注入
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`
}

type HealthHandler struct {
	build BuildInfo
	probe *rembg.Probe
}

func NewHealthHandler(build BuildInfo, probe *rembg.Probe) *HealthHandler {
	return &HealthHandler{build: build, probe: probe}
}

// Health 服务本身存活即返回 200，分割后端状态单独给出
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"version": h.build.Version,
	}
	if h.probe != nil {
		resp["segmentation"] = h.probe.Status()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
