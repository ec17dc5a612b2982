package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/middleware"
	"github.com/chaos-io/cutout/model"
	"github.com/chaos-io/cutout/removal"
	"github.com/chaos-io/cutout/util"
)

type RemovalHandler struct {
	cfg     *config.Config
	service *removal.Service
}

func NewRemovalHandler(cfg *config.Config, service *removal.Service) *RemovalHandler {
	return &RemovalHandler{
		cfg:     cfg,
		service: service,
	}
}

// RemoveBackground 处理 POST /remove-background
func (h *RemovalHandler) RemoveBackground(c *gin.Context) {
	width, err := intQuery(c, "width", h.cfg.Image.DefaultWidth)
	if err != nil {
		validationError(c, err)
		return
	}
	height, err := intQuery(c, "height", h.cfg.Image.DefaultHeight)
	if err != nil {
		validationError(c, err)
		return
	}

	var req model.RemoveBackgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Detail: fmt.Sprintf("request body larger than %d bytes", tooLarge.Limit),
			})
			return
		}
		validationError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.ImageBase64 == nil {
		validationError(c, fmt.Errorf("field required: image_base64"))
		return
	}

	requestID := middleware.GetRequestID(c)
	result, err := h.service.RemoveBackground(c.Request.Context(), removal.Request{
		ImageBase64: *req.ImageBase64,
		Width:       width,
		Height:      height,
		RequestID:   requestID,
	})
	if err != nil {
		util.Logger.Error("failed to remove background",
			zap.String("request_id", requestID),
			zap.String("kind", removal.KindOf(err).String()),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.RemoveBackgroundResponse{
		Message:     model.MessageRemoved,
		ImageBase64: result.ImageBase64,
	})
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s: value is not a valid integer: %q", key, raw)
	}
	return v, nil
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Detail: err.Error()})
}
