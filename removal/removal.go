package removal

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/chaos-io/cutout/imaging"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/util"
)

// Request 一次去背景请求
type Request struct {
	ImageBase64 string
	Width       int
	Height      int
	// RequestID 只用于日志
	RequestID string
}

// Result 去背景结果，ImageBase64 为 PNG 的 base64
type Result struct {
	ImageBase64 string
	Width       int
	Height      int
}

// Service 去背景流水线，本身无状态，可被多个请求并发使用
type Service struct {
	remover   rembg.Remover
	maxPixels int
}

func NewService(remover rembg.Remover, maxPixels int) *Service {
	if maxPixels <= 0 {
		maxPixels = imaging.MaxPixels
	}
	return &Service{
		remover:   remover,
		maxPixels: maxPixels,
	}
}

// RemoveBackground 解码 -> 统一颜色模式 -> PNG -> 分割 -> Lanczos 缩放 -> PNG -> base64
func (s *Service) RemoveBackground(ctx context.Context, req Request) (*Result, error) {
	log := util.Logger.With(zap.String("request_id", req.RequestID))

	raw, err := decodeBase64(req.ImageBase64)
	if err != nil {
		return nil, fail(KindDecode, "decode base64", err)
	}

	img, format, err := imaging.Decode(raw)
	if err != nil {
		return nil, fail(KindImageFormat, "decode image", err)
	}
	log.Debug("image decoded",
		zap.String("format", format),
		zap.String("mode", img.Mode.String()),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))

	normalized, err := imaging.EncodePNG(img.Normalize())
	if err != nil {
		return nil, fail(KindImageFormat, "normalize image", err)
	}

	done := util.Trace("segmentation", zap.String("request_id", req.RequestID))
	segmented, err := s.remover.Remove(ctx, normalized)
	done()
	if err != nil {
		return nil, fail(KindSegmentation, "remove background", err)
	}

	cutout, _, err := imaging.Decode(segmented)
	if err != nil {
		return nil, fail(KindSegmentation, "decode segmentation output", err)
	}

	resized, err := imaging.ResizeLimit(cutout, req.Width, req.Height, s.maxPixels)
	if err != nil {
		return nil, fail(KindResize, "resize image", err)
	}

	out, err := imaging.EncodePNG(resized)
	if err != nil {
		return nil, fail(KindEncode, "encode output", err)
	}

	return &Result{
		ImageBase64: base64.StdEncoding.EncodeToString(out),
		Width:       resized.Width,
		Height:      resized.Height,
	}, nil
}

// decodeBase64 接受标准 base64，容忍 data URL 前缀、空白和缺失的填充
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}
	s = strings.Join(strings.Fields(s), "")

	if strings.ContainsAny(s, "-_") {
		return base64.URLEncoding.DecodeString(pad(s))
	}
	return base64.StdEncoding.DecodeString(pad(s))
}

func pad(s string) string {
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return s
}
