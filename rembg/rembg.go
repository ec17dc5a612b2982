package rembg

import (
	"context"
	"fmt"

	"github.com/chaos-io/cutout/config"
)

// Remover 背景分割：输入 PNG 字节，返回背景透明的 PNG 字节
type Remover interface {
	Remove(ctx context.Context, png []byte) ([]byte, error)
}

// Pinger 可以探测可用性的 Remover
type Pinger interface {
	Ping(ctx context.Context) error
}

// Named 返回 Remover 的名字，用于日志和健康检查
type Named interface {
	Name() string
}

// New 按配置创建 Remover
func New(cfg *config.SegmentationConfig) (Remover, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		return NewHTTPRemover(cfg.Endpoint, cfg.Model, cfg.Timeout), nil
	case config.BackendLocal:
		return NewBorderKeyRemover(cfg.Tolerance), nil
	default:
		return nil, fmt.Errorf("unknown segmentation backend %q", cfg.Backend)
	}
}

// NameOf 返回 r 的名字，未实现 Named 时返回类型名
func NameOf(r Remover) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}
