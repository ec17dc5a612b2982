package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnknownFormat 输入字节不是可识别的图像编码
	ErrUnknownFormat = errors.New("cannot identify image file")
	// ErrInvalidSize 目标尺寸非法
	ErrInvalidSize = errors.New("invalid image size")
)

// Decode 解码图像，格式由内容推断
func Decode(data []byte) (*Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrUnknownFormat)
	}

	// 先读头部，拒绝解码后过大的图像
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixels/cfg.Height {
			return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidSize, cfg.Width, cfg.Height, MaxPixels)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnknownFormat
		}
		return nil, "", fmt.Errorf("%w: %s: %v", ErrUnknownFormat, format, err)
	}

	return FromStd(img), format, nil
}

// EncodePNG 编码为 PNG，完全不透明的图像写成真彩色，其它保留 alpha
func EncodePNG(m *Image) ([]byte, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: cannot encode empty image", ErrInvalidSize)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, m.NRGBA()); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}
