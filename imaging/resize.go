package imaging

import (
	"fmt"

	"github.com/nfnt/resize"
)

// MaxPixels 输出图像允许的最大像素数
const MaxPixels = 64 << 20

// Resize 使用 Lanczos3 缩放到精确的 width x height，不保持宽高比
func Resize(m *Image, width, height int) (*Image, error) {
	return ResizeLimit(m, width, height, MaxPixels)
}

// ResizeLimit 同 Resize，但输出像素数不能超过 maxPixels
func ResizeLimit(m *Image, width, height, maxPixels int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d, width and height must be positive", ErrInvalidSize, width, height)
	}
	if maxPixels > 0 && width > maxPixels/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidSize, width, height, maxPixels)
	}
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: source image is empty", ErrInvalidSize)
	}

	if m.Width == width && m.Height == height {
		return m, nil
	}

	// nfnt/resize 对 0 的宽或高会保持宽高比，前面已经排除
	resized := resize.Resize(uint(width), uint(height), m.NRGBA(), resize.Lanczos3)

	out := FromStd(resized)
	out.Mode = m.Mode
	return out, nil
}
