package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ColorMode 图像的颜色模式
type ColorMode int

const (
	// ModeOther 灰度、调色板、CMYK 等其它模式
	ModeOther ColorMode = iota
	// ModeRGB 不透明彩色
	ModeRGB
	// ModeRGBA 带 alpha 的彩色
	ModeRGBA
)

func (m ColorMode) String() string {
	switch m {
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	default:
		return "other"
	}
}

// Image 服务边界上的图像值类型
// Pix 为非预乘的 RGBA，每像素 4 字节，行跨度为 4*Width
type Image struct {
	Width  int
	Height int
	Mode   ColorMode
	Pix    []uint8
}

// New 创建全透明的 RGBA 图像
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Mode:   ModeRGBA,
		Pix:    make([]uint8, 4*width*height),
	}
}

// FromStd 从标准库 image.Image 转换，颜色模式由具体类型决定
func FromStd(img image.Image) *Image {
	nrgba := toNRGBA(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	pix := nrgba.Pix
	if nrgba.Stride != 4*w || nrgba.Rect.Min != (image.Point{}) {
		pix = make([]uint8, 4*w*h)
		for y := 0; y < h; y++ {
			src := nrgba.Pix[nrgba.PixOffset(nrgba.Rect.Min.X, nrgba.Rect.Min.Y+y):]
			copy(pix[y*4*w:(y+1)*4*w], src[:4*w])
		}
	}

	return &Image{
		Width:  w,
		Height: h,
		Mode:   modeOf(img),
		Pix:    pix,
	}
}

// NRGBA 转换为标准库表示，共享像素缓冲
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix,
		Stride: 4 * m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// At 返回 (x, y) 处的颜色
func (m *Image) At(x, y int) color.NRGBA {
	i := (y*m.Width + x) * 4
	return color.NRGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: m.Pix[i+3]}
}

// Alpha 返回 (x, y) 处的 alpha
func (m *Image) Alpha(x, y int) uint8 {
	return m.Pix[(y*m.Width+x)*4+3]
}

// Normalize 既不是 RGB 也不是 RGBA 的图像统一转为 RGBA，保留可能存在的透明信息
// 像素缓冲本身已经是 RGBA，这里只需要修正模式
func (m *Image) Normalize() *Image {
	if m.Mode == ModeRGB || m.Mode == ModeRGBA {
		return m
	}
	return &Image{
		Width:  m.Width,
		Height: m.Height,
		Mode:   ModeRGBA,
		Pix:    m.Pix,
	}
}

// HasTransparency 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为有透明像素
func HasTransparency(m *Image) bool {
	for i := 3; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 255 {
			return true
		}
	}
	return false
}

func modeOf(img image.Image) ColorMode {
	switch t := img.(type) {
	case *image.YCbCr:
		return ModeRGB
	case *image.RGBA:
		// PNG 真彩色无 alpha 通道时解码为 *image.RGBA
		if t.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return ModeRGBA
	default:
		return ModeOther
	}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
