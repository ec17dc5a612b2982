package rembg

import (
	"context"
	"fmt"

	"github.com/chaos-io/cutout/imaging"
)

// DefaultTolerance 与背景色的最大通道差不超过该值的像素视为背景
const DefaultTolerance = 48

// BorderKeyRemover 进程内的简单抠图：
// 用图像边缘像素的中位数估计背景色，从边缘开始向内泛洪，
// 与背景色足够接近的连通像素置为透明，紧邻的过渡像素按距离给半透明
type BorderKeyRemover struct {
	tolerance int
}

func NewBorderKeyRemover(tolerance int) *BorderKeyRemover {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &BorderKeyRemover{tolerance: tolerance}
}

func (b *BorderKeyRemover) Name() string {
	return "local/borderkey"
}

func (b *BorderKeyRemover) Remove(ctx context.Context, png []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := imaging.Decode(png)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	// 已经抠过图的输入原样返回
	if imaging.HasTransparency(img) {
		return png, nil
	}

	out := b.key(img)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return data, nil
}

// Ping 本地实现总是可用
func (b *BorderKeyRemover) Ping(ctx context.Context) error {
	return nil
}

func (b *BorderKeyRemover) key(img *imaging.Image) *imaging.Image {
	w, h := img.Width, img.Height
	out := &imaging.Image{
		Width:  w,
		Height: h,
		Mode:   imaging.ModeRGBA,
		Pix:    make([]uint8, len(img.Pix)),
	}
	copy(out.Pix, img.Pix)

	bg := borderMedian(img)
	background := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		idx := y*w + x
		if background[idx] || distance(img.Pix[idx*4:idx*4+3], bg) > b.tolerance {
			return
		}
		background[idx] = true
		queue = append(queue, idx)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%w, idx/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	for idx, isBG := range background {
		if isBG {
			out.Pix[idx*4+3] = 0
			continue
		}
		if !touches(background, idx, w, h) {
			continue
		}
		// 过渡带：tolerance 到 2*tolerance 之间线性渐变
		d := distance(img.Pix[idx*4:idx*4+3], bg) - b.tolerance
		if d < b.tolerance {
			out.Pix[idx*4+3] = uint8(255 * d / b.tolerance)
		}
	}

	return out
}

func touches(mask []bool, idx, w, h int) bool {
	x, y := idx%w, idx/w
	return (x > 0 && mask[idx-1]) ||
		(x < w-1 && mask[idx+1]) ||
		(y > 0 && mask[idx-w]) ||
		(y < h-1 && mask[idx+w])
}

// borderMedian 计算边缘像素每个通道的中位数
func borderMedian(img *imaging.Image) [3]uint8 {
	var hist [3][256]int
	n := 0
	add := func(x, y int) {
		c := img.At(x, y)
		hist[0][c.R]++
		hist[1][c.G]++
		hist[2][c.B]++
		n++
	}

	w, h := img.Width, img.Height
	for x := 0; x < w; x++ {
		add(x, 0)
		if h > 1 {
			add(x, h-1)
		}
	}
	for y := 1; y < h-1; y++ {
		add(0, y)
		if w > 1 {
			add(w-1, y)
		}
	}

	var median [3]uint8
	for ch := 0; ch < 3; ch++ {
		seen := 0
		for v := 0; v < 256; v++ {
			seen += hist[ch][v]
			if 2*seen >= n {
				median[ch] = uint8(v)
				break
			}
		}
	}
	return median
}

// distance 最大通道差
func distance(rgb []uint8, bg [3]uint8) int {
	d := 0
	for i := 0; i < 3; i++ {
		v := int(rgb[i]) - int(bg[i])
		if v < 0 {
			v = -v
		}
		if v > d {
			d = v
		}
	}
	return d
}
