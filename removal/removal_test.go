package removal

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/cutout/imaging"
	"github.com/chaos-io/cutout/rembg"
)

type removerFunc func(ctx context.Context, png []byte) ([]byte, error)

func (f removerFunc) Remove(ctx context.Context, png []byte) ([]byte, error) {
	return f(ctx, png)
}

func photo(t *testing.T, w, h int, format string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 240, G: 240, B: 240, A: 255}
			if x > w/3 && x < 2*w/3 && y > h/3 && y < 2*h/3 {
				c = color.RGBA{R: 10, G: 120, B: 30, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if format == "jpeg" {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeResult(t *testing.T, res *Result) *imaging.Image {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	img, format, err := imaging.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return img
}

func TestService_RemoveBackground(t *testing.T) {
	t.Parallel()

	svc := NewService(rembg.NewBorderKeyRemover(0), 0)

	tests := []struct {
		name   string
		input  string
		width  int
		height int
	}{
		{"png default size", photo(t, 60, 40, "png"), 512, 512},
		{"jpeg default size", photo(t, 33, 21, "jpeg"), 512, 512},
		{"explicit size changes aspect", photo(t, 60, 40, "png"), 100, 300},
		{"data url", "data:image/png;base64," + photo(t, 10, 10, "png"), 16, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.RemoveBackground(context.Background(), Request{
				ImageBase64: tt.input,
				Width:       tt.width,
				Height:      tt.height,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.width, res.Width)
			assert.Equal(t, tt.height, res.Height)

			img := decodeResult(t, res)
			assert.Equal(t, tt.width, img.Width)
			assert.Equal(t, tt.height, img.Height)
			assert.Equal(t, imaging.ModeRGBA, img.Mode)
			assert.True(t, imaging.HasTransparency(img))
		})
	}
}

func TestService_RemoveBackground_SameInputSameMask(t *testing.T) {
	t.Parallel()

	svc := NewService(rembg.NewBorderKeyRemover(0), 0)
	req := Request{ImageBase64: photo(t, 30, 30, "png"), Width: 64, Height: 48}

	first, err := svc.RemoveBackground(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.RemoveBackground(context.Background(), req)
	require.NoError(t, err)

	a, b := decodeResult(t, first), decodeResult(t, second)
	require.Equal(t, a.Width, b.Width)
	require.Equal(t, a.Height, b.Height)
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			require.Equal(t, a.Alpha(x, y), b.Alpha(x, y))
		}
	}
}

func TestService_RemoveBackground_NormalizesInput(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(0, 0, 5, 5))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gray))

	var seen *imaging.Image
	svc := NewService(removerFunc(func(ctx context.Context, in []byte) ([]byte, error) {
		img, _, err := imaging.Decode(in)
		require.NoError(t, err)
		seen = img
		return in, nil
	}), 0)

	_, err := svc.RemoveBackground(context.Background(), Request{
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:       5,
		Height:      5,
	})
	require.NoError(t, err)
	require.NotNil(t, seen)
	// 灰度图转为 RGBA 后重新编码为 PNG，不再是灰度
	assert.NotEqual(t, imaging.ModeOther, seen.Mode)
}

func TestService_RemoveBackground_Errors(t *testing.T) {
	t.Parallel()

	okRemover := rembg.NewBorderKeyRemover(0)
	failing := removerFunc(func(ctx context.Context, png []byte) ([]byte, error) {
		return nil, errors.New("model exploded")
	})
	garbage := removerFunc(func(ctx context.Context, png []byte) ([]byte, error) {
		return []byte("not an image"), nil
	})

	tests := []struct {
		name     string
		remover  rembg.Remover
		input    string
		w, h     int
		wantKind Kind
		wantMsg  string
	}{
		{"invalid base64", okRemover, "not-base64-@@@", 512, 512, KindDecode, "decode base64"},
		{"not an image", okRemover, base64.StdEncoding.EncodeToString([]byte("hello world")), 512, 512, KindImageFormat, "cannot identify image file"},
		{"empty input", okRemover, "", 512, 512, KindImageFormat, "decode image"},
		{"segmentation fails", failing, photo(t, 8, 8, "png"), 512, 512, KindSegmentation, "model exploded"},
		{"segmentation returns garbage", garbage, photo(t, 8, 8, "png"), 512, 512, KindSegmentation, "decode segmentation output"},
		{"zero width", okRemover, photo(t, 8, 8, "png"), 0, 512, KindResize, "width and height must be positive"},
		{"negative height", okRemover, photo(t, 8, 8, "png"), 10, -3, KindResize, "resize image"},
		{"too many pixels", okRemover, photo(t, 8, 8, "png"), 100000, 100000, KindResize, "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewService(tt.remover, 0)
			_, err := svc.RemoveBackground(context.Background(), Request{ImageBase64: tt.input, Width: tt.w, Height: tt.h})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))

	err := fail(KindResize, "resize image", imaging.ErrInvalidSize)
	assert.Equal(t, KindResize, KindOf(err))
	assert.ErrorIs(t, err, imaging.ErrInvalidSize)
	assert.Equal(t, "ResizeError", KindOf(err).String())
}

func TestDecodeBase64(t *testing.T) {
	t.Parallel()

	want := []byte("hello world!?")
	std := base64.StdEncoding.EncodeToString(want)
	url := base64.URLEncoding.EncodeToString(want)

	for _, in := range []string{
		std,
		base64.RawStdEncoding.EncodeToString(want),
		url,
		"data:image/png;base64," + std,
		std[:8] + "\n" + std[8:],
	} {
		got, err := decodeBase64(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := decodeBase64("not-base64-@@@")
	assert.Error(t, err)
}
