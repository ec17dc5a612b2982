package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeStd(t *testing.T, img image.Image, format string) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	default:
		t.Fatalf("unknown format %s", format)
	}
	return buf.Bytes()
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 200, G: 40, B: 40, A: 255}
			if (x/4+y/4)%2 == 0 {
				c = color.NRGBA{R: 20, G: 40, B: 220, A: 128}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(0, 0, 10, 6))
	paletted := image.NewPaletted(image.Rect(0, 0, 3, 3), color.Palette{color.Black, color.White})
	opaque := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}

	tests := []struct {
		name       string
		data       []byte
		wantFormat string
		wantMode   ColorMode
		wantW      int
		wantH      int
	}{
		{"png with alpha", encodeStd(t, checker(16, 8), "png"), "png", ModeRGBA, 16, 8},
		{"opaque png", encodeStd(t, opaque, "png"), "png", ModeRGB, 5, 5},
		{"jpeg", encodeStd(t, checker(9, 7), "jpeg"), "jpeg", ModeRGB, 9, 7},
		{"gray png", encodeStd(t, gray, "png"), "png", ModeOther, 10, 6},
		{"paletted png", encodeStd(t, paletted, "png"), "png", ModeOther, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, format, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantMode, img.Mode)
			assert.Equal(t, tt.wantW, img.Width)
			assert.Equal(t, tt.wantH, img.Height)
			assert.Len(t, img.Pix, 4*tt.wantW*tt.wantH)
		})
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("hello world"), {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}} {
		_, _, err := Decode(data)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	img := &Image{Width: 1, Height: 1, Mode: ModeOther, Pix: []uint8{1, 2, 3, 255}}
	got := img.Normalize()
	assert.Equal(t, ModeRGBA, got.Mode)
	assert.Equal(t, img.Pix, got.Pix)

	rgb := &Image{Width: 1, Height: 1, Mode: ModeRGB, Pix: []uint8{1, 2, 3, 255}}
	assert.Same(t, rgb, rgb.Normalize())
}

func TestFromStd_SubImage(t *testing.T) {
	t.Parallel()

	src := checker(16, 16)
	sub := src.SubImage(image.Rect(4, 4, 12, 10))

	img := FromStd(sub)
	require.Equal(t, 8, img.Width)
	require.Equal(t, 6, img.Height)
	assert.Equal(t, src.NRGBAAt(4, 4), img.At(0, 0))
	assert.Equal(t, src.NRGBAAt(11, 9), img.At(7, 5))
}

func TestResize(t *testing.T) {
	t.Parallel()

	src := FromStd(checker(40, 20))

	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"square default", 512, 512, false},
		{"shrink and change aspect", 7, 31, false},
		{"same size", 40, 20, false},
		{"zero width", 0, 10, true},
		{"negative height", 10, -1, true},
		{"too large", 1 << 20, 1 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resize(src, tt.w, tt.h)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, got.Width)
			assert.Equal(t, tt.h, got.Height)
			assert.Equal(t, src.Mode, got.Mode)
		})
	}
}

func TestEncodePNG_RoundTripKeepsAlpha(t *testing.T) {
	t.Parallel()

	src := New(32, 24)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			i := (y*src.Width + x) * 4
			src.Pix[i] = 255
			if x >= 8 && x < 24 {
				src.Pix[i+3] = 255
			}
		}
	}

	resized, err := Resize(src, 64, 48)
	require.NoError(t, err)

	data, err := EncodePNG(resized)
	require.NoError(t, err)

	back, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, back.Width)
	assert.Equal(t, 48, back.Height)
	assert.True(t, HasTransparency(back))
	assert.Equal(t, uint8(0), back.Alpha(0, 0))
	assert.Equal(t, uint8(255), back.Alpha(32, 24))
}

func TestEncodePNG_Empty(t *testing.T) {
	t.Parallel()

	_, err := EncodePNG(&Image{})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestHasTransparency(t *testing.T) {
	t.Parallel()

	assert.False(t, HasTransparency(&Image{Width: 1, Height: 1, Pix: []uint8{0, 0, 0, 255}}))
	assert.True(t, HasTransparency(&Image{Width: 1, Height: 1, Pix: []uint8{0, 0, 0, 254}}))
}
