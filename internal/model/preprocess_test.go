package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// pngHeader returns a PNG stream that declares width x height grayscale
// pixels but carries no image data.
func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], width)
	binary.BigEndian.PutUint32(ihdr[4:], height)
	ihdr[8] = 8

	for _, chunk := range []struct {
		kind string
		data []byte
	}{{"IHDR", ihdr}, {"IEND", nil}} {
		binary.Write(&buf, binary.BigEndian, uint32(len(chunk.data)))
		body := append([]byte(chunk.kind), chunk.data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	return buf.Bytes()
}

func expected(v uint8, channel int) float32 {
	return (float32(v)/255 - Mean[channel]) / Std[channel]
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func checkSolid(t *testing.T, tensor *Tensor, r, g, b uint8) {
	t.Helper()
	plane := InputSize * InputSize
	want := [3]float32{expected(r, 0), expected(g, 1), expected(b, 2)}
	for c := 0; c < 3; c++ {
		for _, i := range []int{0, plane / 2, plane - 1} {
			if got := tensor.Data[c*plane+i]; !near(got, want[c]) {
				t.Fatalf("channel %d pixel %d = %f, want %f", c, i, got, want[c])
			}
		}
	}
}

func TestPreprocessShape(t *testing.T) {
	raw := encodePNG(t, solidImage(300, 300, color.NRGBA{R: 255, A: 255}))

	tensor, err := Preprocess(raw)
	if err != nil {
		t.Fatal(err)
	}

	wantShape := []int64{1, 3, InputSize, InputSize}
	for i := range wantShape {
		if tensor.Shape[i] != wantShape[i] {
			t.Fatalf("shape = %v, want %v", tensor.Shape, wantShape)
		}
	}
	if len(tensor.Data) != 3*InputSize*InputSize {
		t.Fatalf("data length = %d", len(tensor.Data))
	}

	checkSolid(t, tensor, 255, 0, 0)
}

func TestPreprocessGrayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	tensor, err := Preprocess(encodePNG(t, img))
	if err != nil {
		t.Fatal(err)
	}
	checkSolid(t, tensor, 128, 128, 128)
}

func TestPreprocessDropsAlpha(t *testing.T) {
	raw := encodePNG(t, solidImage(32, 32, color.NRGBA{R: 10, G: 20, B: 30, A: 0}))

	tensor, err := Preprocess(raw)
	if err != nil {
		t.Fatal(err)
	}
	checkSolid(t, tensor, 10, 20, 30)
}

func TestPreprocessBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, solidImage(100, 50, color.NRGBA{G: 200, A: 255})); err != nil {
		t.Fatal(err)
	}

	tensor, err := Preprocess(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	checkSolid(t, tensor, 0, 200, 0)
}

func TestPreprocessDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}

	first, err := Preprocess(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Preprocess(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	for i := range first.Data {
		if math.Float32bits(first.Data[i]) != math.Float32bits(second.Data[i]) {
			t.Fatalf("tensors differ at %d: %v != %v", i, first.Data[i], second.Data[i])
		}
	}
}

func TestPreprocessInvalid(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		if _, err := Preprocess(nil); !errors.Is(err, ErrDecode) {
			t.Fatalf("err = %v, want ErrDecode", err)
		}
	})
	t.Run("Not an image", func(t *testing.T) {
		if _, err := Preprocess([]byte("MZ\x90\x00 definitely not a picture")); !errors.Is(err, ErrDecode) {
			t.Fatalf("err = %v, want ErrDecode", err)
		}
	})
	t.Run("Declared dimensions over the pixel limit", func(t *testing.T) {
		raw := pngHeader(20000, 20000)
		_, err := Preprocess(raw)
		if !errors.Is(err, ErrDecode) || !errors.Is(err, ErrTooManyPixels) {
			t.Fatalf("err = %v, want ErrDecode wrapping ErrTooManyPixels", err)
		}
	})
	t.Run("Truncated PNG", func(t *testing.T) {
		raw := encodePNG(t, solidImage(16, 16, color.White))
		if _, err := Preprocess(raw[:len(raw)/2]); !errors.Is(err, ErrDecode) {
			t.Fatalf("err = %v, want ErrDecode", err)
		}
	})
}
