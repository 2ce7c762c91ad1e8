package model

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
)

// InputSize is the square spatial resolution the classifier was trained on.
const InputSize = 224

// MaxPixels bounds width*height of a decoded upload.
const MaxPixels = 178956970

// ImageNet statistics, RGB order.
var (
	Mean = [3]float32{0.485, 0.456, 0.406}
	Std  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocess decodes raw image bytes and returns a [1, 3, 224, 224]
// normalized tensor. The format is sniffed from the content.
func Preprocess(raw []byte) (*Tensor, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxPixels {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrDecode, ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return Normalize(img)
}

// Normalize converts img to RGB, resizes it bilinearly to InputSize and
// applies the ImageNet mean/std per channel.
func Normalize(img image.Image) (*Tensor, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	resized, ok := resize.Resize(InputSize, InputSize, toRGB(img), resize.Bilinear).(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected resize output", ErrShapeMismatch)
	}

	plane := InputSize * InputSize
	data := make([]float32, 3*plane)

	for y := 0; y < InputSize; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < InputSize; x++ {
			px := row[x*4 : x*4+3]
			i := y*InputSize + x
			for c := 0; c < 3; c++ {
				data[c*plane+i] = (float32(px[c])/255 - Mean[c]) / Std[c]
			}
		}
	}

	return &Tensor{
		Shape: []int64{1, 3, InputSize, InputSize},
		Data:  data,
	}, nil
}

// toRGB drops alpha without premultiplying and expands grayscale.
func toRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}

	return dst
}
