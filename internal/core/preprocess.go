package core

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	ImageSize     = 224
	ImageChannels = 3
)

// Layout is the memory order a model expects for image tensors.
type Layout int

const (
	LayoutNHWC Layout = iota
	LayoutNCHW
)

func (l Layout) String() string {
	if l == LayoutNCHW {
		return "NCHW"
	}
	return "NHWC"
}

func dimMatches(d int64, want int) bool {
	return d == int64(want) || d < 0
}

// detectLayout accepts [batch, size, size, 3] or [batch, 3, size, size];
// negative dimensions are treated as dynamic.
func detectLayout(dims []int64, size int) (Layout, error) {
	if len(dims) != 4 {
		return 0, fmt.Errorf("expected 4D image input, got %v", dims)
	}
	if dims[3] == ImageChannels && dimMatches(dims[1], size) && dimMatches(dims[2], size) {
		return LayoutNHWC, nil
	}
	if dims[1] == ImageChannels && dimMatches(dims[2], size) && dimMatches(dims[3], size) {
		return LayoutNCHW, nil
	}
	return 0, fmt.Errorf("unsupported image input shape %v, expected %dx%dx%d", dims, size, size, ImageChannels)
}

func toNCHW(data []float32, height, width, channels int) []float32 {
	out := make([]float32, len(data))
	plane := height * width
	for i := 0; i < plane; i++ {
		for c := 0; c < channels; c++ {
			out[c*plane+i] = data[i*channels+c]
		}
	}
	return out
}

// DecodeImage decodes JPEG, PNG, GIF, BMP, TIFF or WebP bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file: %w", err)
	}
	return img, nil
}

// toRGB copies img into an opaque NRGBA image. Alpha is discarded rather than
// composited. NRGBA and paletted sources keep the stored color of transparent
// pixels; premultiplied sources such as RGBA have already lost it and come
// out black.
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.Paletted:
		palette := make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			palette[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				idx := int(src.ColorIndexAt(b.Min.X+x, b.Min.Y+y))
				if idx >= len(palette) {
					continue
				}
				c := palette[idx]
				i := dst.PixOffset(x, y)
				dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = c.R, c.G, c.B
			}
		}
	default:
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}

	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// PreprocessImage converts img to a packed [1, ImageSize, ImageSize, 3]
// float32 tensor with intensities scaled to [0, 1].
func PreprocessImage(img image.Image) ([]float32, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	resized := resize.Resize(ImageSize, ImageSize, toRGB(img), resize.Bicubic)

	rb := resized.Bounds()
	if rb.Dx() != ImageSize || rb.Dy() != ImageSize {
		return nil, fmt.Errorf("resize produced %dx%d image", rb.Dx(), rb.Dy())
	}

	out := make([]float32, ImageSize*ImageSize*ImageChannels)
	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			c := color.NRGBAModel.Convert(resized.At(rb.Min.X+x, rb.Min.Y+y)).(color.NRGBA)
			i := (y*ImageSize + x) * ImageChannels
			out[i] = float32(c.R) / 255.0
			out[i+1] = float32(c.G) / 255.0
			out[i+2] = float32(c.B) / 255.0
		}
	}
	return out, nil
}
