package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// DisplayGamma is the gamma applied when converting linear pixels to 8 bits
const DisplayGamma = 2.2

// Frame is a rendered image of linear RGB values in [0, 1]. Pixels are
// row-major with the top row first.
type Frame struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pixels: make([]core.Vec3, width*height)}
}

// At returns the pixel in column x of row y, counting rows from the top
func (f *Frame) At(x, y int) core.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// ToRGBA converts the frame to an 8-bit image with gamma correction
func (f *Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y).Clamp(0, 1).GammaCorrect(DisplayGamma)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.X),
				G: toByte(c.Y),
				B: toByte(c.Z),
				A: 255,
			})
		}
	}
	return img
}

func toByte(v float64) uint8 {
	return uint8(math.Min(255, v*255+0.5))
}

// AverageLuminance returns the mean Rec. 709 luminance of the linear pixels
func (f *Frame) AverageLuminance() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range f.Pixels {
		total += 0.2126*p.X + 0.7152*p.Y + 0.0722*p.Z
	}
	return total / float64(len(f.Pixels))
}
