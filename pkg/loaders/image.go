package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"math"
	"os"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/material"
)

// TextureGamma is the encoding gamma assumed for 8-bit texture files
const TextureGamma = 2.2

// LoadTexture loads a PNG or JPEG image as a texture of linear colors. With
// flip set the rows are reversed, for images stored bottom row first.
func LoadTexture(filename string, flip bool) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return DecodeTexture(file, flip)
}

// DecodeTexture decodes an image stream as LoadTexture does
func DecodeTexture(r io.Reader, flip bool) (*material.ImageTexture, error) {
	// Decode image (auto-detects PNG/JPEG from file header)
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		row := y
		if flip {
			row = height - 1 - y
		}
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[row*width+x] = core.NewVec3(linear(r), linear(g), linear(b))
		}
	}

	return material.NewImageTexture(width, height, pixels), nil
}

func linear(c uint32) float64 {
	return math.Pow(float64(c)/65535.0, TextureGamma)
}
