// Package plots draws diagnostic charts of acceleration structures.
package plots

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/df07/go-kdtracer/pkg/geometry"
)

// Size of a saved chart
const (
	Width  = 20 * vg.Centimeter
	Height = 15 * vg.Centimeter
)

// LeafHistogram plots how many triangles the leaves of a KD-tree hold.
// Leaf sizes well above the build's leaf size indicate splits that could
// not separate the triangles.
func LeafHistogram(stats geometry.KDTreeStats, title string) (*plot.Plot, error) {
	if len(stats.LeafSizes) == 0 {
		return nil, errors.New("tree has no leaves")
	}

	values := make(plotter.Values, len(stats.LeafSizes))
	largest := 0
	for i, size := range stats.LeafSizes {
		values[i] = float64(size)
		largest = max(largest, size)
	}

	hist, err := plotter.NewHist(values, min(largest+1, 64))
	if err != nil {
		return nil, fmt.Errorf("failed to bin leaf sizes: %w", err)
	}
	hist.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("%s: %d leaves, depth %d, %.2f refs/triangle",
		title, stats.Leaves, stats.MaxDepth, stats.DuplicationFactor())
	plt.X.Label.Text = "triangles per leaf"
	plt.Y.Label.Text = "leaves"
	plt.Add(hist)
	plt.Add(plotter.NewGrid())
	return plt, nil
}

// SaveLeafHistogram writes the histogram for stats to path. The image
// format follows the extension (png, svg, pdf, ...).
func SaveLeafHistogram(stats geometry.KDTreeStats, title, path string) error {
	plt, err := LeafHistogram(stats, title)
	if err != nil {
		return err
	}
	if err := plt.Save(Width, Height, path); err != nil {
		return fmt.Errorf("failed to save leaf histogram: %w", err)
	}
	return nil
}
