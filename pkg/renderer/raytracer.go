package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/integrator"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// Config contains rendering configuration
type Config struct {
	SamplesPerPixel int // Camera rays per pixel, rounded up to a multiple of 4
	NumWorkers      int // Number of parallel workers (0 = use CPU count)
	ChunkSize       int // Pixels handed to a worker at a time
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		SamplesPerPixel: 64,
		NumWorkers:      0,
		ChunkSize:       64,
	}
}

// samplesPerStratum returns how many rays each of the 2×2 sub-pixels gets
func (c Config) samplesPerStratum() int {
	return max(1, (c.SamplesPerPixel+3)/4)
}

// Raytracer renders a prepared world with an integrator
type Raytracer struct {
	world      *scene.World
	integrator integrator.Integrator
	camera     *Camera
	config     Config
	logger     core.Logger
}

// NewRaytracer creates a raytracer. The world must have been prepared and
// must not change while rendering. A nil logger disables progress output.
func NewRaytracer(world *scene.World, integrator integrator.Integrator, config Config, logger core.Logger) *Raytracer {
	return &Raytracer{
		world:      world,
		integrator: integrator,
		camera:     NewCamera(world.Camera, world.Width, world.Height, world.NearPlane),
		config:     config,
		logger:     logger,
	}
}

// Render traces every pixel in parallel and returns the clamped linear
// image. The result does not depend on the number of workers.
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	w, h := rt.world.Width, rt.world.Height
	if w <= 0 || h <= 0 {
		return nil, RenderStats{}, fmt.Errorf("invalid resolution %dx%d", w, h)
	}

	start := time.Now()
	frame := NewFrame(w, h)
	pool := NewWorkerPool(rt.config.NumWorkers)
	prog := newProgress(w*h, rt.logger)

	chunkSize := rt.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultConfig().ChunkSize
	}

	err := pool.Run(ctx, newPixelChunks(w*h, chunkSize), func(chunk pixelChunk) {
		// Chunks are disjoint, so workers never write the same pixel
		for index := chunk.Start; index < chunk.End; index++ {
			frame.Pixels[index] = rt.RenderPixel(index)
		}
		prog.add(chunk.End - chunk.Start)
	})

	perPixel := 4 * rt.config.samplesPerStratum()
	stats := RenderStats{
		TotalPixels:     w * h,
		TotalSamples:    w * h * perPixel,
		SamplesPerPixel: perPixel,
		NumWorkers:      pool.GetNumWorkers(),
		Duration:        time.Since(start),
	}
	if err != nil {
		return nil, stats, fmt.Errorf("render cancelled: %w", err)
	}
	return frame, stats, nil
}

// RenderPixel computes the pixel at a linear index into the frame (top row
// first). Its sampler is seeded from the index, so the result is the same
// no matter which worker renders it or when.
func (rt *Raytracer) RenderPixel(index int) core.Vec3 {
	w, h := rt.world.Width, rt.world.Height
	x := index % w
	y := h - 1 - index/w

	sampler := core.NewXorShiftSampler(uint32(index))
	var stats PixelStats
	for i := 0; i < rt.config.samplesPerStratum(); i++ {
		for sx := 0; sx < 2; sx++ {
			for sy := 0; sy < 2; sy++ {
				dx := core.TentOffset(sampler.Get1D())
				dy := core.TentOffset(sampler.Get1D())
				ray := rt.camera.GetRay(x, y, sx, sy, dx, dy)
				stats.AddSample(rt.integrator.RayColor(ray, rt.world, sampler))
			}
		}
	}
	return stats.GetColor()
}
