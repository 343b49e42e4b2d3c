package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/integrator"
	"github.com/df07/go-kdtracer/pkg/loaders"
	"github.com/df07/go-kdtracer/pkg/material"
	"github.com/df07/go-kdtracer/pkg/plots"
	"github.com/df07/go-kdtracer/pkg/renderer"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneID      string
	load         string
	save         string
	out          string
	kdPlot       string
	integrator   string
	samples      int
	workers      int
	width        int
	height       int
	mesh         string
	meshScale    float64
	meshOffset   core.Vec3
	meshMaterial material.Kind
	texture      string
	textureFlip  bool
	scenesDir    string
	list         bool
	help         bool
}

func parseFlags(args []string, output io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{meshMaterial: material.Diffuse}
	fs := flag.NewFlagSet("kdtracer", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.sceneID, "scene", "cornell", "Built-in scene id (see -list)")
	fs.StringVar(&opts.load, "load", "", "Load the world from a .json or .gob file instead of a built-in scene")
	fs.StringVar(&opts.save, "save", "", "Save the world to a .json or .gob file before rendering")
	fs.StringVar(&opts.out, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	fs.StringVar(&opts.kdPlot, "kdplot", "", "Write a KD-tree leaf size histogram of the largest mesh (.png, .svg or .pdf)")
	fs.StringVar(&opts.integrator, "integrator", "path-tracing", "Integrator: 'path-tracing' or 'normals'")
	fs.IntVar(&opts.samples, "samples", renderer.DefaultConfig().SamplesPerPixel, "Samples per pixel, rounded up to a multiple of 4")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.IntVar(&opts.width, "width", 0, "Override the image width")
	fs.IntVar(&opts.height, "height", 0, "Override the image height")
	fs.StringVar(&opts.mesh, "mesh", "", "Add an OBJ or PLY mesh to the world")
	fs.Float64Var(&opts.meshScale, "mesh-scale", 1, "Scale applied to -mesh positions")
	fs.Func("mesh-offset", "Offset applied to -mesh positions as x,y,z", func(s string) error {
		v, err := parseVec3(s)
		opts.meshOffset = v
		return err
	})
	fs.TextVar(&opts.meshMaterial, "mesh-material", material.Diffuse, "Material of -mesh: diffuse, specular, refractive")
	fs.StringVar(&opts.texture, "texture", "", "Replace every image texture in the world with this PNG or JPEG")
	fs.BoolVar(&opts.textureFlip, "texture-flip", false, "Flip -texture vertically")
	fs.StringVar(&opts.scenesDir, "scenes", "scenes", "Directory searched for saved worlds by -list")
	fs.BoolVar(&opts.list, "list", false, "List built-in and saved scenes")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if opts.samples < 0 {
		return nil, fs, fmt.Errorf("samples must not be negative, got %d", opts.samples)
	}
	if opts.meshMaterial == material.Mixed {
		return nil, fs, errors.New("mesh-material must be diffuse, specular or refractive")
	}
	return opts, fs, nil
}

// parseVec3 parses "x,y,z"
func parseVec3(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid coordinate %q", part)
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

// createWorld builds or loads the world and applies the command line overrides
func createWorld(opts *options) (*scene.World, string, error) {
	var world *scene.World
	var name string
	var err error

	if opts.load != "" {
		world, err = scene.LoadFile(opts.load)
		name = strings.TrimSuffix(filepath.Base(opts.load), filepath.Ext(opts.load))
	} else {
		world, err = scene.NewScene(opts.sceneID)
		name = opts.sceneID
	}
	if err != nil {
		return nil, "", err
	}

	if opts.width > 0 {
		world.Width = opts.width
	}
	if opts.height > 0 {
		world.Height = opts.height
	}

	if opts.mesh != "" {
		mesh, err := loadMesh(opts.mesh, loaders.Transform{Scale: opts.meshScale, Offset: opts.meshOffset})
		if err != nil {
			return nil, "", err
		}
		world.Objects = append(world.Objects,
			scene.NewObject(mesh, material.Solid(0.9, 0.9, 0.9), material.Material{Kind: opts.meshMaterial}))
	}

	if opts.texture != "" {
		texture, err := loaders.LoadTexture(opts.texture, opts.textureFlip)
		if err != nil {
			return nil, "", err
		}
		n := world.ReplaceTextures(texture)
		fmt.Printf("Replaced %d textures with %s\n", n, opts.texture)
	}

	if err := world.Prepare(); err != nil {
		return nil, "", fmt.Errorf("invalid world: %w", err)
	}
	return world, name, nil
}

// loadMesh picks the loader from the file extension
func loadMesh(path string, transform loaders.Transform) (*geometry.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, stats, err := loaders.LoadOBJ(path, transform)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Loaded %s: %d triangles, %d vertices\n", path, stats.Triangles, stats.Vertices)
		return mesh, nil
	case ".ply":
		mesh, stats, err := loaders.LoadPLY(path, transform)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Loaded %s (%s): %d triangles, %d vertices\n", path, stats.Format, stats.Triangles, stats.Vertices)
		return mesh, nil
	default:
		return nil, fmt.Errorf("unsupported mesh format %q (want .obj or .ply)", ext)
	}
}

// outputPath returns where the render is written
func outputPath(opts *options, name string, now time.Time) string {
	if opts.out != "" {
		return opts.out
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", name, fmt.Sprintf("render_%s.png", timestamp))
}

// largestMesh returns the mesh with the most triangles, or nil
func largestMesh(world *scene.World) *scene.Object {
	var largest *scene.Object
	for i := range world.Objects {
		obj := &world.Objects[i]
		if obj.Geometry.Mesh == nil {
			continue
		}
		if largest == nil || obj.Geometry.Mesh.TriangleCount() > largest.Geometry.Mesh.TriangleCount() {
			largest = obj
		}
	}
	return largest
}

func listScenes(w io.Writer, dir string) error {
	fmt.Fprintln(w, "Built-in scenes:")
	for _, info := range scene.ListBuiltinScenes() {
		fmt.Fprintf(w, "  %-10s %s\n", info.ID, info.Description)
	}

	saved, err := scene.ListSavedScenes(dir)
	if err != nil {
		return err
	}
	if len(saved) > 0 {
		fmt.Fprintf(w, "Saved scenes in %s:\n", dir)
		for _, info := range saved {
			fmt.Fprintf(w, "  %-20s -load %s\n", info.DisplayName, info.FilePath)
		}
	}
	return nil
}

func writePNG(path string, frame *renderer.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := png.Encode(file, frame.ToRGBA()); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}

func run(args []string) error {
	opts, fs, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.help {
		fmt.Println("KD-tree Path Tracer")
		fmt.Println("Usage: kdtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		return listScenes(os.Stdout, opts.scenesDir)
	}
	if opts.list {
		return listScenes(os.Stdout, opts.scenesDir)
	}

	world, name, err := createWorld(opts)
	if err != nil {
		return err
	}
	fmt.Printf("Scene %s: %d objects, %d primitives, %dx%d\n",
		name, len(world.Objects), world.PrimitiveCount(), world.Width, world.Height)

	if opts.save != "" {
		if err := scene.SaveFile(opts.save, world); err != nil {
			return err
		}
		fmt.Printf("World saved as %s\n", opts.save)
	}

	if opts.kdPlot != "" {
		obj := largestMesh(world)
		if obj == nil {
			return errors.New("kdplot: world has no meshes")
		}
		stats := obj.Geometry.Mesh.Tree().Stats()
		fmt.Printf("KD-tree: %d nodes, %d leaves, depth %d, %.2f refs/triangle\n",
			stats.Nodes, stats.Leaves, stats.MaxDepth, stats.DuplicationFactor())
		if err := plots.SaveLeafHistogram(stats, name, opts.kdPlot); err != nil {
			return err
		}
		fmt.Printf("KD-tree histogram saved as %s\n", opts.kdPlot)
	}

	integ, err := integrator.New(opts.integrator)
	if err != nil {
		return err
	}

	config := renderer.DefaultConfig()
	config.SamplesPerPixel = opts.samples
	config.NumWorkers = opts.workers
	raytracer := renderer.NewRaytracer(world, integ, config, renderer.NewDefaultLogger())

	frame, stats, err := raytracer.Render(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Render completed in %v (%d samples/pixel, %d workers, %.0f samples/s)\n",
		stats.Duration, stats.SamplesPerPixel, stats.NumWorkers, stats.SamplesPerSecond())

	filename := outputPath(opts, name, time.Now())
	if err := writePNG(filename, frame); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
