package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// newBallWorld is a unit sphere seen straight on from z = 5
func newBallWorld() *scene.World {
	return &scene.World{
		Objects: []scene.Object{
			scene.NewObject(geometry.NewSphere(core.NewVec3(0, 0, 0), 1),
				material.Solid(0.8, 0.2, 0.1), material.NewMixed(0.5, 0.25)),
		},
		Environment: core.NewVec3(0.1, 0.1, 0.1),
		Camera:      core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)),
		Width:       9,
		Height:      9,
	}
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, NewServer(0, t.TempDir()), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestScenes(t *testing.T) {
	dir := t.TempDir()
	if err := scene.SaveFile(filepath.Join(dir, "tiny-ball.json"), newBallWorld()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	rec := get(t, NewServer(0, dir), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var scenes []scene.SceneInfo
	if err := json.NewDecoder(rec.Body).Decode(&scenes); err != nil {
		t.Fatalf("Failed to decode scenes: %v", err)
	}
	builtin := len(scene.ListBuiltinScenes())
	if len(scenes) != builtin+1 {
		t.Fatalf("Expected %d scenes, got %d", builtin+1, len(scenes))
	}
	last := scenes[len(scenes)-1]
	if last.ID != "file:tiny-ball.json" || last.DisplayName != "Tiny Ball" {
		t.Errorf("Unexpected saved scene %+v", last)
	}
}

func TestParseRenderRequest(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		want    RenderRequest
		wantErr string
	}{
		{"defaults", "", RenderRequest{Scene: "cornell", Samples: 16}, ""},
		{"all", "scene=spheres&width=64&height=48&samples=8&workers=2&integrator=normals&epsilon=0.001",
			RenderRequest{Scene: "spheres", Width: 64, Height: 48, Samples: 8, Workers: 2, Integrator: "normals", Epsilon: 0.001}, ""},
		{"bad width", "width=wide", RenderRequest{}, "invalid width"},
		{"zero samples", "samples=0", RenderRequest{}, "samples must be between"},
		{"huge height", "height=100000", RenderRequest{}, "height must be between"},
		{"bad epsilon", "epsilon=2", RenderRequest{}, "epsilon must be between"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("ParseQuery failed: %v", err)
			}
			req, err := parseRenderRequest(values)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("Expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if *req != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, *req)
			}
		})
	}
}

func TestInspectPixel(t *testing.T) {
	world := newBallWorld()
	if err := world.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	center := inspectPixel(world, 4, 4)
	if !center.Hit {
		t.Fatal("Expected the center pixel to hit the ball")
	}
	if center.ObjectIndex != 0 || center.GeometryType != "sphere" || center.MaterialType != "mixed" {
		t.Errorf("Unexpected surface %+v", center)
	}
	if math.Abs(center.Distance-4) > 1e-9 || math.Abs(center.Point[2]-1) > 1e-9 {
		t.Errorf("Expected hit at distance 4 on z = 1, got %v at %v", center.Distance, center.Point)
	}
	if !center.FrontFace || center.Normal[2] < 0.999 {
		t.Errorf("Expected front face with normal +z, got %v", center.Normal)
	}
	if center.Color != [3]float64{0.8, 0.2, 0.1} {
		t.Errorf("Unexpected color %v", center.Color)
	}
	materialProps := center.Properties["material"].(map[string]interface{})
	if materialProps["diffuseProb"] != 0.5 || materialProps["specularProb"] != 0.25 {
		t.Errorf("Unexpected material properties %v", materialProps)
	}

	corner := inspectPixel(world, 0, 0)
	if corner.Hit || corner.ObjectIndex != -1 {
		t.Errorf("Expected the corner pixel to miss, got %+v", corner)
	}
}

func TestInspectEndpoint(t *testing.T) {
	dir := t.TempDir()
	if err := scene.SaveFile(filepath.Join(dir, "ball.gob"), newBallWorld()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	s := NewServer(0, dir)

	testCases := []struct {
		name   string
		target string
		status int
	}{
		{"saved scene", "/api/inspect?scene=file:ball.gob&x=4&y=4", http.StatusOK},
		{"builtin", "/api/inspect?scene=cornell&width=32&height=24&x=16&y=12", http.StatusOK},
		{"out of bounds", "/api/inspect?scene=file:ball.gob&x=9&y=0", http.StatusBadRequest},
		{"missing x", "/api/inspect?scene=file:ball.gob&y=0", http.StatusBadRequest},
		{"unknown scene", "/api/inspect?scene=nowhere&x=0&y=0", http.StatusBadRequest},
		{"unknown file", "/api/inspect?scene=file:gone.json&x=0&y=0", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, s, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("Expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var response InspectResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !response.Hit || response.GeometryType == "" {
				t.Errorf("Expected a hit, got %+v", response)
			}
		})
	}
}

func TestImageEndpoint(t *testing.T) {
	rec := get(t, NewServer(0, t.TempDir()), "/api/image?scene=spheres&width=8&height=6&samples=4")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("Unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %v", b)
	}

	bad := get(t, NewServer(0, t.TempDir()), "/api/image?integrator=bdpt")
	if bad.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown integrator, got %d", bad.Code)
	}
}

// sseEvents splits a recorded event stream into (type, data) pairs
func sseEvents(body string) [][2]string {
	var events [][2]string
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var event [2]string
		for _, line := range strings.Split(block, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				event[0] = v
			} else if v, ok := strings.CutPrefix(line, "data: "); ok {
				event[1] = v
			}
		}
		events = append(events, event)
	}
	return events
}

func TestRenderStream(t *testing.T) {
	rec := get(t, NewServer(0, t.TempDir()), "/api/render?scene=spheres&width=8&height=6&samples=4&workers=2")
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Unexpected content type %q", ct)
	}

	events := sseEvents(rec.Body.String())
	if len(events) < 2 {
		t.Fatalf("Expected console and complete events, got %v", events)
	}
	for _, event := range events[:len(events)-1] {
		if event[0] != "console" {
			t.Errorf("Expected console event, got %q", event[0])
		}
	}

	var lastLine ConsoleMessage
	if err := json.Unmarshal([]byte(events[len(events)-2][1]), &lastLine); err != nil {
		t.Fatalf("Failed to decode console message: %v", err)
	}
	if !strings.HasPrefix(lastLine.Message, "rendering 100%") {
		t.Errorf("Expected final progress line, got %q", lastLine.Message)
	}

	final := events[len(events)-1]
	if final[0] != "complete" {
		t.Fatalf("Expected complete event, got %q: %s", final[0], final[1])
	}
	var result RenderResult
	if err := json.Unmarshal([]byte(final[1]), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Width != 8 || result.Height != 6 || result.Stats.TotalPixels != 48 || result.Stats.SamplesPerPixel != 4 {
		t.Errorf("Unexpected result %+v", result)
	}
	data, err := base64.StdEncoding.DecodeString(result.ImageData)
	if err != nil {
		t.Fatalf("Failed to decode image data: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Image data is not a PNG: %v", err)
	}
}

func TestRenderStream_InvalidRequest(t *testing.T) {
	rec := get(t, NewServer(0, t.TempDir()), "/api/render?samples=lots")
	events := sseEvents(rec.Body.String())
	if len(events) != 1 || events[0][0] != "error" || !strings.Contains(events[0][1], "invalid samples") {
		t.Errorf("Expected a single error event, got %v", events)
	}
}
