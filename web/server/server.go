package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/df07/go-kdtracer/pkg/scene"
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	scenesDir string
	mux       *http.ServeMux
}

// NewServer creates a new web server. Saved worlds are discovered in scenesDir.
func NewServer(port int, scenesDir string) *Server {
	s := &Server{port: port, scenesDir: scenesDir, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/image", s.handleImage)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured port until the server fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest holds the query parameters shared by render and inspect requests
type RenderRequest struct {
	Scene      string  `json:"scene"`      // Built-in id or "file:<name>"
	Width      int     `json:"width"`      // 0 keeps the scene's resolution
	Height     int     `json:"height"`     // 0 keeps the scene's resolution
	Samples    int     `json:"samples"`    // Camera rays per pixel
	Workers    int     `json:"workers"`    // 0 = use CPU count
	Integrator string  `json:"integrator"` // "path-tracing" or "normals"
	Epsilon    float64 `json:"epsilon"`    // 0 keeps the scene's tolerance
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes followed by saved worlds
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	saved, err := scene.ListSavedScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, append(scene.ListBuiltinScenes(), saved...))
}

// parseRenderRequest reads and validates the query parameters of a request
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{
		Scene:      values.Get("scene"),
		Integrator: values.Get("integrator"),
	}
	if req.Scene == "" {
		req.Scene = "cornell"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, 4096); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, 4096); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 16, 1, 100000); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(values, "workers", 0, 1, 256); err != nil {
		return nil, err
	}
	if req.Epsilon, err = parseFloatParam(values, "epsilon", 0, 1e-9, 1); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// loadWorld builds or loads the requested world, applies the overrides and
// prepares it for rendering
func (s *Server) loadWorld(req *RenderRequest) (*scene.World, error) {
	var world *scene.World
	if strings.HasPrefix(req.Scene, "file:") {
		saved, err := scene.ListSavedScenes(s.scenesDir)
		if err != nil {
			return nil, err
		}
		for _, info := range saved {
			if info.ID == req.Scene {
				if world, err = scene.LoadFile(info.FilePath); err != nil {
					return nil, err
				}
				break
			}
		}
		if world == nil {
			return nil, fmt.Errorf("unknown scene %q", req.Scene)
		}
	} else {
		var err error
		if world, err = scene.NewScene(req.Scene); err != nil {
			return nil, err
		}
	}

	if req.Width > 0 {
		world.Width = req.Width
	}
	if req.Height > 0 {
		world.Height = req.Height
	}
	if req.Epsilon > 0 {
		world.Epsilon = req.Epsilon
	}
	if err := world.Prepare(); err != nil {
		return nil, err
	}
	return world, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
