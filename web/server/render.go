package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/integrator"
	"github.com/df07/go-kdtracer/pkg/renderer"
)

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	NumWorkers       int     `json:"numWorkers"`
	ElapsedMs        int64   `json:"elapsedMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
}

// RenderResult is the payload of the final "complete" event
type RenderResult struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

type renderOutcome struct {
	frame *renderer.Frame
	stats renderer.RenderStats
	err   error
}

// handleRender renders a scene and streams progress lines as "console"
// events followed by a single "complete" or "error" event. Closing the
// connection cancels the render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, logger := setupConsoleLogging()
	raytracer, err := s.newRaytracer(req, logger)
	if err != nil {
		sendSSEError(w, err.Error())
		return
	}

	done := make(chan renderOutcome, 1)
	go func() {
		frame, stats, err := raytracer.Render(ctx)
		done <- renderOutcome{frame: frame, stats: stats, err: err}
	}()

	for {
		select {
		case msg := <-consoleChan:
			if err := sendConsoleMessage(w, msg); err != nil {
				return
			}
		case outcome := <-done:
			// Flush what the last chunks logged before the result
			for len(consoleChan) > 0 {
				if err := sendConsoleMessage(w, <-consoleChan); err != nil {
					return
				}
			}
			if n := logger.Dropped(); n > 0 {
				log.Printf("Dropped %d console lines", n)
			}
			if outcome.err != nil {
				sendSSEError(w, outcome.err.Error())
				return
			}
			result, err := newRenderResult(outcome.frame, outcome.stats)
			if err != nil {
				sendSSEError(w, err.Error())
				return
			}
			data, _ := json.Marshal(result)
			sendSSEEvent(w, "complete", string(data))
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleImage renders a scene and responds with the PNG directly
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	raytracer, err := s.newRaytracer(req, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	frame, stats, err := raytracer.Render(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("Rendered %s at %dx%d in %v", req.Scene, frame.Width, frame.Height, stats.Duration)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := png.Encode(w, frame.ToRGBA()); err != nil {
		log.Printf("Failed to write image: %v", err)
	}
}

func (s *Server) newRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	world, err := s.loadWorld(req)
	if err != nil {
		return nil, err
	}
	integ, err := integrator.New(req.Integrator)
	if err != nil {
		return nil, err
	}

	config := renderer.DefaultConfig()
	config.SamplesPerPixel = req.Samples
	config.NumWorkers = req.Workers
	return renderer.NewRaytracer(world, integ, config, logger), nil
}

// setupConsoleLogging creates console channel and web logger for a render.
// The channel holds more lines than one render logs.
func setupConsoleLogging() (chan ConsoleMessage, *WebLogger) {
	consoleChan := make(chan ConsoleMessage, 128)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	return consoleChan, NewWebLogger(renderID, consoleChan)
}

func newRenderResult(frame *renderer.Frame, stats renderer.RenderStats) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame.ToRGBA()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &RenderResult{
		Width:     frame.Width,
		Height:    frame.Height,
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Stats: Stats{
			TotalPixels:      stats.TotalPixels,
			TotalSamples:     stats.TotalSamples,
			SamplesPerPixel:  stats.SamplesPerPixel,
			NumWorkers:       stats.NumWorkers,
			ElapsedMs:        stats.Duration.Milliseconds(),
			SamplesPerSecond: stats.SamplesPerSecond(),
		},
	}, nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func sendConsoleMessage(w http.ResponseWriter, msg ConsoleMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return sendSSEEvent(w, "console", string(data))
}

func sendSSEError(w http.ResponseWriter, message string) error {
	data, _ := json.Marshal(map[string]string{"error": message})
	return sendSSEEvent(w, "error", string(data))
}

func sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
