package server

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/df07/go-kdtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by forwarding each line to a render's
// event stream. Lines are also written to the server log, tagged with the
// render id.
type WebLogger struct {
	renderID string
	out      chan<- ConsoleMessage
	dropped  atomic.Int64
}

var _ core.Logger = (*WebLogger)(nil)

// NewWebLogger creates a logger for one render. A nil channel only logs.
func NewWebLogger(renderID string, out chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{renderID: renderID, out: out}
}

// Printf never blocks: when the stream is not keeping up the line is dropped
// and counted.
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", wl.renderID, strings.TrimSuffix(message, "\n"))

	if wl.out == nil {
		return
	}
	select {
	case wl.out <- ConsoleMessage{Message: message, Timestamp: time.Now(), Level: "info"}:
	default:
		wl.dropped.Add(1)
	}
}

// Dropped returns how many lines did not fit in the channel
func (wl *WebLogger) Dropped() int64 {
	return wl.dropped.Load()
}
