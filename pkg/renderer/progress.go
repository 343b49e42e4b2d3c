package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-kdtracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// progress counts finished pixels and logs a line each time another
// percent of the image completes
type progress struct {
	mu     sync.Mutex
	done   int
	total  int
	step   int
	start  time.Time
	last   time.Time
	logger core.Logger
}

func newProgress(total int, logger core.Logger) *progress {
	now := time.Now()
	return &progress{
		total:  total,
		step:   max(1, total/100),
		start:  now,
		last:   now,
		logger: logger,
	}
}

// add records n finished pixels
func (p *progress) add(n int) {
	if p.logger == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	before := p.done / p.step
	p.done += n
	if p.done/p.step == before {
		return
	}

	now := time.Now()
	percent := p.done * 100 / p.total
	lastIter := now.Sub(p.last).Seconds()
	p.last = now
	p.logger.Printf("rendering %02d%%, elapsed %.3fs, last iter %.3fs, remain %.3fs\n",
		percent, now.Sub(p.start).Seconds(), lastIter, lastIter*float64(100-percent))
}
