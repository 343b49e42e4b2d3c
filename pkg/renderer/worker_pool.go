package renderer

import (
	"context"
	"runtime"
	"sync"
)

// pixelChunk is a contiguous range [Start, End) of linear pixel indices
type pixelChunk struct {
	Start int
	End   int
}

// newPixelChunks splits total pixels into chunks of at most size pixels
func newPixelChunks(total, size int) []pixelChunk {
	if size <= 0 {
		size = 1
	}
	chunks := make([]pixelChunk, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		chunks = append(chunks, pixelChunk{Start: start, End: min(start+size, total)})
	}
	return chunks
}

// WorkerPool runs pixel chunks on a fixed set of goroutines. Workers pull
// the next chunk from a shared queue, so faster workers take more chunks.
type WorkerPool struct {
	taskQueue  chan pixelChunk
	numWorkers int
	wg         sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls render for every chunk and returns once all of them are done.
// Chunks not yet started when ctx is cancelled are skipped.
func (wp *WorkerPool) Run(ctx context.Context, chunks []pixelChunk, render func(pixelChunk)) error {
	wp.taskQueue = make(chan pixelChunk, len(chunks))
	for _, chunk := range chunks {
		wp.taskQueue <- chunk
	}
	close(wp.taskQueue)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(ctx, render)
	}
	wp.wg.Wait()
	return ctx.Err()
}

// run is the main worker loop
func (wp *WorkerPool) run(ctx context.Context, render func(pixelChunk)) {
	defer wp.wg.Done()

	for chunk := range wp.taskQueue {
		if ctx.Err() != nil {
			return
		}
		render(chunk)
	}
}
