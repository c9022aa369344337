// Package jobs runs periodic background work for the server.
package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker calls a JobProcessor on a fixed interval
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	runOnStart   bool
	stopOnce     sync.Once
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// Option configures a Worker
type Option func(*Worker)

// WithRunOnStart processes once as soon as the worker starts instead of
// waiting for the first tick.
func WithRunOnStart() Option {
	return func(w *Worker) { w.runOnStart = true }
}

// NewWorker creates a new Worker instance
func NewWorker(processor JobProcessor, pollInterval time.Duration, opts ...Option) *Worker {
	w := &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the polling loop until ctx is done or Stop is called. A
// non-positive interval processes at most once (with WithRunOnStart) and
// returns.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	if w.runOnStart {
		w.process(ctx)
	}
	if w.pollInterval <= 0 {
		log.Println("worker: periodic processing disabled")
		return
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Printf("worker: started with poll interval %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("worker: stopped, context cancelled")
			return
		case <-w.stopChan:
			log.Println("worker: stopped, stop signal received")
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *Worker) process(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("worker: processing failed: %v", err)
	}
}

// Stop signals the loop to exit and waits for it. It is safe to call more
// than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
	log.Println("worker: shutdown complete")
}
