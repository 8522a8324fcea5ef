// Package worker defines worker contracts for asynchronous frame scoring.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/egaolabs/smiled/internal/domain/model"
	"github.com/egaolabs/smiled/pkg/logger"
	"github.com/egaolabs/smiled/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Frame abstracts what workers read off the queue.
type Frame = model.Frame

// Evaluator turns a frame into a presentation-ready reading.
type Evaluator interface {
	Evaluate(frame model.Frame) model.Reading
}

// Recorder persists the latest reading for a session.
type Recorder interface {
	Record(ctx context.Context, reading model.Reading) error
}

// Queue defines how workers receive frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Frame
}

// Worker processes frames and records readings using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// ScoringWorker implements Worker for processing frames.
type ScoringWorker struct {
	queue     Queue
	evaluator Evaluator
	recorder  Recorder
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewScoringWorker creates a new worker with configuration options.
func NewScoringWorker(queue Queue, evaluator Evaluator, recorder Recorder, opts ...Option) *ScoringWorker {
	w := &ScoringWorker{
		queue:     queue,
		evaluator: evaluator,
		recorder:  recorder,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *ScoringWorker) Run(ctx context.Context) {
	defer close(w.done)

	frameChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case frame, ok := <-frameChan:
			if !ok {
				// Channel closed, worker should stop.
				return
			}

			if err := w.processFrame(ctx, frame); err != nil {
				w.logger.Error(ctx, "error processing frame", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *ScoringWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processFrame scores a single frame and records the reading.
func (w *ScoringWorker) processFrame(ctx context.Context, frame Frame) error { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	scoreStart := time.Now()
	reading := w.evaluator.Evaluate(frame)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))
	metrics.RecordScore(reading.Score)
	metrics.RecordReadingLevel(reading.Level)

	if err := w.recorder.Record(ctx, reading); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		w.logger.Error(ctx, "recording reading failed",
			logger.String("frameID", frame.FrameID),
			logger.String("sessionID", frame.SessionID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to record reading for frame %s: %w", frame.FrameID, err)
	}

	metrics.RecordFrameScored()

	w.logger.Debug(ctx, "frame scored",
		logger.String("frameID", frame.FrameID),
		logger.String("sessionID", frame.SessionID),
		logger.Int("score", reading.Score),
		logger.String("level", reading.Level),
	)

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*ScoringWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount defaults
// to the number of CPUs.
func NewPool(workerCount int, queue Queue, evaluator Evaluator, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*ScoringWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewScoringWorker(
			queue,
			evaluator,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers. Closing the queue ends each worker's
// dequeue loop.
func (p *Pool) Stop() {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so no new frames arrive.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
