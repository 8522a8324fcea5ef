// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/egaolabs/smiled/internal/adapters/mq/conflate"
	"github.com/egaolabs/smiled/internal/adapters/mq/worker"
	"github.com/egaolabs/smiled/internal/adapters/repository"
	"github.com/egaolabs/smiled/internal/domain/dedupe"
	"github.com/egaolabs/smiled/internal/domain/model"
	"github.com/egaolabs/smiled/internal/domain/score"
	"github.com/egaolabs/smiled/internal/domain/throttle"
	"github.com/egaolabs/smiled/pkg/logger"
	"github.com/egaolabs/smiled/pkg/metrics"
)

// Service wires frame intake, throttling, conflation, scoring workers and
// the session store behind one facade for the HTTP layer.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   conflate.Queue
	gate    *throttle.Gate
	engine  *score.Engine
	pool    *worker.Pool

	// Configuration
	workerCount      int
	queueSlots       int
	dedupeSize       int
	minFrameInterval time.Duration
	leftKey          string
	rightKey         string
	bands            []score.Band
	tiers            []score.MessageTier

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSlots sets the number of slots in the conflating frame buffer.
func WithQueueSlots(slots int) Option {
	return func(s *Service) {
		if slots > 0 {
			s.queueSlots = slots
		}
	}
}

// WithDedupeSize sets the size of the frame idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMinFrameInterval sets the per-session throttle window. A
// non-positive interval disables throttling.
func WithMinFrameInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.minFrameInterval = interval
	}
}

// WithExpressionKeys sets the sample keys tracked by the score engine.
func WithExpressionKeys(left, right string) Option {
	return func(s *Service) {
		if left != "" && right != "" {
			s.leftKey = left
			s.rightKey = right
		}
	}
}

// WithScoreBands overrides the classification bands.
func WithScoreBands(bands []score.Band) Option {
	return func(s *Service) {
		s.bands = bands
	}
}

// WithMessageTiers overrides the encouragement message tiers.
func WithMessageTiers(tiers []score.MessageTier) Option {
	return func(s *Service) {
		s.tiers = tiers
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSlots:       1,
		dedupeSize:       50_000,
		minFrameInterval: 400 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting smile service...")

	var engineOpts []score.Option
	if s.leftKey != "" && s.rightKey != "" {
		engineOpts = append(engineOpts, score.WithExpressionKeys(s.leftKey, s.rightKey))
	}
	if len(s.bands) > 0 {
		engineOpts = append(engineOpts, score.WithBands(s.bands))
	}
	if len(s.tiers) > 0 {
		engineOpts = append(engineOpts, score.WithMessageTiers(s.tiers))
	}

	engine, err := score.New(engineOpts...)
	if err != nil {
		return err
	}
	s.engine = engine

	s.store = repository.NewMemStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.gate = throttle.NewGate(
		throttle.WithMinInterval(s.minFrameInterval),
	)
	s.queue = conflate.NewLatestQueue(
		conflate.WithSlots(s.queueSlots),
	)

	s.pool = worker.NewPool(s.workerCount, s.queue, s.engine, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "smile service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSlots", s.queueSlots),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Any("minFrameInterval", s.minFrameInterval),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping smile service...")

	// Stopping the pool closes the queue, which ends the worker loops.
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "smile service stopped")
}

// SeenAndRecord atomically checks if a frame id was seen and records it if
// not. Returns true if the frame was already seen, false if it was newly
// recorded.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordFrameDuplicate()
	}
	return seen
}

// Unrecord removes a frame ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Submit hands a frame to the scoring pipeline. Frames arriving faster
// than the configured per-session interval return ErrThrottled and are
// dropped; a closed or unavailable queue returns ErrBackpressure.
func (s *Service) Submit(ctx context.Context, frame model.Frame) error { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	if !started {
		return ErrNotStarted
	}

	metrics.RecordFrameReceived()

	if !s.gate.Allow(frame.SessionID, frame.TS) {
		metrics.RecordFrameThrottled()
		s.logger.Debug(ctx, "frame throttled",
			logger.String("frameID", frame.FrameID),
			logger.String("sessionID", frame.SessionID),
		)
		return ErrThrottled
	}

	if !s.queue.Offer(ctx, frame) {
		metrics.RecordErrorByComponent("service", "offer_rejected")
		return ErrBackpressure
	}

	metrics.UpdateQueuePending(s.queue.Len(ctx))

	s.logger.Debug(ctx, "frame enqueued",
		logger.String("frameID", frame.FrameID),
		logger.String("sessionID", frame.SessionID),
	)
	return nil
}

// Latest returns the current scored state for a session.
func (s *Service) Latest(ctx context.Context, sessionID string) (repository.SessionEntry, error) {
	return s.store.Latest(ctx, sessionID)
}

// TopBest returns up to n sessions ranked by best score.
func (s *Service) TopBest(ctx context.Context, n int) ([]repository.SessionEntry, error) {
	return s.store.TopBest(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSlots":       s.queueSlots,
		"dedupeSize":       s.dedupeSize,
		"minFrameInterval": s.minFrameInterval.String(),
	}

	if s.started {
		pending := s.queue.Len(ctx)
		sessions := s.store.Count(ctx)

		stats["queuePending"] = pending
		stats["totalSessions"] = sessions
		stats["throttledSessions"] = s.gate.Sessions()

		metrics.UpdateQueuePending(pending)
		metrics.UpdateSessionsTracked(sessions)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
