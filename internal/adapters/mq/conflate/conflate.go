// Package conflate provides a bounded latest-value-wins buffer between
// frame intake and the scoring workers.
//
// The buffer never blocks the producer: when all slots are taken the
// oldest pending frame is dropped in favor of the new one, matching the
// frame-rate-limiting intent of the capture side. Consumers receive
// frames through a channel.
package conflate

import (
	"context"
	"sync"

	"github.com/egaolabs/smiled/internal/domain/model"
	"github.com/egaolabs/smiled/pkg/metrics"
)

// defaultSlots is the default buffer size. A single slot gives pure
// latest-value-wins delivery.
const defaultSlots = 1

// Frame is the payload type flowing through the queue.
type Frame = model.Frame

// Queue provides non-blocking offer and channel-based dequeue semantics.
type Queue interface {
	// Offer hands a frame to the queue, displacing the oldest pending
	// frame when full. Returns false only if the queue is closed.
	Offer(ctx context.Context, f Frame) bool

	// Dequeue returns a channel that receives frames as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Frame

	// Len returns the current number of pending frames.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new frames are
	// accepted and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// LatestQueue implements Queue using a buffered channel with displacement.
type LatestQueue struct {
	frames chan Frame
	slots  int
	mu     sync.Mutex
	closed bool
}

// NewLatestQueue creates a latest-value-wins queue with configuration options.
func NewLatestQueue(opts ...Option) *LatestQueue {
	q := &LatestQueue{
		slots: defaultSlots,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.frames = make(chan Frame, q.slots)

	metrics.UpdateQueueSlots(q.slots)
	metrics.UpdateQueuePending(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Offer hands a frame to the queue, displacing the oldest pending frame
// when full.
func (q *LatestQueue) Offer(ctx context.Context, f Frame) bool { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if ctx.Err() != nil {
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	for {
		select {
		case q.frames <- f:
			q.publishGauges()
			return true
		default:
			// Full: drop the oldest pending frame and retry. A concurrent
			// consumer may have drained the slot already, hence the
			// non-blocking receive.
			select {
			case <-q.frames:
				metrics.RecordFrameConflated()
			default:
			}
		}
	}
}

// Dequeue returns a channel that receives frames as they become available.
func (q *LatestQueue) Dequeue(ctx context.Context) <-chan Frame {
	out := make(chan Frame)
	go func() {
		defer close(out)
		for frame := range q.frames {
			select {
			case out <- frame:
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of pending frames.
func (q *LatestQueue) Len(ctx context.Context) int {
	return len(q.frames)
}

// Close shuts down the queue.
func (q *LatestQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.frames)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *LatestQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *LatestQueue) publishGauges() {
	pending := len(q.frames)
	metrics.UpdateQueuePending(pending)
	metrics.UpdateQueueUtilization(float64(pending) / float64(q.slots))
}
