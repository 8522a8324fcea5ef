// Package throttle bounds how often frames from a session are forwarded
// to scoring.
package throttle

import (
	"sync"
	"time"
)

// Default gate configuration constants.
const (
	defaultMinInterval = 400 * time.Millisecond
	defaultMaxSessions = 10_000
)

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithMinInterval sets the minimum interval between forwarded frames of
// the same session. A non-positive interval disables throttling.
func WithMinInterval(interval time.Duration) Option {
	return func(g *Gate) {
		g.minInterval = interval
	}
}

// WithMaxSessions bounds the number of sessions tracked by the gate.
func WithMaxSessions(maxSessions int) Option {
	return func(g *Gate) {
		if maxSessions > 0 {
			g.maxSessions = maxSessions
		}
	}
}

// Gate is a per-session frame-rate limiter based on capture timestamp
// comparison. A frame passes when at least the configured interval has
// elapsed since the last forwarded frame of its session.
type Gate struct {
	mu          sync.Mutex
	last        map[string]time.Time
	minInterval time.Duration
	maxSessions int
}

// NewGate creates a gate with the default interval, applying options.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		minInterval: defaultMinInterval,
		maxSessions: defaultMaxSessions,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.last = make(map[string]time.Time)

	return g
}

// Allow reports whether a frame of sessionID captured at ts may be
// forwarded, recording ts when it may. A zero ts is replaced with the
// current time.
func (g *Gate) Allow(sessionID string, ts time.Time) bool {
	if g.minInterval <= 0 {
		return true
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[sessionID]; ok && ts.Sub(last) < g.minInterval {
		return false
	}

	if len(g.last) >= g.maxSessions {
		g.sweep(ts)
	}

	g.last[sessionID] = ts
	return true
}

// sweep drops sessions whose last forwarded frame is older than the gate
// interval; such entries can no longer block anything. Must be called
// with g.mu held.
func (g *Gate) sweep(now time.Time) {
	for id, last := range g.last {
		if now.Sub(last) >= g.minInterval {
			delete(g.last, id)
		}
	}
}

// Sessions returns the number of sessions currently tracked.
func (g *Gate) Sessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}
