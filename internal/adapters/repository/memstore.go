package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/egaolabs/smiled/internal/domain/model"
	"github.com/egaolabs/smiled/pkg/metrics"
)

// sessionState is the mutable per-session record.
type sessionState struct {
	latest       model.Reading
	bestScore    int
	framesScored int64
}

// MemStore implements Store with a mutex-protected map. Session counts
// are small (one per active device), so a flat map with sort-on-read
// ranking is sufficient.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewMemStore creates an empty in-memory session store.
func NewMemStore(ctx context.Context) *MemStore {
	s := &MemStore{
		sessions: make(map[string]*sessionState),
	}
	metrics.UpdateSessionsTracked(0)
	return s
}

// Record stores reading as the session's latest state and updates its
// best score.
func (s *MemStore) Record(ctx context.Context, reading model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[reading.SessionID]
	if !ok {
		state = &sessionState{}
		s.sessions[reading.SessionID] = state
		metrics.UpdateSessionsTracked(len(s.sessions))
	}

	state.framesScored++
	if reading.Score > state.bestScore {
		state.bestScore = reading.Score
	}
	// Guard against out-of-order delivery: an older frame must not
	// overwrite a newer display state.
	if state.latest.FrameID == "" || !reading.TS.Before(state.latest.TS) {
		state.latest = reading
	}

	return nil
}

// Latest returns the current state for a session.
func (s *MemStore) Latest(ctx context.Context, sessionID string) (SessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return SessionEntry{}, ErrNotFound
	}

	return SessionEntry{
		SessionID:    sessionID,
		Latest:       state.latest,
		BestScore:    state.bestScore,
		FramesScored: state.framesScored,
	}, nil
}

// TopBest returns up to n sessions ordered by best score descending.
// Ties break on session ID for a stable order.
func (s *MemStore) TopBest(ctx context.Context, n int) ([]SessionEntry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	entries := make([]SessionEntry, 0, len(s.sessions))
	for id, state := range s.sessions {
		entries = append(entries, SessionEntry{
			SessionID:    id,
			Latest:       state.latest,
			BestScore:    state.bestScore,
			FramesScored: state.framesScored,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestScore != entries[j].BestScore {
			return entries[i].BestScore > entries[j].BestScore
		}
		return entries[i].SessionID < entries[j].SessionID
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// Count returns the number of sessions tracked.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
