// Package repository defines the session reading store interface and errors.
package repository

import (
	"context"

	"github.com/egaolabs/smiled/internal/domain/model"
)

// SessionEntry is the read shape for one session's smile state.
type SessionEntry struct {
	Rank         int           `json:"rank,omitempty"`
	SessionID    string        `json:"session_id"`
	Latest       model.Reading `json:"latest"`
	BestScore    int           `json:"best_score"`
	FramesScored int64         `json:"frames_scored"`
}

// Store provides read/write access to per-session smile state.
type Store interface {
	// Record stores reading as the session's latest state and updates its
	// best score. Out-of-order readings never replace a newer latest.
	Record(ctx context.Context, reading model.Reading) error

	// Latest returns the current state for a session.
	// Returns ErrNotFound if the session is unknown.
	Latest(ctx context.Context, sessionID string) (SessionEntry, error)

	// TopBest returns up to n sessions ordered by best score descending.
	TopBest(ctx context.Context, n int) ([]SessionEntry, error)

	// Count returns the number of sessions tracked.
	Count(ctx context.Context) int
}
