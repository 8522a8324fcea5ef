// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers file and env on top.
// - External errors are wrapped via this package's error kinds.
package config

import (
	"runtime"

	score "github.com/egaolabs/smiled/internal/domain/score"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSlots bounds the conflating frame buffer. One slot keeps only
	// the latest pending frame.
	QueueSlots int `koanf:"queue_slots"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the frame idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MinFrameIntervalMS throttles frames per session; frames arriving
	// sooner than this after the last forwarded one are dropped.
	MinFrameIntervalMS int `koanf:"min_frame_interval_ms"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LeftExpressionKey and RightExpressionKey name the tracked
	// mouth-corner intensities in incoming samples.
	LeftExpressionKey  string `koanf:"left_expression_key"`
	RightExpressionKey string `koanf:"right_expression_key"`

	// ScoreBands overrides the classification bands. Empty keeps the
	// engine defaults (red 0-33, yellow 34-66, green 67-100).
	ScoreBands []score.Band `koanf:"score_bands"`

	// MessageTiers overrides the encouragement message tiers. Empty keeps
	// the engine defaults.
	MessageTiers []score.MessageTier `koanf:"message_tiers"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSlots:          1,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		MinFrameIntervalMS:  400,
		MaxLeaderboardLimit: 100,
		LeftExpressionKey:   "mouthSmileLeft",
		RightExpressionKey:  "mouthSmileRight",
	}
}
