// Package model contains domain models passed between layers.
package model

import "time"

// Sample is a per-frame set of named expression intensities in [0,1],
// produced by an external face-analysis model. It is transient: consumed
// once and never persisted.
type Sample map[string]float64

// Frame represents a single camera frame's expression sample submitted
// by a client device.
type Frame struct {
	FrameID     string    // unique id for idempotency
	SessionID   string    // capture session identifier
	Blendshapes Sample    // expression name -> intensity
	TS          time.Time // capture timestamp
}

// Reading is the presentation-ready result of scoring one frame.
type Reading struct {
	SessionID string    `json:"session_id"`
	FrameID   string    `json:"frame_id"`
	Score     int       `json:"score"`   // smile score in [0,100]
	Level     string    `json:"level"`   // red, yellow or green
	Message   string    `json:"message"` // encouragement text for the score tier
	TS        time.Time `json:"ts"`
}
