package synthetic

import "time"

// Config holds configuration for a synthetic frame run.
type Config struct {
	BaseURL          string        // Base URL of the service
	Sessions         int           // Number of concurrent capture sessions to simulate
	FramesPerSession int           // Number of frames to generate per session
	FrameInterval    time.Duration // Capture interval between consecutive frames
	Workers          int           // Number of concurrent submitter workers
	Timeout          time.Duration // HTTP request timeout
	Seed             int64         // RNG seed; the same seed replays the same run
	TopN             int           // Number of leaderboard entries to fetch afterwards
	Verbose          bool          // Enable verbose logging
	Progress         func(n int)   // Optional progress callback, called per submitted frame
}

// Frame is the wire shape submitted to POST /frames.
type Frame struct {
	FrameID     string             `json:"frame_id"`
	SessionID   string             `json:"session_id"`
	Blendshapes map[string]float64 `json:"blendshapes"`
	TS          string             `json:"ts"`
}

// Entry mirrors a leaderboard entry as returned by the service.
type Entry struct {
	Rank      int    `json:"rank"`
	SessionID string `json:"session_id"`
	BestScore int    `json:"best_score"`
}

// AckResponse represents the response from frame submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	FramesGenerated    int
	FramesSubmitted    int
	FramesAccepted     int
	FramesThrottled    int
	FramesDuplicate    int
	FramesFailed       int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
