package synthetic

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/egaolabs/smiled/pkg/logger"
)

// processingDelay gives the pipeline time to drain before the leaderboard
// is read back.
const processingDelay = 2 * time.Second

// Run executes a complete synthetic capture run: health check, frame
// generation, submission and leaderboard readback.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting synthetic smile run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.Sessions),
		logger.Int("framesPerSession", config.FramesPerSession),
		logger.Any("frameInterval", config.FrameInterval),
		logger.Int("workers", config.Workers),
		logger.Any("seed", config.Seed))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	gen := NewGenerator(config.Seed)
	frames := gen.GenerateFrames(config.Sessions, config.FramesPerSession, config.FrameInterval, time.Now())
	stats.FramesGenerated = len(frames)

	if err := submitFrames(ctx, config, frames, stats); err != nil {
		return fmt.Errorf("frame submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for frames to be scored")
	time.Sleep(processingDelay)

	entries, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	for _, entry := range entries {
		logger.Get().Info(ctx, "leaderboard entry",
			logger.Int("rank", entry.Rank),
			logger.String("sessionID", entry.SessionID),
			logger.Int("bestScore", entry.BestScore))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 response is healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var framesPerSecond float64
	if stats.Duration > 0 {
		framesPerSecond = float64(stats.FramesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("framesGenerated", stats.FramesGenerated),
		logger.Int("framesSubmitted", stats.FramesSubmitted),
		logger.Int("framesAccepted", stats.FramesAccepted),
		logger.Int("framesThrottled", stats.FramesThrottled),
		logger.Int("framesDuplicate", stats.FramesDuplicate),
		logger.Int("framesFailed", stats.FramesFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("framesPerSecond", framesPerSecond))
}
