// smilegen drives a running smile service with synthetic capture
// sessions. It generates deterministic expression-sample frames, posts
// them concurrently and reads back the leaderboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/egaolabs/smiled/internal/synthetic"
	"github.com/egaolabs/smiled/pkg/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Default configuration constants.
const (
	defaultSessions         = 20
	defaultFramesPerSession = 50
	defaultFrameInterval    = 400 * time.Millisecond
	defaultTimeout          = 30 * time.Second
	defaultTopN             = 10
	defaultRunTimeout       = 10 * time.Minute
	defaultWorkerMultiplier = 2
)

var opts struct {
	baseURL          string
	sessions         int
	framesPerSession int
	frameInterval    time.Duration
	workers          int
	timeout          time.Duration
	seed             int64
	topN             int
	verbose          bool
}

var rootCmd = &cobra.Command{
	Use:   "smilegen",
	Short: "Synthetic frame generator for the smile scoring service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		if opts.verbose {
			_ = logger.SetLevelString("debug")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
		defer cancel()

		totalFrames := opts.sessions * opts.framesPerSession
		bar := progressbar.NewOptions(totalFrames,
			progressbar.OptionSetDescription("😀 Submitting frames"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)

		config := &synthetic.Config{
			BaseURL:          opts.baseURL,
			Sessions:         opts.sessions,
			FramesPerSession: opts.framesPerSession,
			FrameInterval:    opts.frameInterval,
			Workers:          opts.workers,
			Timeout:          opts.timeout,
			Seed:             opts.seed,
			TopN:             opts.topN,
			Verbose:          opts.verbose,
			Progress:         func(n int) { _ = bar.Add(n) },
		}

		err := synthetic.Run(ctx, config)
		_ = bar.Finish()
		return err
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:9080", "Base URL of the service")
	rootCmd.Flags().IntVar(&opts.sessions, "sessions", defaultSessions, "Number of capture sessions to simulate")
	rootCmd.Flags().IntVar(&opts.framesPerSession, "frames", defaultFramesPerSession, "Number of frames per session")
	rootCmd.Flags().DurationVar(&opts.frameInterval, "interval", defaultFrameInterval, "Capture interval between frames of one session")
	rootCmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU()*defaultWorkerMultiplier, "Number of concurrent submitter workers")
	rootCmd.Flags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	rootCmd.Flags().Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "RNG seed; reuse a seed to replay a run")
	rootCmd.Flags().IntVar(&opts.topN, "top", defaultTopN, "Number of leaderboard entries to fetch")
	rootCmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
