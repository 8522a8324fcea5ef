package synthetic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/egaolabs/smiled/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with a timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitFrames submits frames concurrently using a worker pool.
func submitFrames(ctx context.Context, config *Config, frames []Frame, stats *Stats) error {
	logger.Get().Info(ctx, "submitting frames",
		logger.Int("frames", len(frames)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/frames"

	var (
		accepted  int64
		throttled int64
		duplicate int64
		failed    int64
		submitted int64
	)

	frameChan := make(chan Frame, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for frame := range frameChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleFrame(ctx, client, url, frame)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "throttled":
						atomic.AddInt64(&throttled, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if config.Progress != nil {
						config.Progress(1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(frameChan)
		for _, frame := range frames {
			select {
			case <-ctx.Done():
				return
			case frameChan <- frame:
			}
		}
	}()

	wg.Wait()

	stats.FramesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.FramesAccepted = int(atomic.LoadInt64(&accepted))
	stats.FramesThrottled = int(atomic.LoadInt64(&throttled))
	stats.FramesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.FramesFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "frame submission completed",
		logger.Int("accepted", stats.FramesAccepted),
		logger.Int("throttled", stats.FramesThrottled),
		logger.Int("duplicate", stats.FramesDuplicate),
		logger.Int("failed", stats.FramesFailed))

	return nil
}

// submitSingleFrame submits one frame and classifies the outcome.
func submitSingleFrame(ctx context.Context, client *HTTPClient, url string, frame Frame) string {
	resp, err := client.Post(ctx, url, frame)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "accepted"
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil {
			if ack.Duplicate {
				return "duplicate"
			}
			if ack.Status == "throttled" {
				return "throttled"
			}
		}
		return "throttled"
	default:
		return "failed"
	}
}

// getLeaderboard fetches the current leaderboard.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard request failed with status: %d", resp.StatusCode)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard: %w", err)
	}

	stats.LeaderboardEntries = len(entries)
	return entries, nil
}
