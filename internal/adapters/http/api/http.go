// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/egaolabs/smiled/internal/adapters/repository"
	"github.com/egaolabs/smiled/internal/domain/dedupe"
	"github.com/egaolabs/smiled/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Submit pushes a frame into the scoring pipeline. Throttled or
	// rejected frames are reported through sentinel errors.
	Submit(ctx context.Context, frame model.Frame) error

	// Read operations expose per-session smile state.
	Latest(ctx context.Context, sessionID string) (Entry, error)
	TopBest(ctx context.Context, n int) ([]Entry, error)
}

// Entry mirrors the read shape returned by session queries.
type Entry = repository.SessionEntry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	framesHandler      *FramesHandler
	sessionsHandler    *SessionsHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		framesHandler:      NewFramesHandler(deps),
		sessionsHandler:    NewSessionsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/frames", MetricsMiddleware(s.framesHandler.HandlePostFrame, "frames"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleGetSession, "sessions"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

// frameRequest mirrors the wire schema for POST /frames.
type frameRequest struct {
	FrameID     string             `json:"frame_id"`
	SessionID   string             `json:"session_id"`
	Blendshapes map[string]float64 `json:"blendshapes"`
	TS          string             `json:"ts"`
}

func (f frameRequest) validate() error {
	switch {
	case strings.TrimSpace(f.FrameID) == "":
		return errors.New("missing frame_id")
	case strings.TrimSpace(f.SessionID) == "":
		return errors.New("missing session_id")
	case strings.TrimSpace(f.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, f.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// toFrame converts a validated request to the domain frame. An absent or
// empty blendshapes map is legal and scores zero downstream.
func (f frameRequest) toFrame() model.Frame {
	ts, _ := time.Parse(time.RFC3339, f.TS)
	return model.Frame{
		FrameID:     f.FrameID,
		SessionID:   f.SessionID,
		Blendshapes: model.Sample(f.Blendshapes),
		TS:          ts,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
