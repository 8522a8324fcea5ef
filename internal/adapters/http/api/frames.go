// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/egaolabs/smiled/internal/app"
	"github.com/egaolabs/smiled/internal/domain/dedupe"
	"github.com/egaolabs/smiled/internal/domain/model"
)

// FrameDependencies defines the interface for frame intake dependencies.
type FrameDependencies interface {
	dedupe.Deduper
	Submit(ctx context.Context, frame model.Frame) error
}

// FramesHandler handles frame submissions.
type FramesHandler struct {
	deps FrameDependencies
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps FrameDependencies) *FramesHandler {
	return &FramesHandler{deps: deps}
}

// HandlePostFrame handles POST /frames requests.
func (h *FramesHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.FrameID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	err := h.deps.Submit(r.Context(), req.toFrame())
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	case errors.Is(err, service.ErrThrottled):
		// Gate drops are normal operation at camera frame rates; the frame
		// stays recorded so a device retry reads as a duplicate.
		writeJSON(w, http.StatusOK, ackResponse{Status: "throttled", Duplicate: false})
	case errors.Is(err, service.ErrBackpressure):
		// Rollback the "seen" status since the frame never entered the queue
		h.deps.Unrecord(r.Context(), req.FrameID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	default:
		h.deps.Unrecord(r.Context(), req.FrameID)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
