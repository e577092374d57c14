package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// EmotionHandler serves room emotion tracking.
type EmotionHandler struct {
	tracker *emotion.Tracker
	logger  *logging.Logger
	now     func() time.Time
}

func NewEmotionHandler(tracker *emotion.Tracker, logger *logging.Logger) *EmotionHandler {
	if tracker == nil {
		panic("handlers: emotion tracker is required")
	}
	return &EmotionHandler{tracker: tracker, logger: logging.OrDefault(logger), now: time.Now}
}

type analyzeRequest struct {
	Sender    string            `json:"sender"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Recent    []emotion.Message `json:"recent,omitempty"`
}

type resetRequest struct {
	Participant string `json:"participant"`
}

// Analyze records one message and returns the updated analysis.
func (h *EmotionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	if room == "" {
		jsonError(w, "missing roomID", http.StatusBadRequest)
		return
	}
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sender, ok := resolveSender(r, req.Sender)
	if !ok {
		jsonError(w, "sender does not match token", http.StatusForbidden)
		return
	}
	req.Sender = sender
	if req.Sender == "" || strings.TrimSpace(req.Text) == "" {
		jsonError(w, "sender and text are required", http.StatusBadRequest)
		return
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = h.now()
	}
	analysis := h.tracker.Analyze(r.Context(), emotion.Message{
		Sender:    req.Sender,
		Text:      req.Text,
		Timestamp: req.Timestamp,
	}, req.Recent, room)
	writeJSON(w, http.StatusOK, analysis)
}

// Trajectory returns the room snapshot, or 404 when the room is unknown.
func (h *EmotionHandler) Trajectory(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	if room == "" {
		jsonError(w, "missing roomID", http.StatusBadRequest)
		return
	}
	snap := h.tracker.Trajectory(r.Context(), room)
	if snap == nil {
		jsonError(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Reset applies the post-intervention decay. An empty participant decays
// every participant in the room.
func (h *EmotionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	if room == "" {
		jsonError(w, "missing roomID", http.StatusBadRequest)
		return
	}
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	h.tracker.Reset(r.Context(), room, strings.TrimSpace(req.Participant))
	w.WriteHeader(http.StatusNoContent)
}
