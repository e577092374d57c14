package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/internal/mediation"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// MediationHandler serves the mediate and accept endpoints.
type MediationHandler struct {
	service *mediation.Service
	logger  *logging.Logger
	now     func() time.Time
}

func NewMediationHandler(service *mediation.Service, logger *logging.Logger) *MediationHandler {
	if service == nil {
		panic("handlers: mediation service is required")
	}
	return &MediationHandler{service: service, logger: logging.OrDefault(logger), now: time.Now}
}

type mediateRequest struct {
	Text      string                   `json:"text"`
	SenderID  string                   `json:"senderId"`
	Timestamp time.Time                `json:"timestamp"`
	Recent    []emotion.Message        `json:"recent,omitempty"`
	Context   codelayer.ParsingContext `json:"context"`
}

type acceptRequest struct {
	Participant string `json:"participant"`
}

// Mediate decides whether a draft can be sent and, if not, suggests rewrites.
func (h *MediationHandler) Mediate(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	if room == "" {
		jsonError(w, "missing roomID", http.StatusBadRequest)
		return
	}
	var req mediateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = h.now()
	}
	if req.SenderID == "" {
		req.SenderID = req.Context.SenderID
	}
	sender, ok := resolveSender(r, req.SenderID)
	if ok && req.Context.SenderID != "" {
		_, ok = resolveSender(r, req.Context.SenderID)
	}
	if !ok {
		jsonError(w, "senderId does not match token", http.StatusForbidden)
		return
	}
	req.SenderID = sender
	if req.Context.SenderID == "" {
		req.Context.SenderID = req.SenderID
	}

	out, err := h.service.Mediate(r.Context(), mediation.Request{
		RoomID: room,
		Message: codelayer.Message{
			Text:      req.Text,
			SenderID:  req.SenderID,
			Timestamp: req.Timestamp,
		},
		Recent:  req.Recent,
		Context: req.Context,
	})
	if err != nil {
		h.writeServiceError(w, room, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AcceptIntervention records that the sender took a suggestion.
func (h *MediationHandler) AcceptIntervention(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	var req acceptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	participant, ok := resolveSender(r, req.Participant)
	if !ok {
		jsonError(w, "participant does not match token", http.StatusForbidden)
		return
	}
	if participant == "" {
		jsonError(w, "participant is required", http.StatusBadRequest)
		return
	}
	if err := h.service.AcceptIntervention(r.Context(), room, participant); err != nil {
		h.writeServiceError(w, room, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediationHandler) writeServiceError(w http.ResponseWriter, room string, err error) {
	switch {
	case errors.Is(err, mediation.ErrEmptyMessage), errors.Is(err, mediation.ErrNoRoom):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("mediation cancelled", "room_id", room, "error", err)
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		h.logger.Error("mediation failed", "room_id", room, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}
