package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// MaxBatchSize caps /v1/parse/batch.
const MaxBatchSize = 100

// CodeLayerHandler serves the parse endpoints.
type CodeLayerHandler struct {
	parser *codelayer.Parser
	logger *logging.Logger
}

func NewCodeLayerHandler(parser *codelayer.Parser, logger *logging.Logger) *CodeLayerHandler {
	if parser == nil {
		parser = codelayer.NewParser()
	}
	return &CodeLayerHandler{parser: parser, logger: logging.OrDefault(logger)}
}

type parseRequest struct {
	Text      string                   `json:"text"`
	SenderID  string                   `json:"senderId"`
	Timestamp time.Time                `json:"timestamp"`
	Context   codelayer.ParsingContext `json:"context"`
}

type batchRequest struct {
	Messages []codelayer.Message      `json:"messages"`
	Context  codelayer.ParsingContext `json:"context"`
}

type batchResponse struct {
	Results []*codelayer.ParsedMessage `json:"results"`
}

type quickCheckRequest struct {
	Text string `json:"text"`
}

type quickCheckResponse struct {
	Flagged bool `json:"flagged"`
}

// Parse runs the full pipeline on one message.
func (h *CodeLayerHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	pm := h.parser.Parse(r.Context(), codelayer.Message{
		Text:      req.Text,
		SenderID:  req.SenderID,
		Timestamp: req.Timestamp,
	}, req.Context)
	writeJSON(w, http.StatusOK, pm)
}

// ParseBatch parses up to MaxBatchSize messages, keeping input order.
func (h *CodeLayerHandler) ParseBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	switch {
	case len(req.Messages) == 0:
		jsonError(w, "messages are required", http.StatusBadRequest)
		return
	case len(req.Messages) > MaxBatchSize:
		jsonError(w, "too many messages", http.StatusRequestEntityTooLarge)
		return
	}
	results, err := h.parser.ParseBatch(r.Context(), req.Messages, req.Context)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.logger.Warn("parse batch cancelled", "messages", len(req.Messages), "error", err)
			jsonError(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("parse batch failed", "messages", len(req.Messages), "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

// QuickCheck runs the cheap red-flag pre-screen only.
func (h *CodeLayerHandler) QuickCheck(w http.ResponseWriter, r *http.Request) {
	var req quickCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, quickCheckResponse{Flagged: codelayer.QuickCheck(req.Text)})
}
