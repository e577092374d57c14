package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
)

// RewriteHandler serves perspective validation and fallback templates.
type RewriteHandler struct {
	parser *codelayer.Parser
}

func NewRewriteHandler(parser *codelayer.Parser) *RewriteHandler {
	if parser == nil {
		parser = codelayer.NewParser()
	}
	return &RewriteHandler{parser: parser}
}

type validateRewriteRequest struct {
	Text     string `json:"text"`
	Original string `json:"original"`
}

type validateInterventionRequest struct {
	Rewrite1 string `json:"rewrite1"`
	Rewrite2 string `json:"rewrite2"`
	Original string `json:"original"`
}

type fallbackRequest struct {
	Message  string            `json:"message"`
	Analysis *rewrite.Analysis `json:"analysis,omitempty"`
}

// ValidateRewrite checks one candidate rewrite.
func (h *RewriteHandler) ValidateRewrite(w http.ResponseWriter, r *http.Request) {
	var req validateRewriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, rewrite.ValidateRewritePerspective(req.Text, req.Original))
}

// ValidateIntervention checks a rewrite pair.
func (h *RewriteHandler) ValidateIntervention(w http.ResponseWriter, r *http.Request) {
	var req validateInterventionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, rewrite.ValidateIntervention(rewrite.Intervention{
		Rewrite1: req.Rewrite1,
		Rewrite2: req.Rewrite2,
	}, req.Original))
}

// Fallbacks returns the template for a message. Without explicit analysis
// flags the message is parsed to derive them.
func (h *RewriteHandler) Fallbacks(w http.ResponseWriter, r *http.Request) {
	var req fallbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	analysis := req.Analysis
	if analysis == nil && strings.TrimSpace(req.Message) != "" {
		pm := h.parser.Parse(r.Context(), codelayer.Message{Text: req.Message}, codelayer.ParsingContext{})
		analysis = rewrite.AnalysisFrom(pm)
	}
	writeJSON(w, http.StatusOK, rewrite.GetFallbackRewrites(req.Message, analysis))
}
