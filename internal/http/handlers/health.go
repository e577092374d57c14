package handlers

import (
	"net/http"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
)

type healthResponse struct {
	Status           string `json:"status"`
	CodeLayerVersion string `json:"codeLayerVersion"`
	ValidatorVersion string `json:"validatorVersion"`
	Mediator         bool   `json:"mediator"`
}

// Health returns a liveness handler. mediator reports whether an LLM
// mediator is configured.
func Health(mediator bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:           "ok",
			CodeLayerVersion: codelayer.Version,
			ValidatorVersion: rewrite.Version,
			Mediator:         mediator,
		})
	}
}
