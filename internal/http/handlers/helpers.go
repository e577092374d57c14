// Package handlers exposes the mediation core over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/wolfman30/coparent-mediator/internal/http/middleware"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is required")

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func roomID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "roomID"))
}

// resolveSender returns the authenticated participant when the request
// carries a token, otherwise the claimed id. A claimed id that differs from
// the token subject is refused.
func resolveSender(r *http.Request, claimed string) (string, bool) {
	claimed = strings.TrimSpace(claimed)
	claims, ok := httpmiddleware.ParticipantFromContext(r.Context())
	if !ok {
		return claimed, true
	}
	if claimed != "" && claimed != claims.Subject {
		return "", false
	}
	return claims.Subject, true
}
