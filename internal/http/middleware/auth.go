package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const participantClaimsKey contextKey = "participantClaims"

// ParticipantClaims identify one co-parent. Subject is the participant id.
// A non-empty Room limits the token to that room.
type ParticipantClaims struct {
	jwt.RegisteredClaims
	Room string `json:"room,omitempty"`
}

// ParticipantJWT enforces an HMAC-signed participant token. An empty secret
// disables authentication. Browsers cannot set headers on a websocket
// upgrade, so the token may also arrive as the access_token query parameter.
func ParticipantJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				authError(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			claims := &ParticipantClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
				authError(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), participantClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoomScope rejects room-limited tokens used outside their room. Requests
// without claims pass through.
func RoomScope(roomOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := ParticipantFromContext(r.Context()); ok && claims.Room != "" && claims.Room != roomOf(r) {
				authError(w, "token not valid for this room", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParticipantFromContext returns the verified claims, if any.
func ParticipantFromContext(ctx context.Context) (*ParticipantClaims, bool) {
	claims, ok := ctx.Value(participantClaimsKey).(*ParticipantClaims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

func authError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
