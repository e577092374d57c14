package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	httpmiddleware "github.com/wolfman30/coparent-mediator/internal/http/middleware"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonError(rec, "oops", http.StatusTeapot)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode json response: %v", err)
	}
	if body["error"] != "oops" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Text string }

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := decodeJSON(httptest.NewRecorder(), req, &v); err != errEmptyBody {
		t.Fatalf("expected errEmptyBody, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	if err := decodeJSON(httptest.NewRecorder(), req, &v); err != nil || v.Text != "hi" {
		t.Fatalf("unexpected decode result %q, %v", v.Text, err)
	}

	big := `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	if err := decodeJSON(httptest.NewRecorder(), req, &v); err == nil {
		t.Fatalf("expected oversized body to fail")
	}
}

func TestRoomID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/%20r1%20/emotions", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("roomID", " r1 ")
	req = req.WithContext(contextWithRoute(req, rctx))
	if got := roomID(req); got != "r1" {
		t.Fatalf("expected trimmed room id, got %q", got)
	}
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

func TestResolveSender(t *testing.T) {
	if got, ok := resolveSender(httptest.NewRequest(http.MethodPost, "/", nil), " alex "); !ok || got != "alex" {
		t.Fatalf("unauthenticated: got %q %v", got, ok)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, httpmiddleware.ParticipantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sam",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	type result struct {
		sender string
		ok     bool
	}
	check := func(claimed string) result {
		var res result
		h := httpmiddleware.ParticipantJWT("secret")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			res.sender, res.ok = resolveSender(r, claimed)
		}))
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		h.ServeHTTP(httptest.NewRecorder(), req)
		return res
	}

	if res := check(""); !res.ok || res.sender != "sam" {
		t.Fatalf("empty claim should take token subject, got %+v", res)
	}
	if res := check("sam"); !res.ok || res.sender != "sam" {
		t.Fatalf("matching claim rejected: %+v", res)
	}
	if res := check("alex"); res.ok {
		t.Fatalf("mismatched claim accepted: %+v", res)
	}
}
