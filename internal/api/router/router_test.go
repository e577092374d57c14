package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/coparent-mediator/internal/http/middleware"
	"github.com/wolfman30/coparent-mediator/internal/mediation"
	"github.com/wolfman30/coparent-mediator/internal/observability/metrics"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedClassifier emotion.Classification

func (c fixedClassifier) Classify(context.Context, emotion.ClassifyRequest) (emotion.Classification, error) {
	return emotion.Classification(c), nil
}

func newTestRouter(t *testing.T, mutate ...func(*Config)) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", io.Discard)
	reg := prometheus.NewRegistry()
	m := metrics.NewMediationMetrics(reg)

	parser := codelayer.NewParser(codelayer.WithLogger(logger), codelayer.WithObserver(m))
	tracker := emotion.NewTracker(
		emotion.WithClassifier(fixedClassifier{CurrentEmotion: "frustrated", Intensity: 60, StressLevel: 60, Confidence: 80}),
		emotion.WithObserver(m),
		emotion.WithLogger(logger),
	)
	svc := mediation.NewService(parser, tracker, mediation.WithMetrics(m), mediation.WithLogger(logger))

	cfg := &Config{
		Logger:             logger,
		CodeLayer:          handlers.NewCodeLayerHandler(parser, logger),
		Rewrite:            handlers.NewRewriteHandler(parser),
		Emotion:            handlers.NewEmotionHandler(tracker, logger),
		Mediation:          handlers.NewMediationHandler(svc, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://app.example"},
	}
	for _, fn := range mutate {
		fn(cfg)
	}
	return New(cfg)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	resp := decode[map[string]any](t, rec)
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", resp["status"])
	}
	if resp["codeLayerVersion"] != codelayer.Version {
		t.Errorf("unexpected code layer version %v", resp["codeLayerVersion"])
	}
}

func TestRouterParse(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/parse", map[string]any{"text": "you suck", "senderId": "alex"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	pm := decode[codelayer.ParsedMessage](t, rec)
	if pm.Assessment.Transmit {
		t.Fatalf("expected insult to be blocked")
	}
	if pm.Assessment.ConflictPotential != codelayer.ConflictHigh {
		t.Fatalf("expected high conflict, got %s", pm.Assessment.ConflictPotential)
	}
	if pm.SenderID != "alex" {
		t.Fatalf("expected sender id, got %q", pm.SenderID)
	}
}

func TestRouterParseRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)

	if rec := do(t, router, http.MethodPost, "/v1/parse", map[string]any{"text": "  "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader("text=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for form body, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestRouterParseBatch(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/parse/batch", map[string]any{
		"messages": []map[string]string{
			{"text": "Can we schedule pickup for Friday?"},
			{"text": "you suck"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Results []codelayer.ParsedMessage `json:"results"`
	}](t, rec)
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].Assessment.Transmit || resp.Results[1].Assessment.Transmit {
		t.Fatalf("expected input order to be kept")
	}

	tooMany := make([]map[string]string, handlers.MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = map[string]string{"text": "ok"}
	}
	if rec := do(t, router, http.MethodPost, "/v1/parse/batch", map[string]any{"messages": tooMany}); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/parse/batch", map[string]any{"messages": []any{}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", rec.Code)
	}
}

func TestRouterQuickCheck(t *testing.T) {
	router := newTestRouter(t)
	cases := map[string]bool{
		"you always forget the forms": true,
		"Pickup is at 5 on Friday.":   false,
	}
	for text, want := range cases {
		rec := do(t, router, http.MethodPost, "/v1/quick-check", map[string]string{"text": text})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decode[map[string]bool](t, rec)["flagged"]; got != want {
			t.Fatalf("quick check %q = %v, want %v", text, got, want)
		}
	}
}

func TestRouterRewriteValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/rewrites/validate", map[string]string{
		"text":     "That hurt me.",
		"original": "you suck",
	})
	res := decode[rewrite.Result](t, rec)
	if res.Valid || res.Reason != rewrite.ReasonReceiverDetected {
		t.Fatalf("expected receiver rejection, got %+v", res)
	}

	rec = do(t, router, http.MethodPost, "/v1/interventions/validate", map[string]string{
		"rewrite1": "I'm feeling frustrated and need a break.",
		"rewrite2": "Why would you say that?",
		"original": "you suck",
	})
	iv := decode[rewrite.InterventionResult](t, rec)
	if iv.Valid || !iv.AnyFailed || iv.BothFailed {
		t.Fatalf("expected exactly one failed rewrite, got %+v", iv)
	}
	if !iv.Rewrite1.Valid || iv.Rewrite2.Valid {
		t.Fatalf("expected rewrite2 to fail, got %+v", iv)
	}
}

func TestRouterFallbacks(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/fallbacks", map[string]any{
		"message":  "whatever",
		"analysis": map[string]bool{"threat": true},
	})
	fb := decode[rewrite.Fallback](t, rec)
	if fb.Category != rewrite.CategoryThreat || !fb.IsFallback {
		t.Fatalf("expected threat fallback, got %+v", fb)
	}

	rec = do(t, router, http.MethodPost, "/v1/fallbacks", map[string]any{"message": "I will call my lawyer."})
	fb = decode[rewrite.Fallback](t, rec)
	if fb.Category != rewrite.CategoryThreat {
		t.Fatalf("expected threat from keywords, got %s", fb.Category)
	}
	if fb.Rewrite1 == "" || fb.Rewrite2 == "" || fb.Tip == "" {
		t.Fatalf("expected complete template, got %+v", fb)
	}
}

func TestRouterEmotionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	if rec := do(t, router, http.MethodGet, "/v1/rooms/room-1/emotions", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", rec.Code)
	}

	rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/emotions", map[string]string{"sender": "alex", "text": "You never listen."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	a := decode[emotion.Analysis](t, rec)
	if a.Participant.ID != "alex" || a.Participant.StressLevel != 60 {
		t.Fatalf("unexpected analysis %+v", a.Participant)
	}

	rec = do(t, router, http.MethodGet, "/v1/rooms/room-1/emotions", nil)
	snap := decode[emotion.Snapshot](t, rec)
	if snap.Participants["alex"].CurrentEmotion != emotion.EmotionFrustrated {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	if rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/emotions/reset", map[string]string{"participant": "alex"}); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = do(t, router, http.MethodGet, "/v1/rooms/room-1/emotions", nil)
	snap = decode[emotion.Snapshot](t, rec)
	if got := snap.Participants["alex"].StressLevel; got != 40 {
		t.Fatalf("expected stress 40 after reset, got %d", got)
	}

	if rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/emotions", map[string]string{"text": "hi"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without sender, got %d", rec.Code)
	}
}

func TestRouterMediate(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/mediate", map[string]string{
		"text":     "Can we schedule pickup for Friday?",
		"senderId": "alex",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode[mediation.Outcome](t, rec)
	if out.Action != mediation.ActionTransmit || out.Intervention != nil {
		t.Fatalf("expected clean message to transmit, got %+v", out)
	}

	rec = do(t, router, http.MethodPost, "/v1/rooms/room-1/mediate", map[string]string{
		"text":     "you suck",
		"senderId": "alex",
	})
	out = decode[mediation.Outcome](t, rec)
	if out.Action != mediation.ActionIntervene || out.Intervention == nil {
		t.Fatalf("expected intervention, got %+v", out)
	}
	if out.Intervention.Source != mediation.SourceFallback || out.Intervention.Category != rewrite.CategoryAttack {
		t.Fatalf("expected attack fallback without a mediator, got %+v", out.Intervention)
	}
	if out.Emotion == nil || out.Emotion.Participant.ID != "alex" {
		t.Fatalf("expected emotion analysis for sender, got %+v", out.Emotion)
	}

	if rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/mediate", map[string]string{"text": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d", rec.Code)
	}
}

func TestRouterAcceptIntervention(t *testing.T) {
	router := newTestRouter(t)

	do(t, router, http.MethodPost, "/v1/rooms/room-1/emotions", map[string]string{"sender": "alex", "text": "You never listen."})
	if rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/interventions/accept", map[string]string{"participant": "alex"}); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	snap := decode[emotion.Snapshot](t, do(t, router, http.MethodGet, "/v1/rooms/room-1/emotions", nil))
	if got := snap.Participants["alex"].StressLevel; got != 40 {
		t.Fatalf("expected stress 40 after accept, got %d", got)
	}
	if rec := do(t, router, http.MethodPost, "/v1/rooms/room-1/interventions/accept", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without participant, got %d", rec.Code)
	}
}

func TestRouterMediateRateLimitPerRoom(t *testing.T) {
	router := newTestRouter(t, func(c *Config) {
		c.MediateRateLimit = 0.001
		c.MediateRateBurst = 1
	})
	body := map[string]string{"text": "Can we schedule pickup for Friday?", "senderId": "alex"}

	if rec := do(t, router, http.MethodPost, "/v1/rooms/a/mediate", body); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/rooms/a/mediate", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/rooms/b/mediate", body); rec.Code != http.StatusOK {
		t.Fatalf("expected other room to be allowed, got %d", rec.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/v1/parse", map[string]string{"text": "you suck"})

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `coparent_codelayer_parses_total{conflict="high",transmit="false"} 1`) {
		t.Fatalf("expected parse counter in metrics output")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/parse", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func signParticipant(t *testing.T, secret, sub, room string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, httpmiddleware.ParticipantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Room: room,
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestRouterParticipantAuth(t *testing.T) {
	const secret = "router-secret"
	router := newTestRouter(t, func(c *Config) { c.AuthSecret = secret })

	if rec := do(t, router, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("health should not need a token, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/parse", map[string]string{"text": "hi"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	withToken := func(token, path string, body any) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	alex := signParticipant(t, secret, "alex", "room-1")

	rec := withToken(alex, "/v1/rooms/room-1/emotions", map[string]string{"text": "You never listen."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if a := decode[emotion.Analysis](t, rec); a.Participant.ID != "alex" {
		t.Fatalf("sender should come from the token, got %q", a.Participant.ID)
	}

	if rec := withToken(alex, "/v1/rooms/room-1/emotions", map[string]string{"sender": "sam", "text": "hi"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for impersonation, got %d", rec.Code)
	}
	if rec := withToken(alex, "/v1/rooms/room-2/emotions", map[string]string{"text": "hi"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 outside the token room, got %d", rec.Code)
	}
	if rec := withToken(alex, "/v1/parse", map[string]string{"text": "hi"}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for parse with token, got %d", rec.Code)
	}
}
