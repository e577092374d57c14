package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/coparent-mediator/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/coparent-mediator/internal/http/middleware"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CodeLayer          *handlers.CodeLayerHandler
	Rewrite            *handlers.RewriteHandler
	Emotion            *handlers.EmotionHandler
	Mediation          *handlers.MediationHandler
	Drafts             *handlers.DraftsHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// AuthSecret enables participant tokens on /v1 when set.
	AuthSecret string
	// MediatorConfigured is reported by /health.
	MediatorConfigured bool

	// Per-room limit on mediate calls; zero disables it.
	MediateRateLimit float64
	MediateRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", handlers.Health(cfg.MediatorConfigured))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(httpmiddleware.ParticipantJWT(cfg.AuthSecret))

		if cfg.Drafts != nil {
			// Websocket upgrades must not pass through Compress.
			v1.Get("/ws/drafts", cfg.Drafts.HandleWebSocket)
		}

		v1.Group(func(api chi.Router) {
			api.Use(middleware.Compress(5))
			api.Use(middleware.AllowContentType("application/json"))

			if cfg.CodeLayer != nil {
				api.Post("/parse", cfg.CodeLayer.Parse)
				api.Post("/parse/batch", cfg.CodeLayer.ParseBatch)
				api.Post("/quick-check", cfg.CodeLayer.QuickCheck)
			}
			if cfg.Rewrite != nil {
				api.Post("/rewrites/validate", cfg.Rewrite.ValidateRewrite)
				api.Post("/interventions/validate", cfg.Rewrite.ValidateIntervention)
				api.Post("/fallbacks", cfg.Rewrite.Fallbacks)
			}

			api.Route("/rooms/{roomID}", func(room chi.Router) {
				room.Use(httpmiddleware.RoomScope(roomKey))
				if cfg.Emotion != nil {
					room.Post("/emotions", cfg.Emotion.Analyze)
					room.Get("/emotions", cfg.Emotion.Trajectory)
					room.Post("/emotions/reset", cfg.Emotion.Reset)
				}
				if cfg.Mediation != nil {
					limit := httpmiddleware.RateLimit(cfg.MediateRateLimit, cfg.MediateRateBurst, roomKey)
					room.With(limit).Post("/mediate", cfg.Mediation.Mediate)
					room.Post("/interventions/accept", cfg.Mediation.AcceptIntervention)
				}
			})
		})
	})

	return r
}

func roomKey(r *http.Request) string {
	return chi.URLParam(r, "roomID")
}
