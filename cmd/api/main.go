package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/coparent-mediator/cmd/mainconfig"
	"github.com/wolfman30/coparent-mediator/internal/api/router"
	"github.com/wolfman30/coparent-mediator/internal/app/bootstrap"
	appconfig "github.com/wolfman30/coparent-mediator/internal/config"
	"github.com/wolfman30/coparent-mediator/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/coparent-mediator/internal/http/middleware"
	"github.com/wolfman30/coparent-mediator/internal/llm"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting coparent-mediator API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := setup(ctx, cfg, prometheus.DefaultRegisterer, promhttp.Handler(), logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.MediatorTimeout + cfg.EmotionClassifierTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		cleanup()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setup wires config into an HTTP handler. The cleanup func closes provider
// and redis connections.
func setup(ctx context.Context, cfg *appconfig.Config, reg prometheus.Registerer, metricsHandler http.Handler, logger *logging.Logger) (http.Handler, func(), error) {
	bedrock, err := setupBedrock(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	client, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, bedrock, logger)
	if err != nil {
		return nil, func() {}, err
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	cleanup := func() {
		closeLLM()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	core, err := bootstrap.BuildCore(cfg, bootstrap.CoreDeps{
		LLM:        client,
		Store:      bootstrap.BuildEmotionStore(redisClient, cfg),
		Registerer: reg,
		Logger:     logger,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	r := router.New(&router.Config{
		Logger:             logger,
		CodeLayer:          handlers.NewCodeLayerHandler(core.Parser, logger),
		Rewrite:            handlers.NewRewriteHandler(core.Parser),
		Emotion:            handlers.NewEmotionHandler(core.Tracker, logger),
		Mediation:          handlers.NewMediationHandler(core.Service, logger),
		Drafts:             handlers.NewDraftsHandler(core.Parser, httpmiddleware.OriginChecker(cfg.CORSAllowedOrigins), logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthSecret:         cfg.AuthJWTSecret,
		MediatorConfigured: core.Mediator,
		MediateRateLimit:   cfg.MediateRateLimit,
		MediateRateBurst:   cfg.MediateRateBurst,
	})
	return r, cleanup, nil
}

// setupBedrock returns nil unless a configured provider needs Bedrock.
func setupBedrock(ctx context.Context, cfg *appconfig.Config) (llm.BedrockConverseAPI, error) {
	if !bootstrap.NeedsBedrock(cfg) {
		return nil, nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return mainconfig.NewBedrockClient(awsCfg, cfg), nil
}
