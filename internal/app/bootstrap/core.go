package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	appconfig "github.com/wolfman30/coparent-mediator/internal/config"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/internal/llm"
	"github.com/wolfman30/coparent-mediator/internal/mediation"
	"github.com/wolfman30/coparent-mediator/internal/observability/metrics"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// CoreDeps are the optional collaborators of the mediation core.
type CoreDeps struct {
	LLM        llm.Client
	Store      emotion.Store
	Registerer prometheus.Registerer
	Logger     *logging.Logger
}

// Core is the wired mediation pipeline.
type Core struct {
	Parser   *codelayer.Parser
	Tracker  *emotion.Tracker
	Service  *mediation.Service
	Metrics  *metrics.MediationMetrics
	Mediator bool
}

// BuildCore wires the parser, emotion tracker and mediation service from
// config. Without an LLM client the tracker degrades to neutral and the
// service serves fallback templates.
func BuildCore(cfg *appconfig.Config, deps CoreDeps) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	logger := logging.OrDefault(deps.Logger)
	m := metrics.NewMediationMetrics(deps.Registerer)

	parser := codelayer.NewParser(
		codelayer.WithThresholds(codelayer.Thresholds{
			IndirectModerateConfidence: cfg.IndirectModerateConfidence,
			IndirectHighCount:          cfg.IndirectHighCount,
		}),
		codelayer.WithLogger(logger.With("component", "codelayer")),
		codelayer.WithObserver(m),
		codelayer.WithWarnLatency(cfg.ParseWarnLatency),
		codelayer.WithBatchConcurrency(cfg.BatchConcurrency),
	)

	trackerOpts := []emotion.Option{
		emotion.WithObserver(m),
		emotion.WithLogger(logger.With("component", "emotion")),
		emotion.WithDecay(emotion.Decay{
			RoomStress:        cfg.StressResetRoom,
			ParticipantStress: cfg.StressResetParticipant,
			Momentum:          cfg.MomentumReset,
		}),
		emotion.WithDeadband(cfg.StressDeadband),
		emotion.WithClassifierTimeout(cfg.EmotionClassifierTimeout),
	}
	if deps.Store != nil {
		trackerOpts = append(trackerOpts, emotion.WithStore(deps.Store))
	}
	if deps.LLM != nil {
		trackerOpts = append(trackerOpts, emotion.WithClassifier(emotion.NewLLMClassifier(deps.LLM, "")))
	}
	tracker := emotion.NewTracker(trackerOpts...)

	serviceLogger := logger.With("component", "mediation")
	serviceOpts := []mediation.Option{
		mediation.WithEvents(mediation.NewEventLogger(serviceLogger)),
		mediation.WithMetrics(m),
		mediation.WithLogger(serviceLogger),
		mediation.WithMediatorTimeout(cfg.MediatorTimeout),
	}
	if deps.LLM != nil {
		serviceOpts = append(serviceOpts, mediation.WithMediator(mediation.NewLLMMediator(deps.LLM, "")))
	}

	return &Core{
		Parser:   parser,
		Tracker:  tracker,
		Service:  mediation.NewService(parser, tracker, serviceOpts...),
		Metrics:  m,
		Mediator: deps.LLM != nil,
	}, nil
}
