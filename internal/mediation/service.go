package mediation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

var serviceTracer = otel.Tracer("coparent.internal.mediation")

// Fallback reasons recorded in events.
const (
	fallbackNoMediator    = "no_mediator"
	fallbackMediatorError = "mediator_error"
	fallbackBothRewrites  = "both_rewrites_failed"
	fallbackOneRewrite    = "one_rewrite_failed"
	fallbackInvalidTip    = "invalid_tip"
)

// Service runs the full mediation flow for one outgoing message.
type Service struct {
	parser   *codelayer.Parser
	tracker  *emotion.Tracker
	mediator Mediator
	events   *EventLogger
	metrics  Metrics
	logger   *logging.Logger
	timeout  time.Duration
}

type Option func(*Service)

func WithMediator(m Mediator) Option { return func(s *Service) { s.mediator = m } }

func WithEvents(e *EventLogger) Option { return func(s *Service) { s.events = e } }

func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithLogger(l *logging.Logger) Option { return func(s *Service) { s.logger = l } }

// WithMediatorTimeout bounds each Generate call.
func WithMediatorTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

// NewService wires a parser and tracker. A nil tracker skips emotion
// tracking; a nil parser gets the default.
func NewService(parser *codelayer.Parser, tracker *emotion.Tracker, opts ...Option) *Service {
	s := &Service{parser: parser, tracker: tracker}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = codelayer.NewParser()
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// Mediate parses the message and tracks emotion in parallel, then either
// clears it for transmission or returns a validated intervention.
func (s *Service) Mediate(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.RoomID) == "" {
		return Outcome{}, ErrNoRoom
	}
	if strings.TrimSpace(req.Message.Text) == "" {
		return Outcome{}, ErrEmptyMessage
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	ctx, span := serviceTracer.Start(ctx, "mediation.mediate")
	defer span.End()
	span.SetAttributes(attribute.String("mediation.room_id", req.RoomID))

	sender := req.Message.SenderID
	if sender == "" {
		sender = req.Context.SenderID
	}

	var (
		pm       *codelayer.ParsedMessage
		analysis *emotion.Analysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pm = s.parser.Parse(gctx, req.Message, req.Context)
		return nil
	})
	if s.tracker != nil {
		g.Go(func() error {
			a := s.tracker.Analyze(gctx, emotion.Message{
				Sender:    sender,
				Text:      req.Message.Text,
				Timestamp: req.Message.Timestamp,
			}, req.Recent, req.RoomID)
			analysis = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		ID:      uuid.NewString(),
		Parsed:  pm,
		Emotion: analysis,
		Urgency: UrgencyLow,
	}
	if analysis != nil {
		out.Urgency = UrgencyFor(analysis.Conversation.EscalationRisk)
		s.events.EmotionAnalyzed(ctx, req.RoomID, sender, string(analysis.Participant.CurrentEmotion), analysis.Conversation.EscalationRisk, analysis.Degraded)
	}
	s.events.MessageParsed(ctx, req.RoomID, sender, string(pm.Assessment.ConflictPotential), pm.Assessment.Transmit, axiomIDs(pm), float64(pm.Meta.Latency.Microseconds())/1000)

	out.QuickPass = codelayer.ShouldQuickPass(pm)
	if s.metrics != nil {
		s.metrics.ObserveQuickPass(out.QuickPass.Reason, out.QuickPass.CanPass)
	}
	span.SetAttributes(
		attribute.Bool("mediation.quick_pass", out.QuickPass.CanPass),
		attribute.String("mediation.urgency", string(out.Urgency)),
	)
	if out.QuickPass.CanPass {
		out.Action = ActionTransmit
		s.events.QuickPassed(ctx, req.RoomID, sender, out.QuickPass.Reason)
		return out, nil
	}

	out.Action = ActionIntervene
	s.intervene(ctx, req, sender, &out)
	span.SetAttributes(attribute.String("mediation.source", string(out.Intervention.Source)))
	return out, nil
}

func (s *Service) intervene(ctx context.Context, req Request, sender string, out *Outcome) {
	fb := rewrite.GetFallbackRewrites(req.Message.Text, rewrite.AnalysisFrom(out.Parsed))

	if s.mediator == nil {
		s.useFallback(ctx, req.RoomID, sender, out, fb, fallbackNoMediator)
		return
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	resp, err := s.mediator.Generate(genCtx, GenerateRequest{
		Parsed:  out.Parsed,
		Urgency: out.Urgency,
		Emotion: out.Emotion,
		Recent:  req.Recent,
	})
	if err != nil {
		s.logger.Warn("mediator failed, using fallback rewrites", "room_id", req.RoomID, "error", err)
		s.events.ErrorOccurred(ctx, req.RoomID, sender, "generate", err)
		s.useFallback(ctx, req.RoomID, sender, out, fb, fallbackMediatorError)
		return
	}

	check := ValidateResponse(resp, out.Parsed)
	out.ResponseErrors = check.Errors

	result := rewrite.ValidateIntervention(rewrite.Intervention{Rewrite1: resp.Rewrite1, Rewrite2: resp.Rewrite2}, req.Message.Text)
	out.Validation = &result
	if s.metrics != nil {
		s.metrics.ObserveValidation(result.Rewrite1.Reason, result.Rewrite1.Valid)
		s.metrics.ObserveValidation(result.Rewrite2.Reason, result.Rewrite2.Valid)
	}
	s.events.InterventionValidated(ctx, req.RoomID, sender, result.Valid, result.AnyFailed, result.BothFailed, check.Errors)

	if result.BothFailed {
		s.useFallback(ctx, req.RoomID, sender, out, fb, fallbackBothRewrites)
		return
	}

	iv := &Intervention{
		PersonalMessage: resp.PersonalMessage,
		Rewrite1:        resp.Rewrite1,
		Rewrite2:        resp.Rewrite2,
		Tip:             resp.Tip,
		Source:          SourceModel,
	}
	if result.AnyFailed {
		if !result.Rewrite1.Valid {
			iv.Rewrite1 = fb.Rewrite1
		}
		if !result.Rewrite2.Valid {
			iv.Rewrite2 = fb.Rewrite2
		}
		iv.Source = SourceMixed
		iv.Category = fb.Category
		s.observeFallback(ctx, req.RoomID, sender, fb, fallbackOneRewrite)
	}
	if check.TipInvalid {
		iv.Tip = fb.Tip
		s.observeFallback(ctx, req.RoomID, sender, fb, fallbackInvalidTip)
	}
	if _, diagnosed := forbiddenTerm(iv.PersonalMessage); diagnosed {
		iv.PersonalMessage = ""
	}
	out.Intervention = iv
}

func (s *Service) useFallback(ctx context.Context, roomID, sender string, out *Outcome, fb rewrite.Fallback, reason string) {
	out.Intervention = &Intervention{
		Rewrite1: fb.Rewrite1,
		Rewrite2: fb.Rewrite2,
		Tip:      fb.Tip,
		Category: fb.Category,
		Source:   SourceFallback,
	}
	s.observeFallback(ctx, roomID, sender, fb, reason)
}

func (s *Service) observeFallback(ctx context.Context, roomID, sender string, fb rewrite.Fallback, reason string) {
	if s.metrics != nil {
		s.metrics.ObserveFallback(string(fb.Category))
	}
	s.events.FallbackUsed(ctx, roomID, sender, string(fb.Category), reason)
}

// AcceptIntervention records that the sender took a suggestion and decays
// the room's stress. An empty participant decays the whole room.
func (s *Service) AcceptIntervention(ctx context.Context, roomID, participant string) error {
	if strings.TrimSpace(roomID) == "" {
		return ErrNoRoom
	}
	if s.tracker != nil {
		s.tracker.Reset(ctx, roomID, participant)
	}
	s.events.EmotionReset(ctx, roomID, participant)
	return nil
}

func axiomIDs(pm *codelayer.ParsedMessage) []string {
	ids := make([]string, 0, len(pm.Axioms))
	for _, a := range pm.Axioms {
		ids = append(ids, a.ID)
	}
	return ids
}
