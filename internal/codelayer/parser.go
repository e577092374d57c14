package codelayer

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

var parserTracer = otel.Tracer("coparent.internal.codelayer")

const defaultBatchConcurrency = 8

// Observer receives every finished parse. The metrics package implements it.
type Observer interface {
	ObserveParse(pm *ParsedMessage)
}

// Parser runs the full pipeline. It holds no per-message state and is safe
// for concurrent use.
type Parser struct {
	registry    *Registry
	thresholds  Thresholds
	logger      *logging.Logger
	observer    Observer
	warnLatency time.Duration
	concurrency int
}

// Option configures a Parser.
type Option func(*Parser)

func WithRegistry(r *Registry) Option {
	return func(p *Parser) {
		if r != nil {
			p.registry = r
		}
	}
}

func WithThresholds(th Thresholds) Option {
	return func(p *Parser) { p.thresholds = th }
}

func WithLogger(l *logging.Logger) Option {
	return func(p *Parser) { p.logger = logging.OrDefault(l) }
}

func WithObserver(o Observer) Option {
	return func(p *Parser) { p.observer = o }
}

// WithWarnLatency logs a warning when a parse takes longer than d. Zero
// disables the warning.
func WithWarnLatency(d time.Duration) Option {
	return func(p *Parser) { p.warnLatency = d }
}

// WithBatchConcurrency bounds the goroutines used by ParseBatch.
func WithBatchConcurrency(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewParser builds a parser over the default rule library unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		registry:    DefaultRegistry(),
		thresholds:  DefaultThresholds(),
		logger:      logging.Default(),
		warnLatency: 100 * time.Millisecond,
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the rule registry in use.
func (p *Parser) Registry() *Registry { return p.registry }

// Parse analyzes one message. It never returns nil and never panics; a
// failure inside a stage is recorded in Meta and the result defaults to
// transmit.
func (p *Parser) Parse(ctx context.Context, msg Message, pctx ParsingContext) (pm *ParsedMessage) {
	_, span := parserTracer.Start(ctx, "codelayer.parse")
	defer span.End()

	if pctx.SenderID == "" {
		pctx.SenderID = msg.SenderID
	}
	pm = emptyParse(msg, pctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			pm.Meta.Error = true
			pm.Meta.ErrorMessage = fmt.Sprint(r)
			pm.Assessment = defaultAssessment()
			span.SetStatus(codes.Error, pm.Meta.ErrorMessage)
			p.logger.Error("codelayer: parse panicked",
				"error", pm.Meta.ErrorMessage,
				"sender_id", pm.SenderID,
				"stack", string(debug.Stack()),
			)
		}
		pm.Meta.Latency = time.Since(start)
		span.SetAttributes(
			attribute.String("codelayer.conflict", string(pm.Assessment.ConflictPotential)),
			attribute.Bool("codelayer.transmit", pm.Assessment.Transmit),
			attribute.Int("codelayer.axioms_fired", len(pm.Axioms)),
		)
		if p.warnLatency > 0 && pm.Meta.Latency > p.warnLatency {
			p.logger.Warn("codelayer: slow parse",
				"latency_ms", pm.Meta.Latency.Milliseconds(),
				"threshold_ms", p.warnLatency.Milliseconds(),
				"chars", len(msg.Text),
			)
		}
		if p.observer != nil {
			p.observer.ObserveParse(pm)
		}
	}()

	text := textmatch.Normalize(msg.Text)
	if text == "" {
		return pm
	}

	stage := time.Now()
	tokens := Tokenize(text)
	pm.Meta.Stages.Tokenize = time.Since(stage)

	stage = time.Now()
	pm.Linguistic = DetectMarkers(text, tokens)
	pm.Meta.Stages.Markers = time.Since(stage)

	stage = time.Now()
	pm.Conceptual = MapPrimitives(text, tokens, pm.Linguistic, pctx)
	pm.Meta.Stages.Primitives = time.Since(stage)

	stage = time.Now()
	pm.Vector = IdentifyVector(text, pm.Conceptual, pm.Linguistic, pctx)
	pm.Meta.Stages.Vector = time.Since(stage)

	stage = time.Now()
	pm.Axioms = p.registry.Check(&Input{
		Text:       strings.ToLower(text),
		Tokens:     tokens,
		Markers:    pm.Linguistic,
		Primitives: pm.Conceptual,
		Vector:     pm.Vector,
		Context:    pctx,
		SentAt:     msg.Timestamp,
	})
	pm.Meta.Stages.Axioms = time.Since(stage)

	stage = time.Now()
	pm.Assessment = Assess(pm.Axioms, pm.Vector, p.thresholds)
	pm.Meta.Stages.Assessment = time.Since(stage)
	return pm
}

// ParseBatch parses messages in parallel and keeps input order. It stops
// early only when ctx is cancelled.
func (p *Parser) ParseBatch(ctx context.Context, msgs []Message, pctx ParsingContext) ([]*ParsedMessage, error) {
	out := make([]*ParsedMessage, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, msg := range msgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = p.Parse(gctx, msg, pctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("codelayer: parse batch: %w", err)
	}
	return out, nil
}

func emptyParse(msg Message, pctx ParsingContext) *ParsedMessage {
	tokens := []Token{}
	return &ParsedMessage{
		Raw:        msg.Text,
		SenderID:   pctx.SenderID,
		Linguistic: DetectMarkers("", tokens),
		Conceptual: MapPrimitives("", tokens, LinguisticMarkers{}, pctx),
		Vector:     IdentifyVector("", ConceptualPrimitives{}, LinguisticMarkers{}, pctx),
		Axioms:     []AxiomResult{},
		Assessment: defaultAssessment(),
		Meta:       Meta{Version: Version},
	}
}

// defaultAssessment is the verdict for empty or failed input.
func defaultAssessment() Assessment {
	return Assessment{
		ConflictPotential: ConflictLow,
		AttackSurface:     []Target{TargetUnclear},
		Deniability:       DeniabilityLow,
		Transmit:          true,
	}
}
