package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
)

// MediationMetrics exposes counters/histograms for the mediation pipeline.
// It implements codelayer.Observer and emotion.Observer.
type MediationMetrics struct {
	parsesTotal     *prometheus.CounterVec
	parseErrors     prometheus.Counter
	axiomsFired     *prometheus.CounterVec
	stageLatency    *prometheus.HistogramVec
	quickPassTotal  *prometheus.CounterVec
	validationTotal *prometheus.CounterVec
	fallbackTotal   *prometheus.CounterVec
	emotionTotal    *prometheus.CounterVec
	escalationRisk  prometheus.Histogram
}

func NewMediationMetrics(reg prometheus.Registerer) *MediationMetrics {
	m := &MediationMetrics{
		parsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "codelayer",
			Name:      "parses_total",
			Help:      "Parsed messages by conflict potential and transmit decision",
		}, []string{"conflict", "transmit"}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "codelayer",
			Name:      "parse_errors_total",
			Help:      "Parses that recovered from an internal error",
		}),
		axiomsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "codelayer",
			Name:      "axioms_fired_total",
			Help:      "Fired axioms by id and category",
		}, []string{"axiom_id", "category"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coparent",
			Subsystem: "codelayer",
			Name:      "stage_latency_seconds",
			Help:      "Latency of each pipeline stage",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"stage"}),
		quickPassTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "mediation",
			Name:      "quick_pass_total",
			Help:      "Quick pass decisions by reason",
		}, []string{"reason", "passed"}),
		validationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "rewrite",
			Name:      "validations_total",
			Help:      "Rewrite perspective validations by reason",
		}, []string{"reason", "valid"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "rewrite",
			Name:      "fallbacks_total",
			Help:      "Fallback templates served by category",
		}, []string{"category"}),
		emotionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coparent",
			Subsystem: "emotion",
			Name:      "analyses_total",
			Help:      "Emotion analyses by outcome",
		}, []string{"outcome"}),
		escalationRisk: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coparent",
			Subsystem: "emotion",
			Name:      "escalation_risk",
			Help:      "Room escalation risk after each analysis",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.parsesTotal, m.parseErrors, m.axiomsFired, m.stageLatency,
		m.quickPassTotal, m.validationTotal, m.fallbackTotal,
		m.emotionTotal, m.escalationRisk,
	)
	return m
}

func (m *MediationMetrics) ObserveParse(pm *codelayer.ParsedMessage) {
	if m == nil || pm == nil {
		return
	}
	m.parsesTotal.WithLabelValues(string(pm.Assessment.ConflictPotential), strconv.FormatBool(pm.Assessment.Transmit)).Inc()
	if pm.Meta.Error {
		m.parseErrors.Inc()
	}
	for _, a := range pm.Axioms {
		m.axiomsFired.WithLabelValues(a.ID, string(a.Category)).Inc()
	}
	stages := pm.Meta.Stages
	for stage, d := range map[string]float64{
		"tokenize":   stages.Tokenize.Seconds(),
		"markers":    stages.Markers.Seconds(),
		"primitives": stages.Primitives.Seconds(),
		"vector":     stages.Vector.Seconds(),
		"axioms":     stages.Axioms.Seconds(),
		"assessment": stages.Assessment.Seconds(),
	} {
		m.stageLatency.WithLabelValues(stage).Observe(d)
	}
}

func (m *MediationMetrics) ObserveQuickPass(reason string, passed bool) {
	if m == nil {
		return
	}
	m.quickPassTotal.WithLabelValues(reason, strconv.FormatBool(passed)).Inc()
}

func (m *MediationMetrics) ObserveValidation(reason string, valid bool) {
	if m == nil {
		return
	}
	m.validationTotal.WithLabelValues(reason, strconv.FormatBool(valid)).Inc()
}

func (m *MediationMetrics) ObserveFallback(category string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(category).Inc()
}

func (m *MediationMetrics) ObserveEmotion(_ string, a emotion.Analysis) {
	if m == nil {
		return
	}
	outcome := "classified"
	if a.Degraded {
		outcome = "degraded"
	}
	m.emotionTotal.WithLabelValues(outcome).Inc()
	if !a.Degraded {
		m.escalationRisk.Observe(a.Conversation.EscalationRisk)
	}
}
