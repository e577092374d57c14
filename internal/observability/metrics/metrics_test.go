package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
)

var (
	_ codelayer.Observer = (*MediationMetrics)(nil)
	_ emotion.Observer   = (*MediationMetrics)(nil)
)

func TestMediationMetrics_ObserveParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMediationMetrics(reg)
	p := codelayer.NewParser(codelayer.WithObserver(m))

	p.Parse(context.Background(), codelayer.Message{Text: "you suck"}, codelayer.ParsingContext{})
	p.Parse(context.Background(), codelayer.Message{Text: "Can we schedule pickup for Friday?"}, codelayer.ParsingContext{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.parsesTotal.WithLabelValues("high", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parsesTotal.WithLabelValues("low", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.axiomsFired.WithLabelValues("AXIOM_D101", "direct")))
	assert.Zero(t, testutil.ToFloat64(m.parseErrors))

	families, err := reg.Gather()
	require.NoError(t, err)
	var stages *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "coparent_codelayer_stage_latency_seconds" {
			stages = f
		}
	}
	require.NotNil(t, stages)
	assert.Len(t, stages.GetMetric(), 6)
	for _, metric := range stages.GetMetric() {
		assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
	}
}

func TestMediationMetrics_ObserveEmotion(t *testing.T) {
	m := NewMediationMetrics(prometheus.NewRegistry())
	m.ObserveEmotion("room-1", emotion.Analysis{Conversation: emotion.ConversationSummary{EscalationRisk: 42}})
	m.ObserveEmotion("room-1", emotion.Analysis{Degraded: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.emotionTotal.WithLabelValues("classified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emotionTotal.WithLabelValues("degraded")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.escalationRisk))
}

func TestMediationMetrics_Counters(t *testing.T) {
	m := NewMediationMetrics(prometheus.NewRegistry())
	m.ObserveQuickPass("clean_message", true)
	m.ObserveValidation("receiver_perspective_detected", false)
	m.ObserveValidation("receiver_perspective_detected", false)
	m.ObserveFallback("attack")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.quickPassTotal.WithLabelValues("clean_message", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validationTotal.WithLabelValues("receiver_perspective_detected", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbackTotal.WithLabelValues("attack")))
}

func TestMediationMetrics_DefaultRegistry(t *testing.T) {
	m := NewMediationMetrics(nil)
	t.Cleanup(func() {
		prometheus.DefaultRegisterer.Unregister(m.parsesTotal)
		prometheus.DefaultRegisterer.Unregister(m.parseErrors)
		prometheus.DefaultRegisterer.Unregister(m.axiomsFired)
		prometheus.DefaultRegisterer.Unregister(m.stageLatency)
		prometheus.DefaultRegisterer.Unregister(m.quickPassTotal)
		prometheus.DefaultRegisterer.Unregister(m.validationTotal)
		prometheus.DefaultRegisterer.Unregister(m.fallbackTotal)
		prometheus.DefaultRegisterer.Unregister(m.emotionTotal)
		prometheus.DefaultRegisterer.Unregister(m.escalationRisk)
	})
	m.ObserveFallback("generic")
}

func TestMediationMetrics_NilSafe(t *testing.T) {
	var m *MediationMetrics
	m.ObserveParse(&codelayer.ParsedMessage{})
	m.ObserveQuickPass("x", false)
	m.ObserveValidation("x", true)
	m.ObserveFallback("x")
	m.ObserveEmotion("room", emotion.Analysis{})
}
