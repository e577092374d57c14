package mediation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// Event is one structured decision record. All events share the same base
// fields so they can be filtered with grep:
//
//	grep '"event":"fallback_used"' /var/log/app.log
//	grep '"room_id":"room_abc"' /var/log/app.log
type Event struct {
	Time     string         `json:"time"`
	Event    string         `json:"event"`
	RoomID   string         `json:"room_id"`
	SenderID string         `json:"sender_id,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// EventLogger emits one JSON line per decision point.
type EventLogger struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewEventLogger(logger *logging.Logger) *EventLogger {
	return &EventLogger{logger: logger, now: time.Now}
}

func (e *EventLogger) Log(_ context.Context, event, roomID, senderID string, data map[string]any) {
	if e == nil || e.logger == nil {
		return
	}
	b, _ := json.Marshal(Event{
		Time:     e.now().UTC().Format(time.RFC3339Nano),
		Event:    event,
		RoomID:   roomID,
		SenderID: senderID,
		Data:     data,
	})
	e.logger.Info(string(b))
}

func (e *EventLogger) MessageParsed(ctx context.Context, roomID, senderID string, conflict string, transmit bool, axioms []string, latencyMs float64) {
	e.Log(ctx, "message_parsed", roomID, senderID, map[string]any{
		"conflict":   conflict,
		"transmit":   transmit,
		"axioms":     axioms,
		"latency_ms": latencyMs,
	})
}

func (e *EventLogger) QuickPassed(ctx context.Context, roomID, senderID, reason string) {
	e.Log(ctx, "quick_passed", roomID, senderID, map[string]any{"reason": reason})
}

func (e *EventLogger) EmotionAnalyzed(ctx context.Context, roomID, senderID, current string, risk float64, degraded bool) {
	e.Log(ctx, "emotion_analyzed", roomID, senderID, map[string]any{
		"emotion":         current,
		"escalation_risk": risk,
		"degraded":        degraded,
	})
}

func (e *EventLogger) InterventionValidated(ctx context.Context, roomID, senderID string, valid, anyFailed, bothFailed bool, responseErrors []string) {
	e.Log(ctx, "intervention_validated", roomID, senderID, map[string]any{
		"valid":           valid,
		"any_failed":      anyFailed,
		"both_failed":     bothFailed,
		"response_errors": responseErrors,
	})
}

func (e *EventLogger) FallbackUsed(ctx context.Context, roomID, senderID, category, reason string) {
	e.Log(ctx, "fallback_used", roomID, senderID, map[string]any{
		"category": category,
		"reason":   reason,
	})
}

func (e *EventLogger) EmotionReset(ctx context.Context, roomID, participant string) {
	e.Log(ctx, "emotion_reset", roomID, participant, nil)
}

func (e *EventLogger) ErrorOccurred(ctx context.Context, roomID, senderID, step string, err error) {
	e.Log(ctx, "error", roomID, senderID, map[string]any{
		"step":  step,
		"error": err.Error(),
	})
}
