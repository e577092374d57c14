package emotion

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

var trackerTracer = otel.Tracer("coparent.internal.emotion")

// ErrNoClassifier is logged when Analyze runs without a classifier.
var ErrNoClassifier = errors.New("emotion: no classifier configured")

// Classifier judges the emotion carried by one message.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (Classification, error)
}

// Store persists room state across processes. Load returns nil, nil for an
// unknown room.
type Store interface {
	Load(ctx context.Context, roomID string) (*RoomState, error)
	Save(ctx context.Context, roomID string, state *RoomState) error
	Delete(ctx context.Context, roomID string) error
}

// Observer receives every analysis. Metrics implement it.
type Observer interface {
	ObserveEmotion(roomID string, a Analysis)
}

// Decay amounts applied by Reset.
type Decay struct {
	RoomStress        int
	ParticipantStress int
	Momentum          int
}

// DefaultDecay returns the standard post-intervention decay.
func DefaultDecay() Decay {
	return Decay{RoomStress: 15, ParticipantStress: 20, Momentum: 10}
}

type roomEntry struct {
	mu     sync.Mutex
	state  *RoomState
	loaded bool
}

// Tracker owns the per-room emotional state. Updates to one room are
// serialized; different rooms proceed in parallel.
type Tracker struct {
	mu    sync.Mutex
	rooms map[string]*roomEntry

	classifier Classifier
	store      Store
	observer   Observer
	logger     *logging.Logger
	decay      Decay
	deadband   int
	timeout    time.Duration
	now        func() time.Time
}

type Option func(*Tracker)

func WithClassifier(c Classifier) Option { return func(t *Tracker) { t.classifier = c } }

func WithStore(s Store) Option { return func(t *Tracker) { t.store = s } }

func WithObserver(o Observer) Option { return func(t *Tracker) { t.observer = o } }

func WithLogger(l *logging.Logger) Option { return func(t *Tracker) { t.logger = l } }

func WithDecay(d Decay) Option { return func(t *Tracker) { t.decay = d } }

// WithDeadband sets the stress change below which the trajectory is stable.
func WithDeadband(n int) Option {
	return func(t *Tracker) {
		if n >= 0 {
			t.deadband = n
		}
	}
}

// WithClassifierTimeout bounds each classification call.
func WithClassifierTimeout(d time.Duration) Option { return func(t *Tracker) { t.timeout = d } }

func WithClock(now func() time.Time) Option { return func(t *Tracker) { t.now = now } }

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		rooms:    map[string]*roomEntry{},
		decay:    DefaultDecay(),
		deadband: 5,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.OrDefault(t.logger)
	return t
}

func (t *Tracker) entry(roomID string) *roomEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.rooms[roomID]
	if !ok {
		e = &roomEntry{}
		t.rooms[roomID] = e
	}
	return e
}

// lookup returns the entry for a room only if it exists in memory.
func (t *Tracker) lookup(roomID string) *roomEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rooms[roomID]
}

// resident returns the room's entry, loading it from the store on a miss.
// Rooms the store does not know are never added to memory.
func (t *Tracker) resident(ctx context.Context, roomID string) *roomEntry {
	if e := t.lookup(roomID); e != nil {
		return e
	}
	if t.store == nil {
		return nil
	}
	fresh := &roomEntry{}
	t.hydrate(ctx, roomID, fresh)
	if fresh.state == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.rooms[roomID]; ok {
		return e
	}
	t.rooms[roomID] = fresh
	return fresh
}

// hydrate loads persisted state once. The caller holds e.mu.
func (t *Tracker) hydrate(ctx context.Context, roomID string, e *roomEntry) {
	if e.loaded {
		return
	}
	e.loaded = true
	if t.store == nil {
		return
	}
	state, err := t.store.Load(ctx, roomID)
	if err != nil {
		t.logger.Warn("emotion state load failed", "room_id", roomID, "error", err)
		return
	}
	if state != nil && e.state == nil {
		if state.Participants == nil {
			state.Participants = map[string]*ParticipantState{}
		}
		e.state = state
	}
}

func (t *Tracker) persist(ctx context.Context, roomID string, state *RoomState) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, roomID, state); err != nil {
		t.logger.Warn("emotion state save failed", "room_id", roomID, "error", err)
	}
}

// Analyze classifies msg and folds the result into the room's state. It never
// fails: a missing or failing classifier yields the neutral default and
// leaves stress untouched.
func (t *Tracker) Analyze(ctx context.Context, msg Message, recent []Message, roomID string) Analysis {
	ctx, span := trackerTracer.Start(ctx, "emotion.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("emotion.room_id", roomID))

	e := t.entry(roomID)
	e.mu.Lock()
	defer e.mu.Unlock()

	t.hydrate(ctx, roomID, e)
	if e.state == nil {
		e.state = newRoomState(t.now())
	}
	p := e.state.participant(msg.Sender)

	result, err := t.classify(ctx, msg, recent, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Warn("emotion classification failed, using neutral default",
			"room_id", roomID,
			"sender_id", msg.Sender,
			"error", err,
		)
		a := neutralAnalysis(msg.Sender)
		t.observe(roomID, a)
		return a
	}

	p = e.state.apply(msg.Sender, result, t.deadband, t.now())
	t.persist(ctx, roomID, e.state)

	a := Analysis{
		Participant: p.summary(msg.Sender),
		Conversation: ConversationSummary{
			Emotion:        e.state.ConversationEmotion,
			EscalationRisk: e.state.EscalationRisk,
		},
		Confidence: clampInt(result.Confidence),
	}
	span.SetAttributes(
		attribute.String("emotion.current", string(p.CurrentEmotion)),
		attribute.Float64("emotion.escalation_risk", a.Conversation.EscalationRisk),
	)
	t.observe(roomID, a)
	return a
}

func (t *Tracker) classify(ctx context.Context, msg Message, recent []Message, p *ParticipantState) (Classification, error) {
	if t.classifier == nil {
		return Classification{}, ErrNoClassifier
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.classifier.Classify(ctx, ClassifyRequest{
		Message:  msg,
		Recent:   tail(recent, MaxRecent),
		Previous: p.clone(),
	})
}

func (t *Tracker) observe(roomID string, a Analysis) {
	if t.observer != nil {
		t.observer.ObserveEmotion(roomID, a)
	}
}

func neutralAnalysis(participant string) Analysis {
	return Analysis{
		Participant: ParticipantSummary{
			ID:               participant,
			CurrentEmotion:   EmotionNeutral,
			StressTrajectory: DirectionStable,
			RecentTriggers:   []string{},
		},
		Conversation: ConversationSummary{Emotion: ConversationNeutral},
		Degraded:     true,
	}
}

// Trajectory returns a copy of the room's state, or nil for an unknown room.
func (t *Tracker) Trajectory(ctx context.Context, roomID string) *Snapshot {
	e := t.resident(ctx, roomID)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t.hydrate(ctx, roomID, e)
	if e.state == nil {
		return nil
	}
	return e.state.snapshot()
}

// Reset decays stress after an accepted intervention. An empty participant
// decays the whole room. Unknown rooms and participants are left alone.
func (t *Tracker) Reset(ctx context.Context, roomID, participant string) {
	e := t.resident(ctx, roomID)
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t.hydrate(ctx, roomID, e)
	if e.state == nil {
		return
	}
	if e.state.decay(participant, t.decay.RoomStress, t.decay.ParticipantStress, t.decay.Momentum) {
		t.persist(ctx, roomID, e.state)
		t.logger.Info("emotion state reset",
			"room_id", roomID,
			"participant", participant,
			"escalation_risk", e.state.EscalationRisk,
		)
	}
}

// Forget drops a room from memory and the store.
func (t *Tracker) Forget(ctx context.Context, roomID string) error {
	t.mu.Lock()
	delete(t.rooms, roomID)
	t.mu.Unlock()
	if t.store == nil {
		return nil
	}
	return t.store.Delete(ctx, roomID)
}
