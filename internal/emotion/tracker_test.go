package emotion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/alicebob/miniredis/v2/server.(*Server).servePeer"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type scriptedClassifier struct {
	mu      sync.Mutex
	results []Classification
	err     error
	calls   []ClassifyRequest
}

func (s *scriptedClassifier) Classify(_ context.Context, req ClassifyRequest) (Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return Classification{}, s.err
	}
	if len(s.results) == 0 {
		return Classification{CurrentEmotion: "neutral"}, nil
	}
	c := s.results[0]
	s.results = s.results[1:]
	return c, nil
}

type recordingObserver struct {
	mu    sync.Mutex
	seen  []Analysis
	rooms []string
}

func (o *recordingObserver) ObserveEmotion(roomID string, a Analysis) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rooms = append(o.rooms, roomID)
	o.seen = append(o.seen, a)
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", &bytes.Buffer{})
}

func TestTracker_AnalyzeUpdatesState(t *testing.T) {
	cls := &scriptedClassifier{results: []Classification{
		{CurrentEmotion: "frustrated", StressLevel: 60, Triggers: []string{"schedule change"}, ConversationEmotion: "tense", Confidence: 80},
		{CurrentEmotion: "calm", StressLevel: 20, ConversationEmotion: "neutral", Confidence: 70},
	}}
	obs := &recordingObserver{}
	tr := NewTracker(WithClassifier(cls), WithObserver(obs), WithLogger(quietLogger()), WithClock(func() time.Time { return t0 }))
	ctx := context.Background()

	a := tr.Analyze(ctx, Message{Sender: "alex", Text: "You changed it again"}, nil, "room-1")
	assert.False(t, a.Degraded)
	assert.Equal(t, EmotionFrustrated, a.Participant.CurrentEmotion)
	assert.Equal(t, 60, a.Participant.StressLevel)
	assert.Equal(t, 80, a.Participant.EmotionalMomentum)
	assert.Equal(t, DirectionIncreasing, a.Participant.StressTrajectory)
	assert.Equal(t, []string{"schedule change"}, a.Participant.RecentTriggers)
	assert.Equal(t, ConversationTense, a.Conversation.Emotion)
	assert.InDelta(t, 0.6*60+0.4*80, a.Conversation.EscalationRisk, 0.001)
	assert.Equal(t, 80, a.Confidence)

	b := tr.Analyze(ctx, Message{Sender: "sam", Text: "Sure, that works"}, []Message{{Sender: "alex", Text: "You changed it again"}}, "room-1")
	assert.Equal(t, EmotionCalm, b.Participant.CurrentEmotion)
	assert.InDelta(t, 0.6*40+0.4*80, b.Conversation.EscalationRisk, 0.001)

	require.Len(t, cls.calls, 2)
	assert.Len(t, cls.calls[1].Recent, 1)
	assert.Equal(t, EmotionNeutral, cls.calls[1].Previous.CurrentEmotion)
	assert.Len(t, obs.seen, 2)

	snap := tr.Trajectory(ctx, "room-1")
	require.NotNil(t, snap)
	assert.Len(t, snap.Participants, 2)
	assert.Equal(t, t0, snap.LastUpdated)
}

func TestTracker_DegradesToNeutral(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		opts []Option
	}{
		{"no classifier", nil},
		{"classifier error", []Option{WithClassifier(&scriptedClassifier{err: errors.New("rate limited")})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := append([]Option{WithLogger(logging.NewWithWriter("warn", &buf))}, tt.opts...)
			tr := NewTracker(opts...)

			a := tr.Analyze(ctx, Message{Sender: "alex", Text: "whatever"}, nil, "room-1")
			assert.True(t, a.Degraded)
			assert.Equal(t, EmotionNeutral, a.Participant.CurrentEmotion)
			assert.Zero(t, a.Participant.StressLevel)
			assert.Zero(t, a.Conversation.EscalationRisk)
			assert.Zero(t, a.Confidence)
			assert.Contains(t, buf.String(), "neutral default")

			snap := tr.Trajectory(ctx, "room-1")
			require.NotNil(t, snap, "the room exists once a message was seen")
			assert.Equal(t, EmotionNeutral, snap.Participants["alex"].CurrentEmotion)
		})
	}
}

func TestTracker_ClassifierTimeout(t *testing.T) {
	slow := classifierFunc(func(ctx context.Context, _ ClassifyRequest) (Classification, error) {
		<-ctx.Done()
		return Classification{}, ctx.Err()
	})
	tr := NewTracker(WithClassifier(slow), WithClassifierTimeout(10*time.Millisecond), WithLogger(quietLogger()))
	a := tr.Analyze(context.Background(), Message{Sender: "alex", Text: "hi"}, nil, "room-1")
	assert.True(t, a.Degraded)
}

type classifierFunc func(context.Context, ClassifyRequest) (Classification, error)

func (f classifierFunc) Classify(ctx context.Context, req ClassifyRequest) (Classification, error) {
	return f(ctx, req)
}

func TestTracker_TrajectoryUnknownRoom(t *testing.T) {
	assert.Nil(t, NewTracker().Trajectory(context.Background(), "nope"))
}

func TestTracker_Reset(t *testing.T) {
	ctx := context.Background()
	cls := &scriptedClassifier{results: []Classification{
		{CurrentEmotion: "angry", StressLevel: 80},
		{CurrentEmotion: "frustrated", StressLevel: 50},
	}}
	tr := NewTracker(WithClassifier(cls), WithLogger(quietLogger()))
	tr.Analyze(ctx, Message{Sender: "alex", Text: "x"}, nil, "room-1")
	tr.Analyze(ctx, Message{Sender: "sam", Text: "y"}, nil, "room-1")

	tr.Reset(ctx, "room-1", "")
	snap := tr.Trajectory(ctx, "room-1")
	assert.Equal(t, 65, snap.Participants["alex"].StressLevel)
	assert.Equal(t, 35, snap.Participants["sam"].StressLevel)

	tr.Reset(ctx, "room-1", "alex")
	snap = tr.Trajectory(ctx, "room-1")
	assert.Equal(t, 45, snap.Participants["alex"].StressLevel)
	assert.Equal(t, 35, snap.Participants["sam"].StressLevel)

	for range 10 {
		tr.Reset(ctx, "room-1", "")
	}
	snap = tr.Trajectory(ctx, "room-1")
	assert.Zero(t, snap.Participants["alex"].StressLevel)
	assert.GreaterOrEqual(t, snap.EscalationRisk, 0.0)

	tr.Reset(ctx, "missing-room", "")
	assert.Nil(t, tr.Trajectory(ctx, "missing-room"))
}

func TestTracker_CustomDecay(t *testing.T) {
	ctx := context.Background()
	cls := &scriptedClassifier{results: []Classification{{CurrentEmotion: "angry", StressLevel: 80}}}
	tr := NewTracker(WithClassifier(cls), WithDecay(Decay{RoomStress: 30, ParticipantStress: 5, Momentum: 0}), WithLogger(quietLogger()))
	tr.Analyze(ctx, Message{Sender: "alex", Text: "x"}, nil, "room-1")
	tr.Reset(ctx, "room-1", "")
	assert.Equal(t, 50, tr.Trajectory(ctx, "room-1").Participants["alex"].StressLevel)
}

func TestTracker_SerializesPerRoom(t *testing.T) {
	var inFlight, peak int32
	cls := classifierFunc(func(context.Context, ClassifyRequest) (Classification, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return Classification{CurrentEmotion: "frustrated", StressLevel: 40}, nil
	})
	tr := NewTracker(WithClassifier(cls), WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sender := "alex"
			if i%2 == 0 {
				sender = "sam"
			}
			tr.Analyze(context.Background(), Message{Sender: sender, Text: "m"}, nil, "room-1")
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))

	snap := tr.Trajectory(context.Background(), "room-1")
	require.NotNil(t, snap)
	assert.Len(t, snap.Participants, 2)
}

func TestTracker_BoundsHoldUnderRandomUpdates(t *testing.T) {
	ctx := context.Background()
	levels := []int{-40, 0, 130, 55, 99, 101, 12, 77, -1, 100}
	emotions := []string{"angry", "calm", "", "anxious", "defensive"}
	var results []Classification
	for i, l := range levels {
		results = append(results, Classification{CurrentEmotion: emotions[i%len(emotions)], StressLevel: l, Confidence: 150})
	}
	tr := NewTracker(WithClassifier(&scriptedClassifier{results: results}), WithLogger(quietLogger()))
	for i := range levels {
		sender := []string{"alex", "sam"}[i%2]
		a := tr.Analyze(ctx, Message{Sender: sender, Text: "m"}, nil, "room-1")
		assert.GreaterOrEqual(t, a.Participant.StressLevel, 0)
		assert.LessOrEqual(t, a.Participant.StressLevel, 100)
		assert.GreaterOrEqual(t, a.Conversation.EscalationRisk, 0.0)
		assert.LessOrEqual(t, a.Conversation.EscalationRisk, 100.0)
		assert.LessOrEqual(t, a.Confidence, 100)
		if i%3 == 0 {
			tr.Reset(ctx, "room-1", sender)
		}
	}
}

func TestTracker_PersistsThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	store := NewRedisStore(client, time.Hour)
	cls := &scriptedClassifier{results: []Classification{{CurrentEmotion: "angry", StressLevel: 80, ConversationEmotion: "escalating"}}}
	first := NewTracker(WithClassifier(cls), WithStore(store), WithLogger(quietLogger()))
	first.Analyze(ctx, Message{Sender: "alex", Text: "x"}, nil, "room-1")
	assert.True(t, mr.Exists("emotion:room:room-1"))
	assert.Equal(t, time.Hour, mr.TTL("emotion:room:room-1"))

	second := NewTracker(WithStore(store), WithLogger(quietLogger()))
	snap := second.Trajectory(ctx, "room-1")
	require.NotNil(t, snap)
	assert.Equal(t, 80, snap.Participants["alex"].StressLevel)
	assert.Equal(t, ConversationEscalating, snap.ConversationEmotion)

	second.Reset(ctx, "room-1", "alex")
	third := NewTracker(WithStore(store), WithLogger(quietLogger()))
	assert.Equal(t, 60, third.Trajectory(ctx, "room-1").Participants["alex"].StressLevel)

	require.NoError(t, third.Forget(ctx, "room-1"))
	assert.False(t, mr.Exists("emotion:room:room-1"))
	assert.Nil(t, third.Trajectory(ctx, "room-1"))
}

func TestTracker_UnknownRoomsStayOutOfMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	tr := NewTracker(WithStore(NewRedisStore(client, time.Hour)), WithLogger(quietLogger()))
	for i := 0; i < 50; i++ {
		room := fmt.Sprintf("ghost-%d", i)
		assert.Nil(t, tr.Trajectory(ctx, room))
		tr.Reset(ctx, room, "")
		tr.Reset(ctx, room, "alex")
	}
	assert.Empty(t, tr.rooms)
	assert.Empty(t, mr.Keys())

	seed := NewTracker(
		WithClassifier(&scriptedClassifier{results: []Classification{{CurrentEmotion: "angry", StressLevel: 80}}}),
		WithStore(NewRedisStore(client, time.Hour)),
		WithLogger(quietLogger()),
	)
	seed.Analyze(ctx, Message{Sender: "alex", Text: "x"}, nil, "room-1")
	require.NotNil(t, tr.Trajectory(ctx, "room-1"))
	assert.Len(t, tr.rooms, 1)
}

func TestTracker_StoreFailureIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	var buf bytes.Buffer
	tr := NewTracker(
		WithClassifier(&scriptedClassifier{results: []Classification{{CurrentEmotion: "angry", StressLevel: 70}}}),
		WithStore(NewRedisStore(client, time.Hour)),
		WithLogger(logging.NewWithWriter("warn", &buf)),
	)
	a := tr.Analyze(context.Background(), Message{Sender: "alex", Text: "x"}, nil, "room-1")
	assert.Equal(t, 70, a.Participant.StressLevel, "state still updates in memory")
	assert.Contains(t, buf.String(), "emotion state load failed")
	assert.Contains(t, buf.String(), "emotion state save failed")
}
