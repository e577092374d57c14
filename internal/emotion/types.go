// Package emotion tracks per-room, per-participant stress across a message
// stream and derives an escalation risk for the mediation layer.
package emotion

import (
	"strings"
	"time"
)

// Emotion is a participant's classified emotional state.
type Emotion string

const (
	EmotionNeutral       Emotion = "neutral"
	EmotionFrustrated    Emotion = "frustrated"
	EmotionCalm          Emotion = "calm"
	EmotionDefensive     Emotion = "defensive"
	EmotionCollaborative Emotion = "collaborative"
	EmotionAnxious       Emotion = "anxious"
	EmotionAngry         Emotion = "angry"
)

var emotions = map[Emotion]struct{}{
	EmotionNeutral: {}, EmotionFrustrated: {}, EmotionCalm: {}, EmotionDefensive: {},
	EmotionCollaborative: {}, EmotionAnxious: {}, EmotionAngry: {},
}

// ParseEmotion normalizes a label; unknown labels read as neutral.
func ParseEmotion(s string) Emotion {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := emotions[e]; ok {
		return e
	}
	return EmotionNeutral
}

// Negative reports whether e counts toward a worsening trend.
func (e Emotion) Negative() bool {
	switch e {
	case EmotionFrustrated, EmotionDefensive, EmotionAngry, EmotionAnxious:
		return true
	}
	return false
}

// ConversationEmotion is the room-level mood.
type ConversationEmotion string

const (
	ConversationNeutral       ConversationEmotion = "neutral"
	ConversationTense         ConversationEmotion = "tense"
	ConversationCollaborative ConversationEmotion = "collaborative"
	ConversationEscalating    ConversationEmotion = "escalating"
)

func parseConversationEmotion(s string) ConversationEmotion {
	switch c := ConversationEmotion(strings.ToLower(strings.TrimSpace(s))); c {
	case ConversationTense, ConversationCollaborative, ConversationEscalating:
		return c
	}
	return ConversationNeutral
}

// Direction is the sign of the latest stress change.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// Trend compares negative emotions in the latest five history entries
// against the five before them.
type Trend string

const (
	TrendWorsening Trend = "worsening"
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
)

// Bounds on per-participant history.
const (
	MaxHistory      = 20
	MaxStressPoints = 10
	MaxTriggers     = 10
	MaxRecent       = 20
	promptRecent    = 10
)

// Message is one chat message fed to the tracker.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Emotion   Emotion   `json:"emotion"`
	Intensity int       `json:"intensity"`
	Triggers  []string  `json:"triggers,omitempty"`
}

type StressPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Trigger   string    `json:"trigger"`
	Intensity int       `json:"intensity"`
}

// ParticipantState is one participant's emotional bookkeeping.
type ParticipantState struct {
	CurrentEmotion    Emotion        `json:"currentEmotion"`
	History           []HistoryEntry `json:"emotionHistory"`
	StressLevel       int            `json:"stressLevel"`
	StressTrajectory  Direction      `json:"stressTrajectory"`
	EmotionalMomentum int            `json:"emotionalMomentum"`
	StressPoints      []StressPoint  `json:"stressPoints"`
	RecentTriggers    []string       `json:"recentTriggers"`
}

func newParticipantState() *ParticipantState {
	return &ParticipantState{
		CurrentEmotion:   EmotionNeutral,
		StressTrajectory: DirectionStable,
		History:          []HistoryEntry{},
		StressPoints:     []StressPoint{},
		RecentTriggers:   []string{},
	}
}

// RoomState is the persisted state for one room.
type RoomState struct {
	Participants        map[string]*ParticipantState `json:"participants"`
	ConversationEmotion ConversationEmotion          `json:"conversationEmotion"`
	EscalationRisk      float64                      `json:"escalationRisk"`
	LastUpdated         time.Time                    `json:"lastUpdated"`
}

func newRoomState(now time.Time) *RoomState {
	return &RoomState{
		Participants:        map[string]*ParticipantState{},
		ConversationEmotion: ConversationNeutral,
		LastUpdated:         now,
	}
}

// Classification is the external judgment of one message.
type Classification struct {
	CurrentEmotion      string   `json:"currentEmotion" jsonschema:"enum=neutral,enum=frustrated,enum=calm,enum=defensive,enum=collaborative,enum=anxious,enum=angry"`
	Intensity           int      `json:"intensity" jsonschema:"minimum=0,maximum=100"`
	StressLevel         int      `json:"stressLevel" jsonschema:"minimum=0,maximum=100"`
	Triggers            []string `json:"triggers"`
	ConversationEmotion string   `json:"conversationEmotion" jsonschema:"enum=neutral,enum=tense,enum=collaborative,enum=escalating"`
	Confidence          int      `json:"confidence" jsonschema:"minimum=0,maximum=100"`
}

// ClassifyRequest is what a Classifier sees.
type ClassifyRequest struct {
	Message  Message
	Recent   []Message
	Previous ParticipantState
}

// ParticipantSummary is the per-message view of a participant.
type ParticipantSummary struct {
	ID                string    `json:"id"`
	CurrentEmotion    Emotion   `json:"currentEmotion"`
	StressLevel       int       `json:"stressLevel"`
	StressTrajectory  Direction `json:"stressTrajectory"`
	EmotionalMomentum int       `json:"emotionalMomentum"`
	RecentTriggers    []string  `json:"recentTriggers"`
}

type ConversationSummary struct {
	Emotion        ConversationEmotion `json:"emotion"`
	EscalationRisk float64             `json:"escalationRisk"`
}

// Analysis is the result of Tracker.Analyze. Degraded marks the neutral
// default returned when classification was unavailable.
type Analysis struct {
	Participant  ParticipantSummary  `json:"participant"`
	Conversation ConversationSummary `json:"conversation"`
	Confidence   int                 `json:"confidence"`
	Degraded     bool                `json:"degraded,omitempty"`
}

// ParticipantTrajectory is a participant's entry in a Snapshot.
type ParticipantTrajectory struct {
	CurrentEmotion     Emotion       `json:"currentEmotion"`
	StressLevel        int           `json:"stressLevel"`
	StressTrajectory   Direction     `json:"stressTrajectory"`
	EmotionalMomentum  int           `json:"emotionalMomentum"`
	RecentStressPoints []StressPoint `json:"recentStressPoints"`
	Trend              Trend         `json:"emotionTrend"`
}

// Snapshot is a read-only copy of a room's trajectory.
type Snapshot struct {
	Participants        map[string]ParticipantTrajectory `json:"participants"`
	ConversationEmotion ConversationEmotion              `json:"conversationEmotion"`
	EscalationRisk      float64                          `json:"escalationRisk"`
	LastUpdated         time.Time                        `json:"lastUpdated"`
}
