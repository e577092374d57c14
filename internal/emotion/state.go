package emotion

import (
	"strings"
	"time"
)

const (
	momentumPerEmotionChange = 20
	stressPointThreshold     = 50
	stressWeight             = 0.6
	momentumWeight           = 0.4
)

func (r *RoomState) participant(id string) *ParticipantState {
	if r.Participants == nil {
		r.Participants = map[string]*ParticipantState{}
	}
	p, ok := r.Participants[id]
	if !ok {
		p = newParticipantState()
		r.Participants[id] = p
	}
	return p
}

// apply folds one classification into the participant and the room.
func (r *RoomState) apply(id string, c Classification, deadband int, now time.Time) *ParticipantState {
	p := r.participant(id)
	prevStress, prevEmotion := p.StressLevel, p.CurrentEmotion

	emotion := ParseEmotion(c.CurrentEmotion)
	stress := clampInt(c.StressLevel)
	triggers := cleanTriggers(c.Triggers)

	p.CurrentEmotion = emotion
	p.StressLevel = stress
	p.StressTrajectory = direction(stress-prevStress, deadband)

	momentum := absInt(stress - prevStress)
	if emotion != prevEmotion {
		momentum += momentumPerEmotionChange
	}
	p.EmotionalMomentum = min(100, momentum)

	p.History = appendBounded(p.History, HistoryEntry{
		Timestamp: now,
		Emotion:   emotion,
		Intensity: clampInt(c.Intensity),
		Triggers:  triggers,
	}, MaxHistory)

	if stress > stressPointThreshold || len(triggers) > 0 {
		trigger := strings.Join(triggers, ", ")
		if trigger == "" {
			trigger = "general stress"
		}
		p.StressPoints = appendBounded(p.StressPoints, StressPoint{
			Timestamp: now,
			Trigger:   trigger,
			Intensity: stress,
		}, MaxStressPoints)
	}
	for _, t := range triggers {
		p.RecentTriggers = appendBounded(p.RecentTriggers, t, MaxTriggers)
	}

	r.ConversationEmotion = parseConversationEmotion(c.ConversationEmotion)
	r.recomputeRisk()
	r.LastUpdated = now
	return p
}

// decay lowers stress and momentum after an accepted intervention. An empty
// participant decays the whole room by roomStress. It reports whether any
// state changed.
func (r *RoomState) decay(participant string, roomStress, participantStress, momentum int) bool {
	if participant != "" {
		p, ok := r.Participants[participant]
		if !ok {
			return false
		}
		p.StressLevel = max(0, p.StressLevel-participantStress)
		p.EmotionalMomentum = max(0, p.EmotionalMomentum-momentum)
	} else {
		for _, p := range r.Participants {
			p.StressLevel = max(0, p.StressLevel-roomStress)
			p.EmotionalMomentum = max(0, p.EmotionalMomentum-momentum)
		}
	}
	r.recomputeRisk()
	return true
}

// recomputeRisk sets EscalationRisk from mean stress and peak momentum.
func (r *RoomState) recomputeRisk() {
	if len(r.Participants) == 0 {
		r.EscalationRisk = 0
		return
	}
	var sum, maxMomentum int
	for _, p := range r.Participants {
		sum += p.StressLevel
		maxMomentum = max(maxMomentum, p.EmotionalMomentum)
	}
	mean := float64(sum) / float64(len(r.Participants))
	risk := stressWeight*mean + momentumWeight*float64(maxMomentum)
	r.EscalationRisk = min(100, max(0, risk))
}

func (r *RoomState) snapshot() *Snapshot {
	s := &Snapshot{
		Participants:        make(map[string]ParticipantTrajectory, len(r.Participants)),
		ConversationEmotion: r.ConversationEmotion,
		EscalationRisk:      r.EscalationRisk,
		LastUpdated:         r.LastUpdated,
	}
	for id, p := range r.Participants {
		s.Participants[id] = ParticipantTrajectory{
			CurrentEmotion:     p.CurrentEmotion,
			StressLevel:        p.StressLevel,
			StressTrajectory:   p.StressTrajectory,
			EmotionalMomentum:  p.EmotionalMomentum,
			RecentStressPoints: tail(p.StressPoints, 5),
			Trend:              trend(p.History),
		}
	}
	return s
}

func (p *ParticipantState) summary(id string) ParticipantSummary {
	return ParticipantSummary{
		ID:                id,
		CurrentEmotion:    p.CurrentEmotion,
		StressLevel:       p.StressLevel,
		StressTrajectory:  p.StressTrajectory,
		EmotionalMomentum: p.EmotionalMomentum,
		RecentTriggers:    tail(p.RecentTriggers, 3),
	}
}

func (p *ParticipantState) clone() ParticipantState {
	c := *p
	c.History = append([]HistoryEntry(nil), p.History...)
	c.StressPoints = append([]StressPoint(nil), p.StressPoints...)
	c.RecentTriggers = append([]string(nil), p.RecentTriggers...)
	return c
}

func trend(history []HistoryEntry) Trend {
	if len(history) < 3 {
		return TrendStable
	}
	split := max(0, len(history)-5)
	earlierFrom := max(0, len(history)-10)
	recent := countNegative(history[split:])
	earlier := countNegative(history[earlierFrom:split])
	switch {
	case recent > earlier:
		return TrendWorsening
	case recent < earlier:
		return TrendImproving
	}
	return TrendStable
}

func countNegative(entries []HistoryEntry) int {
	n := 0
	for _, e := range entries {
		if e.Emotion.Negative() {
			n++
		}
	}
	return n
}

func direction(delta, deadband int) Direction {
	switch {
	case delta > deadband:
		return DirectionIncreasing
	case delta < -deadband:
		return DirectionDecreasing
	}
	return DirectionStable
}

func cleanTriggers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return append([]T{}, s...)
}

func clampInt(v int) int {
	return min(100, max(0, v))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
