// Package codelayer is the deterministic analysis pipeline that runs on every
// outgoing co-parenting message: tokenize, detect markers, map conceptual
// primitives, identify the communication vector, check axioms and produce a
// transmit/block assessment. It performs no I/O and holds no mutable state,
// so a Parser is safe for concurrent use.
package codelayer

import (
	"encoding/json"
	"time"
)

// Version is stamped on every ParsedMessage.
const Version = "1.2.0"

// POS is a coarse part-of-speech tag.
type POS string

const (
	POSPronoun     POS = "pronoun"
	POSArticle     POS = "article"
	POSPreposition POS = "preposition"
	POSConjunction POS = "conjunction"
	POSAuxiliary   POS = "auxiliary"
	POSVerb        POS = "verb"
	POSAdverb      POS = "adverb"
	POSAdjective   POS = "adjective"
	POSProperNoun  POS = "proper_noun"
	POSNoun        POS = "noun"
)

// Domain is the subject area of a token or a whole message.
type Domain string

const (
	DomainSchedule  Domain = "schedule"
	DomainMoney     Domain = "money"
	DomainParenting Domain = "parenting"
	DomainCharacter Domain = "character"
	DomainLogistics Domain = "logistics"
	DomainGeneral   Domain = "general"
)

// Temporal is the message's tense focus.
type Temporal string

const (
	TemporalPast    Temporal = "past"
	TemporalPresent Temporal = "present"
	TemporalFuture  Temporal = "future"
)

// Epistemic is whether the message asserts, interprets, or neither.
type Epistemic string

const (
	EpistemicFact           Epistemic = "fact"
	EpistemicInterpretation Epistemic = "interpretation"
	EpistemicUnknown        Epistemic = "unknown"
)

// Target is what the message is aimed at on the receiving side.
type Target string

const (
	TargetCharacter  Target = "character"
	TargetCompetence Target = "competence"
	TargetAutonomy   Target = "autonomy"
	TargetParenting  Target = "parenting"
	TargetUnclear    Target = "unclear"
)

// Instrument is what carries the message's pressure. The zero value means
// none and encodes as JSON null.
type Instrument string

const (
	InstrumentNone       Instrument = ""
	InstrumentChild      Instrument = "child"
	InstrumentMoney      Instrument = "money"
	InstrumentSchedule   Instrument = "schedule"
	InstrumentThirdParty Instrument = "thirdParty"
)

func (i Instrument) MarshalJSON() ([]byte, error) {
	if i == InstrumentNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(i))
}

func (i *Instrument) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = InstrumentNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*i = Instrument(s)
	return nil
}

// Aim is the apparent purpose of the message.
type Aim string

const (
	AimAttack  Aim = "attack"
	AimControl Aim = "control"
	AimInform  Aim = "inform"
	AimRequest Aim = "request"
	AimDefend  Aim = "defend"
)

// Category groups axioms.
type Category string

const (
	CategoryClean      Category = "clean"
	CategoryDirect     Category = "direct"
	CategoryIndirect   Category = "indirect"
	CategoryContextual Category = "contextual"
)

// precedence orders categories when confidences tie; lower sorts first.
func (c Category) precedence() int {
	switch c {
	case CategoryDirect:
		return 0
	case CategoryIndirect:
		return 1
	case CategoryContextual:
		return 2
	default:
		return 3
	}
}

// ConflictLevel is the assessment's conflict potential.
type ConflictLevel string

const (
	ConflictLow      ConflictLevel = "low"
	ConflictModerate ConflictLevel = "moderate"
	ConflictHigh     ConflictLevel = "high"
)

// Deniability is how easily the sender could disown the message's intent.
type Deniability string

const (
	DeniabilityLow  Deniability = "low"
	DeniabilityHigh Deniability = "high"
)

// Token is one tagged word. Tokens are values and are never modified after
// Tokenize returns them.
type Token struct {
	Word     string `json:"word"`
	Surface  string `json:"surface"`
	POS      POS    `json:"pos"`
	Position int    `json:"position"`
	// Offset is the byte offset in the normalized text.
	Offset int `json:"offset"`
	// Clause counts sentence and clause boundaries seen before the token.
	Clause        int    `json:"clause"`
	IsAddressee   bool   `json:"isAddressee,omitempty"`
	IsSpeaker     bool   `json:"isSpeaker,omitempty"`
	IsIntensifier bool   `json:"isIntensifier,omitempty"`
	IsSoftener    bool   `json:"isSoftener,omitempty"`
	IsAbsolute    bool   `json:"isAbsolute,omitempty"`
	IsAction      bool   `json:"isAction,omitempty"`
	IsNegation    bool   `json:"isNegation,omitempty"`
	IsThirdParty  bool   `json:"isThirdParty,omitempty"`
	IsChildTerm   bool   `json:"isChildTerm,omitempty"`
	Domain        Domain `json:"domain,omitempty"`
}

// PatternMarker is a multi-token pattern found in the text. Position is a
// byte offset in the normalized text.
type PatternMarker struct {
	Type     string `json:"type"`
	Match    string `json:"match"`
	Position int    `json:"position"`
}

// NegationScope records a negation cue and the words it negates: the rest of
// its clause up to the next conjunction.
type NegationScope struct {
	Cue      string   `json:"cue"`
	Position int      `json:"position"`
	Scope    []string `json:"scope"`
}

// LinguisticMarkers is the output of the marker detector.
type LinguisticMarkers struct {
	Tokens         []Token         `json:"tokens"`
	Softeners      []string        `json:"softeners"`
	Intensifiers   []string        `json:"intensifiers"`
	Absolutes      []string        `json:"absolutes"`
	Patterns       []PatternMarker `json:"patterns"`
	Contrasts      []string        `json:"contrasts"`
	Negations      []string        `json:"negations"`
	NegationScopes []NegationScope `json:"negationScopes"`
}

// HasPattern reports whether a pattern marker of the given type was found.
func (m LinguisticMarkers) HasPattern(kind string) bool {
	for _, p := range m.Patterns {
		if p.Type == kind {
			return true
		}
	}
	return false
}

// Negated reports whether word falls inside any negation scope.
func (m LinguisticMarkers) Negated(word string) bool {
	for _, s := range m.NegationScopes {
		for _, w := range s.Scope {
			if w == word {
				return true
			}
		}
	}
	return false
}

// ConceptualPrimitives is the output of the primitive mapper.
type ConceptualPrimitives struct {
	Speaker         bool      `json:"speaker"`
	Addressee       bool      `json:"addressee"`
	ThirdParty      []string  `json:"thirdParty"`
	ChildReferences []string  `json:"childReferences"`
	Temporal        Temporal  `json:"temporal"`
	Epistemic       Epistemic `json:"epistemic"`
	Domain          Domain    `json:"domain"`
}

// CommunicationVector is who is saying what to whom, through what, for what.
type CommunicationVector struct {
	Sender     string     `json:"sender"`
	Receiver   string     `json:"receiver"`
	Target     Target     `json:"target"`
	Instrument Instrument `json:"instrument"`
	Aim        Aim        `json:"aim"`
}

// Evidence holds the literal fragments an axiom matched. Reserved keys are
// EvidenceSoftener and EvidenceChild.
type Evidence map[string]string

const (
	EvidenceSoftener = "softener"
	EvidenceChild    = "child_reference"
)

// AxiomResult is one rule's verdict. A non-firing result always has
// confidence 0.
type AxiomResult struct {
	Fired        bool     `json:"fired"`
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Confidence   int      `json:"confidence"`
	Evidence     Evidence `json:"evidence,omitempty"`
	IntentImpact string   `json:"intentImpact,omitempty"`
	Target       Target   `json:"target,omitempty"`
}

// Assessment is the final risk verdict.
type Assessment struct {
	ConflictPotential ConflictLevel `json:"conflictPotential"`
	AttackSurface     []Target      `json:"attackSurface"`
	ChildAsInstrument bool          `json:"childAsInstrument"`
	Deniability       Deniability   `json:"deniability"`
	Transmit          bool          `json:"transmit"`
}

// StageLatency records time spent per pipeline stage.
type StageLatency struct {
	Tokenize   time.Duration `json:"tokenize"`
	Markers    time.Duration `json:"markers"`
	Primitives time.Duration `json:"primitives"`
	Vector     time.Duration `json:"vector"`
	Axioms     time.Duration `json:"axioms"`
	Assessment time.Duration `json:"assessment"`
}

// Meta is pipeline metadata. Latency fields are the only non-deterministic
// part of a ParsedMessage.
type Meta struct {
	Version      string        `json:"version"`
	Latency      time.Duration `json:"latency"`
	Stages       StageLatency  `json:"stages"`
	Error        bool          `json:"error,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// ParsedMessage is the full analysis of one message. It is built once by
// Parse and not modified afterwards.
type ParsedMessage struct {
	Raw        string               `json:"raw"`
	SenderID   string               `json:"senderId,omitempty"`
	Linguistic LinguisticMarkers    `json:"linguistic"`
	Conceptual ConceptualPrimitives `json:"conceptual"`
	Vector     CommunicationVector  `json:"vector"`
	Axioms     []AxiomResult        `json:"axiomsFired"`
	Assessment Assessment           `json:"assessment"`
	Meta       Meta                 `json:"meta"`
}

// FiredIn returns the fired axioms of one category.
func (pm *ParsedMessage) FiredIn(c Category) []AxiomResult {
	if pm == nil {
		return nil
	}
	var out []AxiomResult
	for _, a := range pm.Axioms {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}

// HasAxiom reports whether the axiom with the given id fired.
func (pm *ParsedMessage) HasAxiom(id string) bool {
	if pm == nil {
		return false
	}
	for _, a := range pm.Axioms {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Message is an outgoing message handed to Parse.
type Message struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}

// Bucket is a coarse relationship fact.
type Bucket string

const (
	BucketUnknown Bucket = ""
	BucketLow     Bucket = "low"
	BucketMedium  Bucket = "medium"
	BucketHigh    Bucket = "high"
)

// SchoolDistance is the sender's distance to school relative to the receiver.
type SchoolDistance string

const (
	SchoolDistanceUnknown SchoolDistance = ""
	SchoolDistanceCloser  SchoolDistance = "closer"
	SchoolDistanceFarther SchoolDistance = "farther"
	SchoolDistanceSimilar SchoolDistance = "similar"
)

// ParsingContext carries per-call relationship facts. It is read-only.
type ParsingContext struct {
	SenderID        string         `json:"senderId"`
	ReceiverID      string         `json:"receiverId"`
	ChildNames      []string       `json:"childNames,omitempty"`
	HasNewPartner   bool           `json:"hasNewPartner,omitempty"`
	IncomeDisparity Bucket         `json:"incomeDisparity,omitempty"`
	SeparationDate  time.Time      `json:"separationDate,omitempty"`
	SchoolDistance  SchoolDistance `json:"schoolDistance,omitempty"`
}
