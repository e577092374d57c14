package codelayer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrDuplicateRule = errors.New("codelayer: duplicate axiom id")
	ErrInvalidRule   = errors.New("codelayer: invalid axiom")
)

// Input is the message-in-progress every axiom sees. Predicates must treat it
// as read-only.
type Input struct {
	// Text is the normalized, lowercased message.
	Text       string
	Tokens     []Token
	Markers    LinguisticMarkers
	Primitives ConceptualPrimitives
	Vector     CommunicationVector
	Context    ParsingContext
	SentAt     time.Time
}

// Finding is what a predicate reports when its pattern is present.
type Finding struct {
	Confidence   int
	Evidence     Evidence
	IntentImpact string
}

// Predicate is a pure check. ok=false means the pattern is absent.
type Predicate func(in *Input) (f Finding, ok bool)

// Rule is one registered axiom.
type Rule struct {
	ID          string
	Name        string
	Category    Category
	Description string
	// Target is added to the attack surface when the rule fires.
	Target Target
	// MinConfidence is the firing threshold for this rule.
	MinConfidence int
	Predicate     Predicate
}

// Registry holds axioms in registration order. Register is meant for
// startup; Check may run concurrently.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
	ids   map[string]struct{}
}

// NewRegistry registers rules in order.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{ids: make(map[string]struct{}, len(rules))}
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with the built-in rule library.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(builtinRules()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a rule. IDs must be unique.
func (r *Registry) Register(rule Rule) error {
	if strings.TrimSpace(rule.ID) == "" || rule.Predicate == nil {
		return fmt.Errorf("%w: id and predicate are required", ErrInvalidRule)
	}
	switch rule.Category {
	case CategoryClean, CategoryDirect, CategoryIndirect, CategoryContextual:
	default:
		return fmt.Errorf("%w: %s has unknown category %q", ErrInvalidRule, rule.ID, rule.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[rule.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID)
	}
	r.ids[rule.ID] = struct{}{}
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns a copy of the registered rules.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules...)
}

// Lookup returns the rule with the given id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

// Evaluate runs every rule and returns one result per rule in registration
// order, fired or not.
func (r *Registry) Evaluate(in *Input) []AxiomResult {
	rules := r.Rules()
	out := make([]AxiomResult, 0, len(rules))
	for _, rule := range rules {
		out = append(out, evaluate(rule, in))
	}
	return out
}

// Check returns only fired results, highest confidence first. Ties go to
// direct, then indirect, then contextual, then clean, then by id.
func (r *Registry) Check(in *Input) []AxiomResult {
	fired := []AxiomResult{}
	for _, res := range r.Evaluate(in) {
		if res.Fired {
			fired = append(fired, res)
		}
	}
	sort.SliceStable(fired, func(i, j int) bool {
		a, b := fired[i], fired[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Category.precedence() != b.Category.precedence() {
			return a.Category.precedence() < b.Category.precedence()
		}
		return a.ID < b.ID
	})
	return fired
}

func evaluate(rule Rule, in *Input) AxiomResult {
	res := AxiomResult{ID: rule.ID, Name: rule.Name, Category: rule.Category}
	f, ok := rule.Predicate(in)
	if !ok {
		return res
	}
	confidence := clamp(f.Confidence, 0, 100)
	if confidence == 0 || confidence < rule.MinConfidence {
		return res
	}
	res.Fired = true
	res.Confidence = confidence
	res.Evidence = f.Evidence
	res.IntentImpact = f.IntentImpact
	res.Target = rule.Target
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// put records a fragment, skipping empty values.
func (e Evidence) put(key, value string) Evidence {
	if value != "" {
		e[key] = value
	}
	return e
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// builtinRules is the shipped rule library.
func builtinRules() []Rule {
	return []Rule{
		cleanRequestRule,
		cleanInformationRule,
		directInsultRule,
		threatUltimatumRule,
		displacedAccusationRule,
		weaponizedAgreementRule,
		virtuousSelfReferenceRule,
		childAsMessengerRule,
		hypotheticalAccusationRule,
		newPartnerSensitivityRule,
		incomeDisparityRule,
		recentSeparationRule,
		schoolDistanceRule,
	}
}
