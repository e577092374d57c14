package codelayer

import (
	"strconv"
	"time"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

// Contextual axioms read the relationship background in ParsingContext. They
// describe sensitivity, not hostility, and never decide transmission alone.

var newPartnerSensitivityRule = Rule{
	ID:            "AXIOM_C001",
	Name:          "New Partner Sensitivity",
	Category:      CategoryContextual,
	Description:   "Mentions the receiver's new partner while one is known to exist.",
	Target:        TargetCharacter,
	MinConfidence: 60,
	Predicate:     newPartnerSensitivity,
}

var partnerMentionTable = textmatch.Table{
	textmatch.P("partner", 1, `\b(your|his|her)\s+(new\s+)?(partner|boyfriend|girlfriend|wife|husband|fianc[eé]e?)\b`),
	textmatch.P("partner", 1, `\bthat\s+(woman|man|guy|girl)\b`),
	textmatch.P("partner", 1, `\b(new\s+family|replacement)\b`),
}

func newPartnerSensitivity(in *Input) (Finding, bool) {
	if !in.Context.HasNewPartner {
		return Finding{}, false
	}
	mention, ok := partnerMentionTable.First(in.Text)
	if !ok {
		return Finding{}, false
	}
	ev := Evidence{}
	ev.put("partner_mention", mention.Text)
	confidence := 50
	if in.Primitives.Addressee && (in.Vector.Aim == AimAttack || in.Vector.Aim == AimControl || len(in.Markers.Patterns) > 0) {
		confidence += 20
	}
	if child := first(in.Primitives.ChildReferences); child != "" {
		confidence += 15
		ev.put(EvidenceChild, child)
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to raise a practical concern, but receiver hears a judgment of their new relationship.",
	}, true
}

var incomeDisparityRule = Rule{
	ID:            "AXIOM_C002",
	Name:          "Income Disparity Framing",
	Category:      CategoryContextual,
	Description:   "Frames a money issue around the known gap in income.",
	Target:        TargetCompetence,
	MinConfidence: 60,
	Predicate:     incomeDisparity,
}

var incomeFramingTable = textmatch.Table{
	textmatch.P("income", 1, `\byou\s+(make|earn|have)\s+(more|so\s+much|plenty)\b`),
	textmatch.P("income", 1, `\b(can't|cannot)\s+afford\b`),
	textmatch.P("income", 1, `\byour\s+(money|salary|income|paycheck|raise|bonus)\b`),
	textmatch.P("income", 1, `\bmust\s+be\s+nice\b`),
}

func incomeDisparity(in *Input) (Finding, bool) {
	if in.Context.IncomeDisparity != BucketMedium && in.Context.IncomeDisparity != BucketHigh {
		return Finding{}, false
	}
	framing, ok := incomeFramingTable.First(in.Text)
	if !ok {
		return Finding{}, false
	}
	ev := Evidence{}
	ev.put("income_framing", framing.Text).put("disparity", string(in.Context.IncomeDisparity))
	confidence := 55
	if in.Context.IncomeDisparity == BucketHigh {
		confidence += 15
	}
	if in.Primitives.Addressee {
		confidence += 10
	}
	if len(in.Markers.Intensifiers) > 0 || len(in.Markers.Absolutes) > 0 {
		confidence += 10
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to ask for a fair split, but receiver hears resentment about what they earn.",
	}, true
}

var recentSeparationRule = Rule{
	ID:            "AXIOM_C003",
	Name:          "Recent Separation Absolutes",
	Category:      CategoryContextual,
	Description:   "Global statements about the receiver soon after separation.",
	Target:        TargetCharacter,
	MinConfidence: 60,
	Predicate:     recentSeparation,
}

// recentSeparationWindow is how long after separation absolutes stay sensitive.
const recentSeparationWindow = 180 * 24 * time.Hour

func recentSeparation(in *Input) (Finding, bool) {
	sep := in.Context.SeparationDate
	if sep.IsZero() || in.SentAt.IsZero() || in.SentAt.Before(sep) || in.SentAt.Sub(sep) > recentSeparationWindow {
		return Finding{}, false
	}
	if !in.Primitives.Addressee {
		return Finding{}, false
	}
	hits := 0
	ev := Evidence{}
	for _, p := range in.Markers.Patterns {
		if p.Type == MarkerGlobalStatement || p.Type == MarkerEvaluativeGlobal {
			if hits == 0 {
				ev.put("global_statement", p.Match)
			}
			hits++
		}
	}
	if hits == 0 && len(in.Markers.Absolutes) > 0 {
		ev.put("absolute", in.Markers.Absolutes[0])
		hits = 1
	}
	if hits == 0 {
		return Finding{}, false
	}
	confidence := 55 + 10*min(hits-1, 2)
	if in.Vector.Target == TargetCharacter {
		confidence += 10
	}
	ev.put("days_since_separation", strconv.Itoa(int(in.SentAt.Sub(sep).Hours()/24)))
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to describe a pattern, but so soon after separation receiver hears a verdict on the whole relationship.",
	}, true
}

var schoolDistanceRule = Rule{
	ID:            "AXIOM_C004",
	Name:          "School Distance Leverage",
	Category:      CategoryContextual,
	Description:   "Uses living closer to school as leverage over time or custody.",
	Target:        TargetAutonomy,
	MinConfidence: 60,
	Predicate:     schoolDistance,
}

var schoolLeverageTable = textmatch.Table{
	textmatch.P("leverage", 1, `\b(closer|near|nearer)\s+(to\s+)?(the\s+|her\s+|his\s+|their\s+)?school\b`),
	textmatch.P("leverage", 1, `\b(makes\s+more\s+sense|should\s+(live|stay|be))\s+(with\s+me|here)\b`),
	textmatch.P("leverage", 1, `\bmore\s+time\s+with\s+me\b`),
	textmatch.P("leverage", 1, `\b(primary|full)\s+custody\b`),
}

func schoolDistance(in *Input) (Finding, bool) {
	if in.Context.SchoolDistance != SchoolDistanceCloser {
		return Finding{}, false
	}
	leverage, ok := schoolLeverageTable.First(in.Text)
	if !ok {
		return Finding{}, false
	}
	ev := Evidence{}
	ev.put("leverage", leverage.Text)
	confidence := 60
	if in.Primitives.Addressee {
		confidence += 10
	}
	if in.Vector.Aim == AimControl {
		confidence += 10
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to point at convenience for the child, but receiver hears a bid for more custody.",
	}, true
}
