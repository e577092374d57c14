package codelayer

import (
	"fmt"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

var displacedAccusationRule = Rule{
	ID:            "AXIOM_001",
	Name:          "Displaced Accusation",
	Category:      CategoryIndirect,
	Description:   "A child's negative state is linked to something the receiver did.",
	Target:        TargetParenting,
	MinConfidence: 75,
	Predicate:     displacedAccusation,
}

var (
	negativeStateTable = textmatch.Table{
		textmatch.P("state", 1, `\b(upset|sad|unhappy|worried|anxious|stressed|crying|struggling|confused|scared|afraid|angry|frustrated|disappointed|hurt|lonely|depressed|withdrawn|quiet|clingy|nightmares)\b`),
		textmatch.P("state", 1, `\bnot\s+(herself|himself|themselves|eating|sleeping|doing\s+well)\b`),
		textmatch.P("state", 1, `\b(acting\s+(out|different)|having\s+(trouble|problems))\b`),
	}
	receiverLinkTable = textmatch.Table{
		textmatch.P("link", 1, `\b(ever\s+)?since\s+you\b`),
		textmatch.P("link", 1, `\b(after|when)\s+you\b`),
		textmatch.P("link", 1, `\bbecause\s+(of\s+)?you\b`),
		textmatch.P("link", 1, `\b(following|due\s+to|with|about)\s+your\b`),
		textmatch.P("link", 1, `\bat\s+your\s+(house|place)\b`),
	}
	concernSoftenerTable = textmatch.Table{
		textmatch.P("softener", 1, `\bi('m|\s+am)\s+just\b`),
		textmatch.P("softener", 1, `\bjust\s+(thought|wanted|letting)\b`),
		textmatch.P("softener", 1, `\b(i\s+thought\s+)?you\s+should\s+know\b`),
		textmatch.P("softener", 1, `\bi\s+wanted\s+to\s+(let\s+you\s+know|tell\s+you|share)\b`),
		textmatch.P("softener", 1, `\bi\s+noticed\b`),
		textmatch.P("softener", 1, `\bi('m|\s+am)\s+(worried|concerned)\b`),
	}
)

// displacedAccusation needs a child reference, a negative state and a link
// back to the receiver. A softener raises confidence but is not required.
func displacedAccusation(in *Input) (Finding, bool) {
	child := first(in.Primitives.ChildReferences)
	states := negativeStateTable.Texts(in.Text)
	link, hasLink := receiverLinkTable.First(in.Text)
	if child == "" || len(states) == 0 || !hasLink {
		return Finding{}, false
	}

	ev := Evidence{}
	ev.put(EvidenceChild, child).put("negative_state", states[0]).put("receiver_link", link.Text)
	confidence := 85
	if softener := concernSoftener(in); softener != "" {
		confidence += 10
		ev.put(EvidenceSoftener, softener)
	}
	if len(states) > 1 {
		confidence += 5
	}
	ev.put("trigger_phrase", fmt.Sprintf("%s ... %s ... %s", child, states[0], link.Text))
	return Finding{
		Confidence: confidence,
		Evidence:   ev,
		IntentImpact: fmt.Sprintf("Framed as concern for the child being %s, but receiver will hear it as blame for %q.",
			states[0], link.Text),
	}, true
}

func concernSoftener(in *Input) string {
	if m, ok := concernSoftenerTable.First(in.Text); ok {
		return m.Text
	}
	return first(in.Markers.Softeners)
}

var childAsMessengerRule = Rule{
	ID:            "AXIOM_010",
	Name:          "Child as Messenger",
	Category:      CategoryIndirect,
	Description:   "Criticism of the receiver delivered as something the child said.",
	Target:        TargetParenting,
	MinConfidence: 75,
	Predicate:     childAsMessenger,
}

var (
	reportingVerbTable = textmatch.Table{
		textmatch.P("reported", 1, `\b(she|he|they)\s+(said|told|mentioned|asked|complained|cried|was\s+saying|keeps\s+saying)\b`),
		textmatch.P("reported", 1, `\b(the\s+)?(kids?|children|daughter|son)\s+(said|told|mentioned|asked|complained)\b`),
		textmatch.P("reported", 1, `\baccording\s+to\s+(her|him|them|the\s+kids?)\b`),
		textmatch.P("reported", 1, `\b(she|he|they)\s+\w+\s+told\s+me\b`),
		textmatch.P("reported", 1, `\b(said|says)\s+that\b`),
	}
	receiverCriticismTable = textmatch.Table{
		textmatch.P("negative", 1, `\byou\s+(forgot|yelled|screamed|didn't|don't|won't|wouldn't|can't|never|always)\b`),
		textmatch.P("negative", 1, `\byou\s+weren't\s+(there|home|listening)\b`),
		textmatch.P("negative", 1, `\b(don't|doesn't)\s+want\s+to\s+(go|stay|be)\s+(to|at|with)\s+(your|you)\b`),
		textmatch.P("negative", 1, `\b(scared|afraid|worried)\s+(of|about)\s+you\b`),
		textmatch.P("negative", 1, `\b(your\s+(house|place)|with\s+you)\b`),
	}
	quoteTable = textmatch.Table{
		textmatch.P("quote", 1, `"`),
		textmatch.P("quote", 1, `\b(that|why)\s+you\b`),
	}
)

func childAsMessenger(in *Input) (Finding, bool) {
	report, ok := reportingVerbTable.First(in.Text)
	if !ok {
		report, ok = childReportTable(in.Primitives.ChildReferences).First(in.Text)
	}
	if !ok {
		return Finding{}, false
	}
	criticism := receiverCriticismTable.Texts(in.Text)
	if len(criticism) == 0 {
		return Finding{}, false
	}

	ev := Evidence{}
	ev.put("reporting_verb", report.Text).put("criticism", criticism[0])
	confidence := 60
	if child := first(in.Primitives.ChildReferences); child != "" {
		confidence += 25
		ev.put(EvidenceChild, child)
	}
	if quoteTable.Any(in.Text) {
		confidence += 10
		ev.put("quoted", "true")
	}
	if len(criticism) > 1 {
		confidence += 5
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to pass on what the child feels, but receiver hears criticism with the child placed in the middle.",
	}, true
}

var weaponizedAgreementRule = Rule{
	ID:            "AXIOM_004",
	Name:          "Weaponized Agreement",
	Category:      CategoryIndirect,
	Description:   "Agreement that sets up a reversal into criticism.",
	Target:        TargetCompetence,
	MinConfidence: 70,
	Predicate:     weaponizedAgreement,
}

var (
	agreementTable = textmatch.Table{
		textmatch.P("agreement", 1, `\bi\s+(agree|understand|know)\b`),
		textmatch.P("agreement", 1, `\bi\s+get\s+(it|that)\b`),
		textmatch.P("agreement", 1, `\bi\s+hear\s+you\b`),
		textmatch.P("agreement", 1, `\byou('re|\s+are)\s+right\b`),
		textmatch.P("agreement", 1, `\bthat's\s+(true|fair|valid)\b`),
		textmatch.P("agreement", 1, `\bi\s+see\s+(your|the)\s+point\b`),
		textmatch.P("agreement", 1, `\bi\s+appreciate\b`),
		textmatch.P("agreement", 1, `\bi('m|\s+am)\s+not\s+(saying|trying)\b`),
		textmatch.P("agreement", 1, `\b(sure|of\s+course)\b`),
		textmatch.P("agreement", 1, `\bi\s+admit\b`),
		textmatch.P("agreement", 1, `\bi('m|\s+am)\s+willing\b`),
	}
	criticismTable = textmatch.Table{
		textmatch.P("criticism", 1, `\byou\s+(always|never)\b`),
		textmatch.P("criticism", 1, `\byou\s+(don't|can't|won't|didn't)\b`),
		textmatch.P("criticism", 1, `\byou\s+(should|need\s+to|have\s+to)\b`),
		textmatch.P("criticism", 1, `\byou('re|\s+are)\s+(not|never)\b`),
		textmatch.P("criticism", 1, `\b(at\s+least\s+i|unlike\s+you|i\s+would\s+never)\b`),
		textmatch.P("criticism", 1, `\bthe\s+kids\s+(need|deserve)\b`),
		textmatch.P("criticism", 1, `\byour\b`),
	}
	reversalIntensifierTable = textmatch.Table{
		textmatch.P("intensifier", 1, `\b(always|never|nothing|nobody|constantly|repeatedly|again)\b`),
		textmatch.P("intensifier", 1, `\b(no\s+one|every\s+time)\b`),
	}
)

func weaponizedAgreement(in *Input) (Finding, bool) {
	split := AnalyzeContrast(in.Text)
	if split == nil {
		return Finding{}, false
	}
	agreement, ok := agreementTable.First(split.Before)
	if !ok {
		return Finding{}, false
	}
	criticism := criticismTable.Texts(split.After)
	if len(criticism) == 0 {
		return Finding{}, false
	}

	ev := Evidence{}
	ev.put("agreement", agreement.Text).put("contrast", split.Marker).put("criticism", criticism[0])
	confidence := 75
	if m, ok := reversalIntensifierTable.First(split.After); ok {
		confidence += 15
		ev.put("intensifier", m.Text)
	}
	if len(criticism) > 1 {
		confidence += 10
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: fmt.Sprintf("Sender may mean to sound reasonable by opening with %q, but receiver hears only what follows %q.", agreement.Text, split.Marker),
	}, true
}

var virtuousSelfReferenceRule = Rule{
	ID:            "AXIOM_005",
	Name:          "Virtuous Self-Reference",
	Category:      CategoryIndirect,
	Description:   "Sender praises their own conduct to imply the receiver falls short.",
	Target:        TargetCharacter,
	MinConfidence: 70,
	Predicate:     virtuousSelfReference,
}

var selfComparisonTable = textmatch.Table{
	textmatch.P("comparison", 1, `\bat\s+least\s+i\b`),
	textmatch.P("comparison", 1, `\bunlike\s+you\b`),
	textmatch.P("comparison", 1, `\bi\s+would\s+never\b`),
	textmatch.P("comparison", 1, `\bsome\s+of\s+us\b`),
	textmatch.P("comparison", 1, `\bi('m|\s+am)\s+the\s+(only\s+)?one\s+who\b`),
	textmatch.P("comparison", 1, `\bi\s+always\s+(make\s+sure|remember|show\s+up)\b`),
}

func virtuousSelfReference(in *Input) (Finding, bool) {
	comparisons := selfComparisonTable.Texts(in.Text)
	if len(comparisons) == 0 {
		return Finding{}, false
	}
	ev := Evidence{}
	ev.put("comparison", comparisons[0])
	confidence := 50
	if in.Primitives.Addressee {
		confidence += 20
	}
	if len(in.Markers.Intensifiers) > 0 {
		confidence += 10
		ev.put("intensifier", in.Markers.Intensifiers[0])
	}
	if len(comparisons) > 1 {
		confidence += 10
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to point out their own effort, but receiver hears that they are the worse parent.",
	}, true
}

var hypotheticalAccusationRule = Rule{
	ID:            "AXIOM_016",
	Name:          "Hypothetical Accusation",
	Category:      CategoryIndirect,
	Description:   "Blame framed as what would have happened if the receiver acted differently.",
	Target:        TargetCompetence,
	MinConfidence: 70,
	Predicate:     hypotheticalAccusation,
}

var (
	counterfactualTable = textmatch.Table{
		textmatch.P("counterfactual", 1, `\bif\s+you\s+(had|hadn't|would\s+have|wouldn't\s+have)\b`),
		textmatch.P("counterfactual", 1, `\bif\s+only\s+you\b`),
	}
	counterfactualOutcomeTable = textmatch.Table{
		textmatch.P("outcome", 1, `\b(she|he|they|we|this|it)\s+(wouldn't|would\s+not|would\s+never|might\s+not|would\s+have|could\s+have)\b`),
		textmatch.P("outcome", 1, `\b(none\s+of\s+this|this\s+wouldn't)\b`),
	}
)

func hypotheticalAccusation(in *Input) (Finding, bool) {
	cond, ok := counterfactualTable.First(in.Text)
	if !ok {
		return Finding{}, false
	}
	outcome, ok := counterfactualOutcomeTable.First(in.Text[cond.Start:])
	if !ok {
		return Finding{}, false
	}

	ev := Evidence{}
	ev.put("condition", cond.Text).put("outcome", outcome.Text)
	confidence := 75
	if child := first(in.Primitives.ChildReferences); child != "" {
		confidence += 10
		ev.put(EvidenceChild, child)
	}
	if softener := first(in.Markers.Softeners); softener != "" {
		confidence += 10
		ev.put(EvidenceSoftener, softener)
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender may mean to explain what went wrong, but receiver hears that the outcome is their fault.",
	}, true
}
