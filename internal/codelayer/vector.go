package codelayer

import (
	"regexp"
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

// insultTable is addressee-directed name-calling. The Direct Insult axiom
// reuses it.
var insultTable = textmatch.Table{
	textmatch.P("insult", 3, `\byou\s+(suck|stink)\b`),
	textmatch.P("insult", 3, `\b(you|ya)\s+(idiot|moron|jerk|loser|asshole|bitch|bastard|psycho|clown)\b`),
	textmatch.P("insult", 3, `\byou('re|\s+are)\s+(such\s+|so\s+|a\s+|an\s+|the\s+)*(idiot|moron|jerk|loser|stupid|pathetic|useless|worthless|worst|joke|disgrace|psycho|narcissist|liar|deadbeat)\b`),
	textmatch.P("insult", 3, `\byou('re|\s+are)\s+(such\s+|so\s+|a\s+|an\s+)*(terrible|horrible|awful|lousy|crappy|sorry)\s+(person|parent|father|mother|dad|mom|human)\b`),
	textmatch.P("insult", 3, `\b(screw|fuck|f\*+k?)\s+you\b`),
	textmatch.P("insult", 2, `\b(shut\s+up|go\s+to\s+hell|get\s+lost)\b`),
}

var targetTable = textmatch.Table{
	textmatch.P(string(TargetCharacter), 1, `\byou('re|\s+are)\s+(so|such|always|never|the)\b`),
	textmatch.P(string(TargetCharacter), 1, `\b(kind|type|sort)\s+of\s+(person|parent|father|mother)\b`),
	textmatch.P(string(TargetCharacter), 1, `\byour\s+(personality|character|attitude)\b`),
	textmatch.P(string(TargetCharacter), 1, `\byou\s+(seem|sound|act)\s+like\b`),
	textmatch.P(string(TargetCharacter), 1, `\b(selfish|irresponsible|unreliable|lazy|controlling|manipulative|immature|toxic)\b`),
	textmatch.P(string(TargetCharacter), 1, `\byou\s+(don't|do\s+not)\s+care\b`),
	textmatch.P(string(TargetCharacter), 1, `\byou\s+only\s+(care|think)\s+about\s+(yourself|your)\b`),
	textmatch.P(string(TargetCompetence), 1, `\byou\s+(forgot|forget|missed|can't|couldn't|failed|messed\s+up|screwed\s+up)\b`),
	textmatch.P(string(TargetCompetence), 1, `\byou\s+(don't|didn't)\s+(know|understand|remember)\b`),
	textmatch.P(string(TargetCompetence), 1, `\byou\s+never\s+(remember|follow\s+through|do|finish)\b`),
	textmatch.P(string(TargetCompetence), 1, `\byou\s+(should|could)\s+have\b`),
	textmatch.P(string(TargetCompetence), 1, `\b(incapable|incompetent|clueless)\b`),
	textmatch.P(string(TargetCompetence), 1, `\byou\s+always\s+(mess|screw)\s+up\b`),
	textmatch.P(string(TargetCompetence), 1, `\b(since|after|because|when)\s+you\s+\w+ed\b`),
	textmatch.P(string(TargetAutonomy), 1, `\byou\s+(should|need\s+to|have\s+to|must|ought\s+to)\b`),
	textmatch.P(string(TargetAutonomy), 1, `\byou\s+can't\s+just\b`),
	textmatch.P(string(TargetAutonomy), 1, `\byou\s+don't\s+get\s+to\b`),
	textmatch.P(string(TargetAutonomy), 1, `\bit's\s+my\s+(decision|choice|call)\b`),
	textmatch.P(string(TargetAutonomy), 1, `\byou\s+have\s+no\s+(right|say|choice)\b`),
	textmatch.P(string(TargetAutonomy), 1, `\byou\s+need\s+my\s+(permission|approval)\b`),
	textmatch.P(string(TargetParenting), 1, `\b(as|like)\s+a\s+(parent|father|mother|dad|mom)\b`),
	textmatch.P(string(TargetParenting), 1, `\byour\s+parenting\b`),
	textmatch.P(string(TargetParenting), 1, `\b(good|bad|terrible|great|better)\s+(parent|father|mother|dad|mom)\b`),
	textmatch.P(string(TargetParenting), 1, `\bthe\s+way\s+you\s+(raise|parent|discipline)\b`),
	textmatch.P(string(TargetParenting), 1, `\byou\s+(let|allow|make)\s+(her|him|them)\b`),
	textmatch.P(string(TargetParenting), 1, `\bat\s+your\s+(house|place)\b`),
	textmatch.P(string(TargetParenting), 1, `\bwhen\s+(she's|he's|they're)\s+with\s+you\b`),
}

var targetOrder = []Target{TargetCharacter, TargetCompetence, TargetAutonomy, TargetParenting}

// childInstrumentTable covers a child's reported speech or state tied back
// to the receiver.
var childInstrumentTable = textmatch.Table{
	textmatch.P("reported", 1, `\b(she|he|they)\s+(said|told|asked|mentioned|wants|needs|keeps\s+saying)\b`),
	textmatch.P("reported", 1, `\b(the\s+)?(kids?|children|daughter|son)\s+(said|told|wants|needs|asked)\b`),
	textmatch.P("reported", 1, `\baccording\s+to\s+(her|him|them|the\s+kids)\b`),
	textmatch.P("state", 1, `\b(she|he|they)\s+(is|are|was|were)\s+(so\s+|really\s+)?(upset|sad|worried|anxious|confused|scared|crying|hurt)\b`),
	textmatch.P("state", 1, `\b(she's|he's|they're|she\s+has|he\s+has|they\s+have)\s+(been\s+)?(so\s+|really\s+)?(upset|sad|worried|anxious|confused|crying|struggling|scared|hurt)\b`),
	textmatch.P("link", 1, `\b(since|after|because|when)\s+you\b`),
}

// childReportTable matches reported speech attributed to the resolved child
// references, which include names from ParsingContext.ChildNames.
func childReportTable(refs []string) textmatch.Table {
	table := make(textmatch.Table, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		table = append(table, textmatch.P("reported", 1,
			`\b`+regexp.QuoteMeta(ref)+`\s+(said|says|told|mentioned|asked|complained|cried|was\s+saying|keeps\s+saying)\b`))
	}
	return table
}

var childNegativeTable = textmatch.Table{
	textmatch.P("negative_state", 1, `\b(upset|sad|worried|anxious|confused|scared|crying|struggling|hurt|miserable|afraid|stressed|unhappy)\b`),
}

var thirdPartyInstrumentTable = textmatch.Table{
	textmatch.P("third_party", 1, `\b(my\s+)?(lawyer|attorney|mediator|judge)\b`),
	textmatch.P("third_party", 1, `\b(teacher|doctor|coach|therapist|counselor)\s+(said|told|mentioned|thinks)\b`),
	textmatch.P("third_party", 1, `\beveryone\s+(knows|says|thinks)\b`),
	textmatch.P("third_party", 1, `\b(my\s+|your\s+)?(mom|dad|mother|father|sister|brother|family|boyfriend|girlfriend|partner)\s+(said|told|thinks|says)\b`),
	textmatch.P("third_party", 1, `\b(friends|neighbors|people)\s+(say|think|told)\b`),
}

var moneyInstrumentTable = textmatch.Table{
	textmatch.P("money", 1, `\bchild\s*support\b`),
	textmatch.P("money", 1, `\b(pay|paid|payment|owe|owes|afford)\b`),
	textmatch.P("money", 1, `\$\s?\d+`),
	textmatch.P("money", 1, `\b(expense|expenses|cost|costs|bill|bills|fees?)\b`),
	textmatch.P("money", 1, `\b(split|reimburse|contribute)\b`),
}

var (
	requestTable = textmatch.Table{
		textmatch.P("request", 1, `\b(can|could|would|will)\s+(you|we)\b`),
		textmatch.P("request", 1, `\bplease\b`),
		textmatch.P("request", 1, `\b(would|could)\s+it\s+be\s+possible\b`),
		textmatch.P("request", 1, `\bis\s+it\s+(possible|ok|okay|alright)\b`),
		textmatch.P("request", 1, `\bi('d|\s+would)\s+(like|appreciate)\b`),
		textmatch.P("request", 1, `\blet's\b`),
	}
	controlTable = textmatch.Table{
		textmatch.P("control", 1, `\byou\s+(need\s+to|have\s+to|must|should|ought\s+to|better)\b`),
		textmatch.P("control", 1, `\bi\s+(want|expect|need)\s+you\s+to\b`),
		textmatch.P("control", 1, `\byou('re|\s+are)\s+going\s+to\b`),
		textmatch.P("control", 1, `\bmake\s+sure\s+you\b`),
		textmatch.P("control", 1, `\bi\s+(decide|say|determine|allow)\b`),
		textmatch.P("control", 1, `\byou\s+(will|won't)\s+(be|take|see|get)\b`),
	}
	attackTable = textmatch.Table{
		textmatch.P("attack", 1, `\byou\s+(always|never)\b`),
		textmatch.P("attack", 1, `\byour\s+fault\b`),
		textmatch.P("attack", 1, `\b(because\s+of|thanks\s+to)\s+you\b`),
		textmatch.P("attack", 1, `\byou('re|\s+are)\s+(the\s+)?(worst|terrible|awful)\b`),
		textmatch.P("attack", 1, `\bhow\s+could\s+you\b`),
		textmatch.P("attack", 1, `\bwhat\s+were\s+you\s+thinking\b`),
	}
	informTable = textmatch.Table{
		textmatch.P("inform", 1, `\bjust\s+(so\s+you\s+know|letting\s+you\s+know|fyi)\b`),
		textmatch.P("inform", 1, `\bi\s+wanted\s+to\s+(let\s+you\s+know|tell\s+you|inform\s+you)\b`),
		textmatch.P("inform", 1, `\b(practice|game|appointment|event|pickup|recital)\s+is\s+(at|on)\b`),
		textmatch.P("inform", 1, `\b(heads\s+up|fyi|for\s+your\s+information)\b`),
	}
	defendTable = textmatch.Table{
		textmatch.P("defend", 1, `\bi\s+(didn't|don't|wasn't|haven't)\b`),
		textmatch.P("defend", 1, `\bi\s+was\s+(just|only|trying)\b`),
		textmatch.P("defend", 1, `\bthat's\s+not\s+(true|what|how)\b`),
		textmatch.P("defend", 1, `\bi\s+never\s+(said|did|meant)\b`),
		textmatch.P("defend", 1, `\byou('re|\s+are)\s+(wrong|mistaken)\b`),
		textmatch.P("defend", 1, `\bto\s+be\s+(fair|clear|honest)\b`),
	}
)

// IdentifyVector derives the communication vector. Empty input yields an
// unclear/informational vector.
func IdentifyVector(text string, prims ConceptualPrimitives, markers LinguisticMarkers, pctx ParsingContext) CommunicationVector {
	v := CommunicationVector{
		Sender:   orUnknown(pctx.SenderID),
		Receiver: orUnknown(pctx.ReceiverID),
		Target:   TargetUnclear,
		Aim:      AimInform,
	}
	text = textmatch.Normalize(text)
	if text == "" || len(markers.Tokens) == 0 {
		return v
	}
	v.Target = identifyTarget(text, prims, markers)
	v.Instrument = identifyInstrument(text, prims)
	v.Aim = identifyAim(text, v.Target, v.Instrument, markers)
	return v
}

func identifyTarget(text string, prims ConceptualPrimitives, markers LinguisticMarkers) Target {
	if !prims.Addressee {
		return TargetUnclear
	}
	scores := make(map[Target]float64, len(targetOrder))
	for label, w := range targetTable.Tally(text) {
		scores[Target(label)] += w
	}
	if insultTable.Any(text) || markers.HasPattern(MarkerCharacterAttack) || markers.HasPattern(MarkerEvaluativeGlobal) {
		scores[TargetCharacter] += 3
	}
	switch prims.Domain {
	case DomainCharacter:
		scores[TargetCharacter] += 2
	case DomainParenting:
		scores[TargetParenting] += 2
	}

	best, bestScore := TargetUnclear, 0.0
	for _, t := range targetOrder {
		if scores[t] > bestScore {
			best, bestScore = t, scores[t]
		}
	}
	return best
}

// identifyInstrument applies, in order: child, third party, money, schedule.
func identifyInstrument(text string, prims ConceptualPrimitives) Instrument {
	switch {
	case len(prims.ChildReferences) > 0 && prims.Addressee &&
		(childInstrumentTable.Any(text) || childReportTable(prims.ChildReferences).Any(text)):
		return InstrumentChild
	case thirdPartyInstrumentTable.Any(text):
		return InstrumentThirdParty
	case prims.Domain == DomainMoney || moneyInstrumentTable.Count(text) >= 2:
		return InstrumentMoney
	case prims.Domain == DomainSchedule:
		return InstrumentSchedule
	}
	return InstrumentNone
}

// identifyAim is a fixed decision table over target, instrument, and the
// request/control/attack/defend/inform signals. Rows are checked top down.
func identifyAim(text string, target Target, instrument Instrument, markers LinguisticMarkers) Aim {
	request := requestTable.Any(text)
	control := controlTable.Score(text)
	attack := attackTable.Score(text) + insultTable.Score(text)
	for _, p := range markers.Patterns {
		switch p.Type {
		case MarkerBlame, MarkerGlobalStatement, MarkerCharacterAttack, MarkerEvaluativeGlobal:
			attack += 2
		case MarkerEvaluative:
			control++
		}
	}

	switch {
	case instrument == InstrumentChild && childNegativeTable.Any(text):
		return AimControl
	case target == TargetCharacter && !request:
		return AimAttack
	case attack > 0 && attack >= control && !request:
		return AimAttack
	case request && attack < 3:
		return AimRequest
	case control == 0 && informTable.Any(text):
		return AimInform
	case control > 0:
		return AimControl
	case attack > 0:
		return AimAttack
	case defendTable.Any(text):
		return AimDefend
	}
	return AimInform
}

func orUnknown(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}
