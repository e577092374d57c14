package codelayer

import (
	"strings"

	"github.com/wolfman30/coparent-mediator/internal/textmatch"
)

const weekday = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`

var cleanRequestRule = Rule{
	ID:            "AXIOM_D001",
	Name:          "Clean Request",
	Category:      CategoryClean,
	Description:   "A specific, actionable request with no attached blame.",
	MinConfidence: 70,
	Predicate:     cleanRequest,
}

var (
	cleanRequestPhrases = textmatch.Table{
		textmatch.P("request", 1, `\b(can|could|would|will)\s+you\b`),
		textmatch.P("request", 1, `\bplease\b`),
		textmatch.P("request", 1, `\bwould\s+you\s+be\s+able\b`),
		textmatch.P("request", 1, `\b(is|would)\s+it\s+(be\s+)?possible\b`),
		textmatch.P("request", 1, `\bdo\s+you\s+mind\b`),
		textmatch.P("request", 1, `\bi\s+need\s+you\s+to\b`),
		textmatch.P("request", 1, `\bi('d|\s+would)\s+appreciate\b`),
	}
	cleanRequestActions = textmatch.Table{
		textmatch.P("transport", 1, `\b(pick|drop|bring|take|get|give|send)\b`),
		textmatch.P("paperwork", 1, `\b(sign|fill\s+out|complete|submit|return)\b`),
		textmatch.P("contact", 1, `\b(call|text|email|contact|confirm)\b`),
		textmatch.P("care", 1, `\b(watch|supervise|help|assist)\b`),
		textmatch.P("plan", 1, `\b(schedule|arrange|plan|book|swap|switch|trade)\b`),
		textmatch.P("money", 1, `\b(pay|reimburse|split|cover)\b`),
	}
	cleanRequestSpecifics = textmatch.Table{
		textmatch.P("time", 1, `\bat\s+\d{1,2}(:\d{2})?\s*(am|pm|o'clock)?\b`),
		textmatch.P("day", 1, `\b(on|by|before|after|this|next)\s+`+weekday+`\b`),
		textmatch.P("day", 1, `\b(tomorrow|today|tonight|this\s+weekend)\b`),
		textmatch.P("period", 1, `\b(this|next|on)\s+(week|month|weekend)\b`),
		textmatch.P("range", 1, `\bfrom\s+\S+\s+(to|until)\s+\S+`),
		textmatch.P("time", 1, `\b\d{1,2}\s*(am|pm)\b`),
	}
	cleanRequestDisqualifiers = textmatch.Table{
		textmatch.P("absolute", 1, `\byou\s+(always|never)\b`),
		textmatch.P("demand", 1, `\byou\s+(should|need\s+to|have\s+to|must)\b`),
		textmatch.P("blame", 1, `\byour\s+fault\b`),
		textmatch.P("blame", 1, `\bbecause\s+(of\s+)?you\b`),
		textmatch.P("repeat", 1, `\b(again|as\s+usual|like\s+always|for\s+once)\b`),
		textmatch.P("rhetorical", 1, `\bwhy\s+(can't|don't|won't)\s+you\b`),
		textmatch.P("messenger", 1, `\b(she|he|they)\s+said\b`),
	}
)

// cleanRequest needs a request form, an action, and a concrete time or day,
// with no blame, softening or intensity attached.
func cleanRequest(in *Input) (Finding, bool) {
	if cleanRequestDisqualifiers.Any(in.Text) {
		return Finding{}, false
	}
	if len(in.Markers.Intensifiers) > 0 || len(in.Markers.Absolutes) > 0 || len(in.Markers.Softeners) > 0 {
		return Finding{}, false
	}
	req, ok := cleanRequestPhrases.First(in.Text)
	if !ok {
		return Finding{}, false
	}

	ev := Evidence{}
	ev.put("request", req.Text)
	confidence := 40
	if action, ok := cleanRequestActions.First(in.Text); ok {
		confidence += 30
		ev.put("action", action.Text)
	}
	if spec, ok := cleanRequestSpecifics.First(in.Text); ok {
		confidence += 20
		ev.put("specificity", spec.Text)
	}
	if strings.HasSuffix(in.Text, "?") {
		confidence += 10
		ev.put("form", "question")
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender asks for something concrete; receiver can say yes or no without defending themselves.",
	}, true
}

var cleanInformationRule = Rule{
	ID:            "AXIOM_D002",
	Name:          "Clean Information",
	Category:      CategoryClean,
	Description:   "A neutral logistics update naming an event and a time.",
	MinConfidence: 70,
	Predicate:     cleanInformation,
}

var (
	infoIntros = textmatch.Table{
		textmatch.P("intro", 1, `\bjust\s+(so\s+you\s+know|letting\s+you\s+know|fyi)\b`),
		textmatch.P("intro", 1, `\bheads\s+up\b`),
		textmatch.P("intro", 1, `\bfor\s+your\s+information\b`),
		textmatch.P("intro", 1, `\bi\s+wanted\s+to\s+(let\s+you\s+know|inform\s+you|tell\s+you)\b`),
		textmatch.P("intro", 1, `\breminder\b`),
		textmatch.P("intro", 1, `\bjust\s+a\s+(quick\s+)?note\b`),
	}
	infoEvents = textmatch.Table{
		textmatch.P("activity", 1, `\b(practice|game|match|recital|performance|concert)\b`),
		textmatch.P("health", 1, `\b(appointment|checkup|dentist|doctor|therapy)\b`),
		textmatch.P("school", 1, `\b(conference|meeting|open\s+house)\b`),
		textmatch.P("school", 1, `\b(project|assignment|homework|test|exam)\b`),
		textmatch.P("social", 1, `\b(birthday|party|playdate|sleepover)\b`),
		textmatch.P("class", 1, `\b(class|lesson|tutoring|camp)\b`),
		textmatch.P("school", 1, `\b(school|daycare|preschool)\b`),
	}
	infoTimes = textmatch.Table{
		textmatch.P("time", 1, `\bat\s+\d{1,2}(:\d{2})?\s*(am|pm|o'clock)?\b`),
		textmatch.P("day", 1, `\bon\s+`+weekday+`\b`),
		textmatch.P("date", 1, `\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}\b`),
		textmatch.P("date", 1, `\b\d{1,2}/\d{1,2}\b`),
		textmatch.P("day", 1, `\b(tomorrow|today|tonight|this\s+weekend|next\s+week)\b`),
		textmatch.P("range", 1, `\bfrom\s+\d+\s*(am|pm)?\s*(to|until|-)\s*\d+\s*(am|pm)?\b`),
		textmatch.P("place", 1, `\b(at|in)\s+(the\s+)?(school|gym|office|park|field|center)\b`),
	}
	infoFactualVerbs = textmatch.Table{
		textmatch.P("state", 1, `\b(she|he|they)\s+(has|have|is|are)\b`),
		textmatch.P("possessive", 1, `\b(her|his|their)\s+(appointment|practice|game|class)\b`),
		textmatch.P("scheduled", 1, `\bis\s+(scheduled|planned|set)\b`),
		textmatch.P("scheduled", 1, `\bis\s+(at|on|due)\b`),
		textmatch.P("future", 1, `\bwill\s+be\b`),
		textmatch.P("scheduled", 1, `\bstarts\s+(at|on)\b`),
	}
	infoDisqualifiers = textmatch.Table{
		textmatch.P("absolute", 1, `\byou\s+(always|never)\b`),
		textmatch.P("blame", 1, `\byour\s+fault\b`),
		textmatch.P("blame", 1, `\bbecause\s+(of\s+)?you\b`),
		textmatch.P("repeat", 1, `\b(again|as\s+usual)\b`),
		textmatch.P("messenger", 1, `\b(she|he|they)\s+(said|told)\s+.*\byour?\b`),
		textmatch.P("conditional", 1, `\bif\s+you\s+(had|hadn't|would|wouldn't)\b`),
		textmatch.P("comparison", 1, `\bunlike\s+you\b`),
		textmatch.P("rhetorical", 1, `\bwhy\s+(can't|don't|won't)\s+you\b`),
	}
)

// cleanInformation needs both an event and a time or place.
func cleanInformation(in *Input) (Finding, bool) {
	if infoDisqualifiers.Any(in.Text) {
		return Finding{}, false
	}
	event, hasEvent := infoEvents.First(in.Text)
	when, hasTime := infoTimes.First(in.Text)
	if !hasEvent || !hasTime {
		return Finding{}, false
	}

	ev := Evidence{}
	ev.put("event", event.Text).put("time", when.Text)
	confidence := 70
	if intro, ok := infoIntros.First(in.Text); ok {
		confidence += 15
		ev.put("intro", intro.Text)
	}
	if verb, ok := infoFactualVerbs.First(in.Text); ok {
		confidence += 15
		ev.put("factual", verb.Text)
	}
	return Finding{
		Confidence:   confidence,
		Evidence:     ev,
		IntentImpact: "Sender shares logistics; receiver gets what they need to plan.",
	}, true
}
