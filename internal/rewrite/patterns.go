package rewrite

import "github.com/wolfman30/coparent-mediator/internal/textmatch"

// ReceiverIndicators are phrases only the person who received a message would
// say: reacting to it, defending against it, or asking about it.
var ReceiverIndicators = textmatch.Table{
	textmatch.P("acknowledge_other", 2, `\bi\s+(understand|see|know|get)\s+(that\s+)?you('re|\s+are)\b`),
	textmatch.P("reaction", 2, `\bthat\s+(really\s+)?hurt\s+me\b`),
	textmatch.P("reaction", 2, `\bi\s+felt\s+(attacked|hurt|insulted|disrespected)\b`),
	textmatch.P("reaction", 2, `\bthat('s|\s+is|\s+was)\s+(so\s+|really\s+)?(hurtful|mean|rude|uncalled\s+for)\b`),
	textmatch.P("reaction", 2, `\bhearing\s+that\b`),
	textmatch.P("reaction", 2, `\bwhat\s+you\s+said\b`),
	textmatch.P("reaction", 2, `\bwhen\s+you\s+(said|say|wrote|told)\b`),
	textmatch.P("reaction", 2, `\bwhy\s+would\s+you\s+say\b`),
	textmatch.P("reaction", 2, `\bnot\s+(okay|ok|acceptable)\s+to\s+say\b`),
	textmatch.P("defense", 2, `\bthat('s|\s+is)\s+not\s+fair\b`),
	textmatch.P("defense", 2, `\bi('m|\s+am)\s+doing\s+my\s+best\b`),
	textmatch.P("defense", 2, `\bi\s+(don't|do\s+not)\s+(appreciate|deserve)\b`),
	textmatch.P("defense", 2, `\bi\s+(didn't|did\s+not)\s+mean\s+to\b`),
	textmatch.P("defense", 2, `\bsorry\s+you\s+feel\b`),
	textmatch.P("defense", 1, `\bcalm\s+down\b`),
	textmatch.P("inquiry", 2, `\bwhat\s+i\s+did\s+wrong\b`),
	textmatch.P("inquiry", 2, `\bwhat\s+(exactly\s+)?do\s+you\s+mean\b`),
}

// SenderIndicators are first-person statements of the sender's own feelings,
// needs and requests.
var SenderIndicators = textmatch.Table{
	textmatch.P("feeling", 2, `\bi('m|\s+am)\s+(feeling|frustrated|concerned|worried|overwhelmed|struggling|stressed|having)\b`),
	textmatch.P("feeling", 2, `\bi\s+feel\b`),
	textmatch.P("need", 2, `\bi\s+need\b`),
	textmatch.P("need", 1, `\bi\s+want\b`),
	textmatch.P("preference", 1, `\bi('d|\s+would)\s+(like|prefer|appreciate)\b`),
	textmatch.P("observation", 1, `\bi('ve|\s+have)\s+noticed\b`),
	textmatch.P("request", 1, `\b(can|could)\s+we\b`),
	textmatch.P("request", 1, `\bwe\s+(could|should|need)\b`),
	textmatch.P("request", 1, `\blet's\b`),
	textmatch.P("ownership", 1, `\bfor\s+me\b`),
	textmatch.P("ownership", 1, `\btogether\b`),
}

// Category detection tables, checked in categoryOrder.
var categoryTables = map[Category]textmatch.Table{
	CategoryAttack: {
		textmatch.P("insult", 1, `\byou\s+(suck|stink)\b`),
		textmatch.P("insult", 1, `\byou('re|\s+are)\s+(such\s+|so\s+)?(an?\s+)?(idiot|moron|jerk|loser|stupid|pathetic|useless|worthless|joke|liar|narcissist|psycho)\b`),
		textmatch.P("insult", 1, `\byou('re|\s+are)\s+(such\s+|so\s+)?(an?\s+)?(terrible|horrible|awful|lousy)\s+(person|parent|father|mother|dad|mom)\b`),
		textmatch.P("insult", 1, `\b(screw|fuck)\s+you\b`),
		textmatch.P("insult", 1, `\bshut\s+up\b`),
	},
	CategoryBlame: {
		textmatch.P("blame", 1, `\byour\s+fault\b`),
		textmatch.P("blame", 1, `\bbecause\s+of\s+you\b`),
		textmatch.P("blame", 1, `\byou\s+(always|never)\b`),
		textmatch.P("blame", 1, `\bthanks\s+to\s+you\b`),
		textmatch.P("blame", 1, `\byou\s+(ruined|messed\s+up|screwed\s+up)\b`),
	},
	CategoryTriangulation: {
		textmatch.P("triangulation", 1, `\btell\s+(your\s+|the\s+)?(dad|mom|father|mother|him|her|them|kids?|children)\b`),
		textmatch.P("triangulation", 1, `\b(she|he|they|the\s+kids?)\s+(said|told\s+me)\s+(that\s+)?you\b`),
		textmatch.P("triangulation", 1, `\bask\s+(your\s+)?(dad|mom|father|mother)\b`),
	},
	CategoryThreat: {
		textmatch.P("threat", 1, `\b(call|contact|get|hire)\s+(my\s+|a\s+)?(lawyer|attorney)\b`),
		textmatch.P("threat", 1, `\b(go|going|take\s+you)\s+(back\s+)?to\s+court\b`),
		textmatch.P("threat", 1, `\b(tell|call)\s+(the\s+)?(police|cops|cps)\b`),
		textmatch.P("threat", 1, `\bor\s+else\b`),
		textmatch.P("threat", 1, `\b(full\s+)?custody\b`),
		textmatch.P("threat", 1, `\byou('ll|\s+will)\s+regret\b`),
	},
	CategoryDemand: {
		textmatch.P("demand", 1, `\byou\s+(should|must|need\s+to|have\s+to|better|had\s+better)\b`),
		textmatch.P("demand", 1, `\bi\s+(demand|insist)\b`),
		textmatch.P("demand", 1, `\bmake\s+sure\s+you\b`),
	},
}
