package codelayer

import "github.com/wolfman30/coparent-mediator/internal/textmatch"

// Closed vocabularies used by the tokenizer. Multi-word forms live in the
// pattern tables in markers.go and primitives.go.
var (
	addresseeWords = textmatch.Words("you", "you're", "youre", "your", "yours", "yourself", "you've", "you'll", "you'd", "ya")
	speakerWords   = textmatch.Words("i", "i'm", "im", "me", "my", "mine", "myself", "i've", "ive", "i'd", "i'll")

	thirdPartyPronouns = textmatch.Words(
		"she", "she's", "shes", "her", "hers", "herself",
		"he", "he's", "hes", "him", "his", "himself",
		"they", "they're", "theyre", "them", "their", "theirs", "themselves",
	)

	childTerms = textmatch.Words(
		"kids", "kid", "children", "child", "daughter", "daughters", "son", "sons",
		"baby", "kiddo", "kiddos", "toddler", "boys", "girls",
	)

	intensifiers = textmatch.Words(
		"always", "never", "every", "completely", "totally", "absolutely",
		"constantly", "forever", "entirely", "extremely", "very", "really",
		"so", "such", "definitely", "certainly", "obviously", "clearly",
	)

	absolutes = textmatch.Words(
		"always", "never", "every", "all", "none", "nothing", "everything",
		"everyone", "nobody", "nowhere", "everywhere", "constantly", "forever",
	)

	softeners = textmatch.Words(
		"just", "maybe", "might", "perhaps", "possibly", "probably", "somewhat",
		"slightly", "basically", "actually", "honestly", "frankly", "simply",
		"only", "merely", "apparently", "seems",
	)

	negationWords = textmatch.Words(
		"not", "no", "never", "don't", "dont", "doesn't", "doesnt", "didn't", "didnt",
		"won't", "wont", "can't", "cant", "cannot", "isn't", "isnt", "aren't", "arent",
		"wasn't", "wasnt", "weren't", "werent", "shouldn't", "wouldn't", "couldn't",
		"haven't", "hasn't", "hadn't", "nobody", "nothing", "neither", "nor",
	)

	actionVerbs = textmatch.Words(
		"pick", "drop", "bring", "take", "get", "give", "send", "receive",
		"tell", "say", "said", "told", "ask", "asked", "help", "helped",
		"change", "changed", "cancel", "cancelled", "canceled", "forgot", "forget",
		"remember", "remembered", "miss", "missed", "call", "called",
		"text", "texted", "respond", "responded", "reply", "replied",
		"agree", "agreed", "disagree", "disagreed", "decide", "decided",
		"schedule", "pay", "paid", "sign", "confirm", "swap", "switch",
	)

	articles     = textmatch.Words("a", "an", "the")
	prepositions = textmatch.Words(
		"in", "on", "at", "to", "for", "with", "by", "from", "about",
		"into", "through", "during", "before", "after", "above", "below",
		"between", "under", "over", "since", "until", "of",
	)
	conjunctions = textmatch.Words(
		"and", "but", "or", "nor", "yet", "because", "although",
		"though", "while", "if", "when", "where", "unless", "however",
	)
	auxiliaries = textmatch.Words(
		"is", "are", "was", "were", "be", "been", "being", "am",
		"have", "has", "had", "do", "does", "did", "will", "would",
		"could", "should", "may", "might", "must", "shall", "can", "can't",
		"won't", "wouldn't", "couldn't", "shouldn't", "don't", "doesn't", "didn't",
		"isn't", "aren't", "wasn't", "weren't", "gonna",
	)

	// adjectives covers the negative states and judgments the axioms care
	// about; suffix rules catch most of the rest.
	adjectives = textmatch.Words(
		"upset", "sad", "angry", "mad", "scared", "afraid", "hurt", "worried",
		"anxious", "confused", "stressed", "unhappy", "miserable", "lonely",
		"bad", "good", "late", "sick", "tired", "crazy", "stupid", "lazy",
		"selfish", "pathetic", "terrible", "horrible", "awful", "useless",
		"worthless", "irresponsible", "unreliable", "careless", "toxic",
		"fine", "happy", "ready", "free", "available", "sure",
	)

	// contrastWords open a new clause in the tokenizer.
	contrastWords = textmatch.Words("but", "however", "although", "though", "yet")

	// clauseJoiners end a negation scope.
	clauseJoiners = textmatch.Words("and", "but", "or", "because", "so", "although", "though", "however", "yet", "while", "when", "since")
)

// domainVocabulary is ordered: the first domain claiming a word wins.
var domainVocabulary = []struct {
	domain Domain
	words  textmatch.WordSet
}{
	{DomainSchedule, textmatch.Words(
		"pickup", "pick-up", "drop-off", "dropoff", "custody", "schedule", "weekend",
		"weekends", "holiday", "holidays", "vacation", "visitation", "overnight",
		"weekday", "evening", "morning", "afternoon", "tonight", "today", "tomorrow",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"calendar", "week", "swap", "exchange",
	)},
	{DomainMoney, textmatch.Words(
		"payment", "payments", "support", "money", "expense", "expenses", "cost",
		"costs", "pay", "paid", "afford", "financial", "bill", "bills", "fee", "fees",
		"tuition", "insurance", "reimburse", "reimbursement", "venmo", "dollars",
	)},
	{DomainParenting, textmatch.Words(
		"homework", "school", "teacher", "class", "grade", "grades", "test",
		"assignment", "conference", "education", "tutoring", "tutor",
		"discipline", "rules", "bedtime", "routine", "chores", "parenting",
		"raising", "boundaries", "consequences", "therapist", "therapy",
	)},
	{DomainCharacter, textmatch.Words(
		"behavior", "behaviour", "attitude", "personality", "character", "trait",
		"habit", "habits", "person", "liar", "selfish", "lazy", "pathetic",
		"irresponsible", "immature", "toxic", "narcissist",
	)},
	{DomainLogistics, textmatch.Words(
		"address", "car", "ride", "drive", "location", "pack", "bag", "clothes",
		"uniform", "doctor", "dentist", "appointment", "practice", "game", "recital",
		"passport", "medication", "jacket", "shoes",
	)},
}

func domainOf(word string) Domain {
	for _, d := range domainVocabulary {
		if d.words.Has(word) {
			return d.domain
		}
	}
	return ""
}
