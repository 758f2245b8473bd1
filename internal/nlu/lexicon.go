package nlu

import "regexp"

// Intent is the coarse classification of a borrower utterance.
type Intent string

const (
	IntentGreet    Intent = "GREET"
	IntentConfirm  Intent = "CONFIRM"
	IntentConsent  Intent = "CONSENT"
	IntentCallback Intent = "CALLBACK"
	IntentPayLater Intent = "PAY_LATER"
	IntentHardship Intent = "HARDSHIP"
	IntentCantPay  Intent = "CANT_PAY"
	IntentPay      Intent = "PAY_INTENT"
	IntentAskDue   Intent = "ASK_DUE"
	IntentPTP      Intent = "PTP_INTENT"
	IntentUnknown  Intent = "UNKNOWN"
)

// intentRules is evaluated strictly in order; the first match wins.
// Precedence is part of the observable contract (a greeting that also
// contains a confirmation word classifies as GREET), so keep this a
// flat ordered table rather than anything cleverer.
var intentRules = []struct {
	intent Intent
	re     *regexp.Regexp
}{
	{IntentGreet, regexp.MustCompile(`\b(hello|hi|hey|namaste|namaskar|namaskaram)\b`)},
	{IntentConfirm, regexp.MustCompile(`\b(yes|haan|haanji|ok(ay)?|confirm|sare|avunu)\b`)},
	{IntentConsent, regexp.MustCompile(`\b(verify|consent|otp|agree)\b`)},
	// "call back" means phone timing, not payment timing.
	{IntentCallback, regexp.MustCompile(`\bcall\s*back\b|\bcall\b.*\blater\b`)},
	// Bare "later" usually means deferred payment.
	{IntentPayLater, regexp.MustCompile(`\blater\b|\bbaad me\b|\brepu\b|\bnext month\b|\bagle mahine\b`)},
	{IntentHardship, regexp.MustCompile(`\b(job\s*lost|lost\s*(my\s*)?job|medical|problem|issue|hardship|mushkil|dikkat|kashtam|udyam poindi)\b`)},
	{IntentCantPay, regexp.MustCompile(`\bcannot\s*pay\b|\bcan'?t\s*pay\b|\bnahi\s*de\b|\bno money\b|\bbroke\b|\bnahi hoga\b|\bpaise nahi\b|\bdabbu ledu\b`)},
	{IntentPay, regexp.MustCompile(`\b(pay|payment|paying|dunga|karunga|transfer|istanu|karta hoon)\b`)},
	{IntentAskDue, regexp.MustCompile(`what.*due|how much|kitna|amount.*due|\benta\b`)},
}

// Sentiment lexicons. Matching is substring containment, multilingual
// transliterations included. Tallying is deliberately crude; ties and
// partial-word collisions are accepted behavior.
var positiveWords = []string{
	"pay", "transfer", "ok", "confirm", "haan", "haanji", "yes",
	"dunga", "karunga", "istanu", "okay", "sure", "done", "paying",
	"payment", "agreed", "fine", "right", "correct", "karta hoon",
	"sare", "avunu",
}

var negativeWords = []string{
	"no", "nahi", "cannot", "cant", "issue", "problem", "lost job",
	"medical", "later", "baad me", "repu", "delay", "hardship",
	"mushkil", "dikkat", "no money", "broke", "paise nahi",
	"dabbu ledu", "kashtam", "udyam poindi", "next month", "agle mahine",
}

// Spoken cardinals, one lexicon per language, all transliterated.
var numberWordsEN = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "twenty": 20, "thirty": 30,
	"forty": 40, "fifty": 50, "hundred": 100,
}

var numberWordsHI = map[string]int64{
	"ek": 1, "do": 2, "teen": 3, "chaar": 4, "paanch": 5, "che": 6,
	"saat": 7, "aath": 8, "nau": 9, "das": 10, "gyaarah": 11,
	"baarah": 12, "bees": 20, "tees": 30, "chaalees": 40,
	"pachaas": 50, "sau": 100,
}

var numberWordsTE = map[string]int64{
	"okati": 1, "rendu": 2, "moodu": 3, "naalugu": 4, "aidu": 5,
	"aru": 6, "edu": 7, "enimidi": 8, "tommidi": 9, "padi": 10,
	"padakondu": 11, "pannendu": 12, "iravai": 20, "mupphai": 30,
	"nalabhai": 40, "yaabhai": 50, "vanda": 100,
}

var magnitudeWords = map[string]int64{
	"thousand": 1000, "hazaar": 1000, "velu": 1000, "veyyi": 1000,
}

func numberWord(w string) (int64, bool) {
	if n, ok := numberWordsEN[w]; ok {
		return n, true
	}
	if n, ok := numberWordsHI[w]; ok {
		return n, true
	}
	if n, ok := numberWordsTE[w]; ok {
		return n, true
	}
	return 0, false
}
