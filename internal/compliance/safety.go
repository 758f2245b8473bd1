// Package compliance holds the guardrails collections regulation
// imposes on outreach: abusive-language detection, obviously fake
// contact numbers, and the RBI calling window.
package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// abuseKeywords covers English plus common Hindi and Telugu
// transliterations. Matching is substring containment so inflected
// forms ("scammers", "cheating") still trip it.
var abuseKeywords = []string{
	"abuse", "idiot", "stupid", "fraud", "scam", "cheat", "harass",
	"chor", "pagal",
	"mosam", "donga",
}

// DetectAbuse reports whether an utterance contains abusive or
// harassing language. Callers must end the conversation and set the
// borrower's safe mode flag when it fires.
func DetectAbuse(text string) bool {
	s := strings.ToLower(text)
	for _, kw := range abuseKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

var (
	sequentialDigitsRE = regexp.MustCompile(`^(1234567890|9876543210)$`)
	invalidPrefixRE    = regexp.MustCompile(`^[0-5]`)
)

// repeatedDigits reports whether phone is ten copies of a single digit.
// RE2 has no backreferences, so this is a loop rather than a pattern.
func repeatedDigits(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	first := phone[0]
	if first < '0' || first > '9' {
		return false
	}
	for i := 1; i < len(phone); i++ {
		if phone[i] != first {
			return false
		}
	}
	return true
}

// DetectFakeNumber flags phone numbers that cannot be real Indian
// mobile numbers: ten repeated digits, the two canonical sequential
// runs, or a leading digit below 6.
func DetectFakeNumber(phone string) bool {
	if repeatedDigits(phone) {
		return true
	}
	if sequentialDigitsRE.MatchString(phone) {
		return true
	}
	return invalidPrefixRE.MatchString(phone)
}

// CallWindow is the permitted outbound calling window in a fixed
// time zone, hours [Start, End).
type CallWindow struct {
	Start    int
	End      int
	Location *time.Location
}

// DefaultCallWindow returns the RBI window, 08:00 to 20:00 IST. IST has
// no DST so the fixed-offset fallback is safe when the tz database is
// unavailable.
func DefaultCallWindow() CallWindow {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return CallWindow{Start: 8, End: 20, Location: loc}
}

// CheckResult reports whether calling is allowed right now.
type CheckResult struct {
	OK     bool   `json:"ok"`
	Hour   int    `json:"hour"`
	Window string `json:"window"`
}

// Check evaluates the window at the given instant.
func (w CallWindow) Check(now time.Time) CheckResult {
	hour := now.In(w.Location).Hour()
	return CheckResult{
		OK:     hour >= w.Start && hour < w.End,
		Hour:   hour,
		Window: fmt.Sprintf("%02d:00–%02d:00 IST", w.Start, w.End),
	}
}
