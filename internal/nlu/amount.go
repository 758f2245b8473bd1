package nlu

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyAmountRE = regexp.MustCompile(`(?:₹|rs\.?\s*|rupees?\s*)([0-9][0-9,]*(?:\.[0-9]+)?)`)
	bareNumberRE     = regexp.MustCompile(`\b([0-9][0-9,]{1,5})\b`)
	tokenRE          = regexp.MustCompile(`[a-z]+`)
)

// extractAmount pulls a rupee amount out of lowercased text. Rules are
// tried in order and the first hit wins:
//
//  1. currency-marked numeral ("₹1,200", "rs 500", "rupees 2000")
//  2. bare 2-6 digit numeral
//  3. spoken number word, optionally followed by a magnitude word
//     ("five thousand", "paanch hazaar", "aidu veyyi")
//
// Returns nil when nothing parses.
func extractAmount(text string) *int64 {
	if m := currencyAmountRE.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			v := int64(math.Round(f))
			return &v
		}
	}

	if m := bareNumberRE.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return &v
		}
	}

	tokens := tokenRE.FindAllString(text, -1)
	for i, tok := range tokens {
		n, ok := numberWord(tok)
		if !ok {
			continue
		}
		if i+1 < len(tokens) {
			if mult, ok := magnitudeWords[tokens[i+1]]; ok {
				n *= mult
			}
		}
		return &n
	}

	return nil
}
