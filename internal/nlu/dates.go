package nlu

import (
	"regexp"
	"strconv"
	"time"
)

var (
	todayRE     = regexp.MustCompile(`\btoday\b|\baaj\b|\bivala\b|\biivala\b`)
	tomorrowRE  = regexp.MustCompile(`\btomorrow\b|\bkal\b|\brepu\b`)
	dayAfterRE  = regexp.MustCompile(`\bday after tomorrow\b|\bparso\b|\bellundi\b`)
	nextDowRE   = regexp.MustCompile(`\bnext\s+(sun|mon|tue|wed|thu|fri|sat)[a-z]*\b`)
	ordinalRE   = regexp.MustCompile(`\b([0-3]?[0-9])\s*(st|nd|rd|th|thareek|tarik)\b`)
	durationRE  = regexp.MustCompile(`\b(in|after)\s+([0-9]+)\s+(days?|weeks?)\b`)
	numericDMYRE = regexp.MustCompile(`\b([0-3]?\d)[/\-]([0-1]?\d)(?:[/\-]([0-9]{2,4}))?\b`)
)

var weekdayIndex = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// extractDueDate resolves a spoken due date relative to now. Rules are
// tried in order, first match wins; all results are truncated to local
// midnight. Returns nil when nothing matches.
func extractDueDate(text string, now time.Time) *time.Time {
	today := midnight(now)

	if dayAfterRE.MatchString(text) {
		d := today.AddDate(0, 0, 2)
		return &d
	}
	if tomorrowRE.MatchString(text) {
		d := today.AddDate(0, 0, 1)
		return &d
	}
	if todayRE.MatchString(text) {
		return &today
	}

	if m := nextDowRE.FindStringSubmatch(text); m != nil {
		target := weekdayIndex[m[1]]
		delta := (int(target) + 7 - int(today.Weekday())) % 7
		if delta == 0 {
			delta = 7 // never today
		}
		d := today.AddDate(0, 0, delta)
		return &d
	}

	if m := ordinalRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		if day >= 1 && day <= 31 {
			d := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location())
			if day <= today.Day() {
				d = d.AddDate(0, 1, 0)
			}
			return &d
		}
	}

	if m := durationRE.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[2])
		if m[3][0] == 'w' {
			n *= 7
		}
		d := today.AddDate(0, 0, n)
		return &d
	}

	if m := numericDMYRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			if y, err := strconv.Atoi(m[3]); err == nil {
				if y < 100 {
					y += 2000
				}
				year = y
			}
		}
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
			return &d
		}
	}

	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
