package temporal

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/dukerupert/autoagenda/internal/walltime"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Names are stored folded (lowercase, no diacritics).
var weekdayNames = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"domingo":   time.Sunday,

	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var wordPattern = regexp.MustCompile(`\p{L}+`)

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// FindWeekday reports the first whole-word weekday name in text, ignoring
// case and diacritics ("Miércoles" and "miercoles" both match).
func FindWeekday(text string) (time.Weekday, bool) {
	for _, word := range wordPattern.FindAllString(fold(text), -1) {
		if wd, ok := weekdayNames[word]; ok {
			return wd, true
		}
	}
	return 0, false
}

// NextWeekday returns the next wall-clock time strictly after now that falls
// on wd at c. Today counts when c has not yet passed. The result is calendar
// arithmetic only and may name a reading skipped by a DST change.
func NextWeekday(now walltime.Time, wd time.Weekday, c Clock) walltime.Time {
	daysAhead := (int(wd) - int(now.Weekday()) + 7) % 7
	candidate := now.AddDate(0, 0, daysAhead).At(c.Hour, c.Minute)

	if daysAhead == 0 && !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
