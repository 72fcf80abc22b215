// Package temporal turns loose date and time fragments into a concrete future
// wall-clock reading in a working zone.
package temporal

import (
	"strings"
	"time"

	"github.com/dukerupert/autoagenda/internal/walltime"
)

// Anchor is the reference moment a phrase is resolved against.
type Anchor struct {
	Now  time.Time
	Zone *time.Location
}

// Local returns the anchor's wall-clock reading in its zone.
func (a Anchor) Local() walltime.Time {
	return walltime.FromInstant(a.Now, a.Zone)
}

// Phrase holds the fragments an extractor pulled out of free text. Empty
// strings mean the fragment is absent.
type Phrase struct {
	DateText string  `json:"date_text"`
	TimeText string  `json:"time_text"`
	DayPart  DayPart `json:"day_part"`
}

// IsEmpty reports whether no fragment is present.
func (p Phrase) IsEmpty() bool {
	return strings.TrimSpace(p.DateText) == "" &&
		strings.TrimSpace(p.TimeText) == "" &&
		strings.TrimSpace(string(p.DayPart)) == ""
}

// PhraseParser resolves a composite natural-language phrase against an
// anchor. found is false when the parser does not recognize the phrase.
type PhraseParser interface {
	ParsePhrase(phrase string, anchor Anchor) (t time.Time, found bool, err error)
}

// Language holds the connector words used to build composite phrases.
type Language struct {
	Code  string
	At    string
	Today string
}

var (
	Spanish = Language{Code: "es", At: "a las", Today: "hoy"}
	English = Language{Code: "en", At: "at", Today: "today"}
)

// LanguageFor returns the connectors for a language code, defaulting to
// Spanish.
func LanguageFor(code string) Language {
	if strings.EqualFold(code, English.Code) {
		return English
	}
	return Spanish
}

// Compose builds the phrase handed to a PhraseParser. It returns "" when
// there is nothing to parse.
func (l Language) Compose(dateText string, c Clock, hasClock bool) string {
	dateText = strings.TrimSpace(dateText)
	switch {
	case dateText != "" && hasClock:
		return dateText + " " + l.At + " " + c.String()
	case dateText != "":
		return dateText
	case hasClock:
		return l.Today + " " + l.At + " " + c.String()
	default:
		return ""
	}
}

// Resolver resolves phrases. It holds no state beyond its parser and is safe
// for concurrent use when the parser is.
type Resolver struct {
	parser PhraseParser
	lang   Language
}

// NewResolver returns a resolver that falls back to parser for anything the
// weekday rule does not cover. parser may be nil.
func NewResolver(parser PhraseParser, lang Language) *Resolver {
	return &Resolver{parser: parser, lang: lang}
}

// Resolve returns a wall-clock reading in anchor.Zone strictly after the
// anchor, or false when the phrase cannot be resolved to such a reading.
func (r *Resolver) Resolve(p Phrase, anchor Anchor) (walltime.Time, bool) {
	if p.IsEmpty() {
		return walltime.Time{}, false
	}

	clock, hasClock := NormalizeTime(p.TimeText)
	if !hasClock {
		clock, hasClock = p.DayPart.Clock()
	}

	now := anchor.Local()

	if hasClock && strings.TrimSpace(p.DateText) != "" {
		if wd, ok := FindWeekday(p.DateText); ok {
			// A reading in a spring-forward gap does not exist; round-trip it
			// through the zone to land on the real instant.
			next := NextWeekday(now, wd, clock)
			return walltime.FromInstant(next.In(anchor.Zone), anchor.Zone), true
		}
	}

	phrase := r.lang.Compose(p.DateText, clock, hasClock)
	if phrase == "" || r.parser == nil {
		return walltime.Time{}, false
	}

	t, found, err := r.parser.ParsePhrase(phrase, anchor)
	if err != nil || !found {
		return walltime.Time{}, false
	}

	local := walltime.FromInstant(t, anchor.Zone)
	if !local.After(now) {
		return walltime.Time{}, false
	}
	return local, true
}
