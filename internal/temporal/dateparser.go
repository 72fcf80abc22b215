package temporal

import (
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// DateParser is a PhraseParser backed by go-dateparser with a preference for
// future dates.
type DateParser struct {
	parser    *dps.Parser
	languages []string
}

// NewDateParser returns a parser restricted to the given language codes.
func NewDateParser(languages ...string) *DateParser {
	return &DateParser{parser: &dps.Parser{}, languages: languages}
}

func (p *DateParser) ParsePhrase(phrase string, anchor Anchor) (time.Time, bool, error) {
	cfg := &dps.Configuration{
		Languages:           p.languages,
		CurrentTime:         anchor.Now.In(anchor.Zone),
		DefaultTimezone:     anchor.Zone,
		PreferredDateSource: dps.Future,
	}

	dt, err := p.parser.Parse(cfg, phrase)
	if err != nil {
		return time.Time{}, false, err
	}
	if dt.Time.IsZero() {
		return time.Time{}, false, nil
	}
	return dt.Time, true, nil
}
