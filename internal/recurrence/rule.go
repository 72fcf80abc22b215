package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/teambition/rrule-go"
)

// ErrMalformedRule is returned when a rule string cannot be parsed or
// expanded.
var ErrMalformedRule = errors.New("malformed recurrence rule")

var weekdayAbbrev = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Normalize strips whitespace, uppercases the rule and removes a leading
// "RRULE:" property name.
func Normalize(rule string) string {
	rule = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, rule)
	rule = strings.ToUpper(rule)
	return strings.TrimPrefix(rule, "RRULE:")
}

func parseOption(rule string) (*rrule.ROption, error) {
	rule = Normalize(rule)
	if rule == "" {
		return nil, fmt.Errorf("%w: empty rule", ErrMalformedRule)
	}
	if !hasFreq(rule) {
		return nil, fmt.Errorf("%w: FREQ is required", ErrMalformedRule)
	}
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return opt, nil
}

func hasFreq(rule string) bool {
	for _, part := range strings.Split(rule, ";") {
		if strings.HasPrefix(part, "FREQ=") {
			return true
		}
	}
	return false
}

// Validate reports whether rule can be evaluated.
func Validate(rule string) error {
	_, err := parseOption(rule)
	return err
}

// Describe returns a human-readable description of the rule, or "" when the
// rule does not parse.
func Describe(rule string) string {
	opt, err := parseOption(rule)
	if err != nil {
		return ""
	}

	interval := opt.Interval
	if interval < 1 {
		interval = 1
	}

	var desc string
	switch opt.Freq {
	case rrule.SECONDLY, rrule.MINUTELY, rrule.HOURLY:
		unit := map[rrule.Frequency]string{rrule.SECONDLY: "second", rrule.MINUTELY: "minute", rrule.HOURLY: "hour"}[opt.Freq]
		if interval > 1 {
			desc = fmt.Sprintf("Repeats every %d %ss", interval, unit)
		} else {
			desc = "Repeats every " + unit
		}
	case rrule.DAILY:
		if interval > 1 {
			desc = fmt.Sprintf("Repeats every %d days", interval)
		} else {
			desc = "Repeats daily"
		}
	case rrule.WEEKLY:
		desc = "Repeats weekly"
		if interval > 1 {
			desc = fmt.Sprintf("Repeats every %d weeks", interval)
		}
		if len(opt.Byweekday) > 0 {
			names := make([]string, 0, len(opt.Byweekday))
			for i := range opt.Byweekday {
				names = append(names, weekdayAbbrev[opt.Byweekday[i].Day()])
			}
			desc += " on " + strings.Join(names, ", ")
		}
	case rrule.MONTHLY:
		desc = "Repeats monthly"
		if interval > 1 {
			desc = fmt.Sprintf("Repeats every %d months", interval)
		}
		if len(opt.Bymonthday) == 1 {
			desc += fmt.Sprintf(" on day %d", opt.Bymonthday[0])
		}
	case rrule.YEARLY:
		desc = "Repeats yearly"
		if interval > 1 {
			desc = fmt.Sprintf("Repeats every %d years", interval)
		}
	}

	if opt.Count > 0 {
		desc += fmt.Sprintf(", %d times", opt.Count)
	}
	if !opt.Until.IsZero() {
		desc += ", until " + opt.Until.Format("Jan 2, 2006")
	}
	return desc
}
