// Package recurrence evaluates RFC 5545 recurrence rules against an anchor
// instant.
package recurrence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultMaxOccurrences bounds the instants returned for one rule in one
// query.
const DefaultMaxOccurrences = 5000

// Evaluator enumerates the instants of a rule anchored at a given instant.
// Returned instants are in the anchor's location.
type Evaluator interface {
	// FirstAtOrAfter returns the first rule instant at or after lower.
	FirstAtOrAfter(anchor time.Time, rule string, lower time.Time) (time.Time, bool, error)
	// Between returns the rule instants in [lo, hi], ordered.
	Between(anchor time.Time, rule string, lo, hi time.Time) ([]time.Time, error)
}

// RRuleEvaluator is an Evaluator backed by rrule-go.
type RRuleEvaluator struct {
	max    int
	logger *slog.Logger
}

// NewRRuleEvaluator returns an evaluator that truncates expansions at limit
// instants. A non-positive limit uses DefaultMaxOccurrences.
func NewRRuleEvaluator(limit int, logger *slog.Logger) *RRuleEvaluator {
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RRuleEvaluator{max: limit, logger: logger}
}

func compile(anchor time.Time, rule string) (*rrule.RRule, error) {
	opt, err := parseOption(rule)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = anchor
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return r, nil
}

func (e *RRuleEvaluator) FirstAtOrAfter(anchor time.Time, rule string, lower time.Time) (time.Time, bool, error) {
	r, err := compile(anchor, rule)
	if err != nil {
		return time.Time{}, false, err
	}
	next := r.After(lower.In(anchor.Location()), true)
	if next.IsZero() {
		return time.Time{}, false, nil
	}
	return next, true, nil
}

// Between walks the rule from its anchor and stops at hi or after the
// configured number of instants in [lo, hi], whichever comes first.
func (e *RRuleEvaluator) Between(anchor time.Time, rule string, lo, hi time.Time) ([]time.Time, error) {
	if hi.Before(lo) {
		return nil, nil
	}
	r, err := compile(anchor, rule)
	if err != nil {
		return nil, err
	}

	loc := anchor.Location()
	lo, hi = lo.In(loc), hi.In(loc)

	var instants []time.Time
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok || t.After(hi) {
			return instants, nil
		}
		if t.Before(lo) {
			continue
		}
		if len(instants) == e.max {
			e.logger.Warn("recurrence expansion truncated",
				"rule", Normalize(rule),
				"max", e.max,
				"truncated_at", t,
			)
			return instants, nil
		}
		instants = append(instants, t)
	}
}
