// Package agenda merges tasks, one-off events and expanded recurring events
// into a single ordered list for a query window.
package agenda

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/temporal"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

// TaskSource returns an owner's tasks whose date falls in [from, to].
type TaskSource interface {
	ListScheduled(ownerID int64, from, to walltime.Time) ([]model.Task, error)
}

// EventSource returns all of an owner's events, recurring or not.
type EventSource interface {
	ListByOwner(ownerID int64) ([]model.Event, error)
}

type Materializer struct {
	tasks  TaskSource
	events EventSource
	eval   recurrence.Evaluator
	zone   *time.Location
	logger *slog.Logger
}

// New returns a materializer working in zone.
func New(tasks TaskSource, events EventSource, eval recurrence.Evaluator, zone *time.Location, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		tasks:  tasks,
		events: events,
		eval:   eval,
		zone:   zone,
		logger: logger,
	}
}

// Zone returns the working zone.
func (m *Materializer) Zone() *time.Location {
	return m.zone
}

// Bounds converts caller-supplied window bounds into local readings in the
// working zone.
func (m *Materializer) Bounds(from, to string) (walltime.Time, walltime.Time, error) {
	f, err := walltime.ParseBound(from, m.zone)
	if err != nil {
		return walltime.Time{}, walltime.Time{}, &PhaseError{Phase: PhaseResolution, Err: err}
	}
	t, err := walltime.ParseBound(to, m.zone)
	if err != nil {
		return walltime.Time{}, walltime.Time{}, &PhaseError{Phase: PhaseResolution, Err: err}
	}
	return f, t, nil
}

// Materialize returns every occurrence overlapping [from, to], sorted by
// start. Entries without a start sort last.
func (m *Materializer) Materialize(ownerID int64, from, to walltime.Time) ([]Item, error) {
	items := []Item{}

	tasks, err := m.tasks.ListScheduled(ownerID, from, to)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseStorage, Err: err}
	}
	for _, t := range tasks {
		if t.Date.IsZero() || t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		items = append(items, taskItem(t))
	}

	events, err := m.events.ListByOwner(ownerID)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseStorage, Err: err}
	}
	for _, e := range events {
		if !e.Recurring() {
			if overlaps(e.StartAt, e.EndAt, from, to) {
				items = append(items, eventItem(e, e.StartAt, e.EndAt, false))
			}
			continue
		}

		occ, err := m.expand(e, from, to)
		if err != nil {
			m.logger.Error("recurrence expansion failed", "event_id", e.ID, "rrule", e.RRule, "error", err)
			return nil, &PhaseError{Phase: PhaseEvaluation, EventID: e.ID, Err: err}
		}
		items = append(items, occ...)
	}

	slices.SortStableFunc(items, compareItems)
	return items, nil
}

func (m *Materializer) expand(e model.Event, from, to walltime.Time) ([]Item, error) {
	loc, err := m.eventZone(e)
	if err != nil {
		return nil, err
	}

	dur := e.Duration()
	anchor := e.StartAt.In(loc)

	// Widen the lower bound by the duration so an occurrence already running
	// at the start of the window is still returned.
	lo := from.In(m.zone).Add(-dur).In(loc)
	hi := to.In(m.zone).In(loc)

	instants, err := m.eval.Between(anchor, e.RRule, lo, hi)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, inst := range instants {
		start := walltime.FromInstant(inst, loc)
		end := start.Add(dur)
		if overlaps(start, end, from, to) {
			items = append(items, eventItem(e, start, end, true))
		}
	}
	return items, nil
}

func (m *Materializer) eventZone(e model.Event) (*time.Location, error) {
	if e.Timezone == "" {
		return m.zone, nil
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("event timezone %q: %w", e.Timezone, err)
	}
	return loc, nil
}

// FirstOccurrence anchors a recurring entry created with a time of day but no
// date: today at c, or tomorrow when that has already passed, then the first
// rule instant at or after that candidate. ok is false when the rule has no
// such instant.
func (m *Materializer) FirstOccurrence(rule string, c temporal.Clock, now time.Time) (walltime.Time, bool, error) {
	local := walltime.FromInstant(now, m.zone)
	candidate := local.At(c.Hour, c.Minute)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	inst := candidate.In(m.zone)
	first, ok, err := m.eval.FirstAtOrAfter(inst, rule, inst)
	if err != nil {
		return walltime.Time{}, false, &PhaseError{Phase: PhaseEvaluation, Err: err}
	}
	if !ok {
		return walltime.Time{}, false, nil
	}
	return walltime.FromInstant(first, m.zone), true, nil
}

// overlaps reports whether [start, end] and [from, to] intersect, bounds
// included.
func overlaps(start, end, from, to walltime.Time) bool {
	return !end.Before(from) && !start.After(to)
}
