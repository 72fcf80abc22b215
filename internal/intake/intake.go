// Package intake turns free text into stored tasks and events.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/autoagenda/internal/agenda"
	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/nlu"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/temporal"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

var (
	ErrMissingStartTime  = errors.New("no start time found in text")
	ErrUnresolvableDate  = errors.New("date could not be resolved to a future time")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrNoFirstOccurrence = errors.New("recurrence has no occurrence after now")
)

type TaskCreator interface {
	Create(ownerID int64, title, description string, date walltime.Time, channel string) (*model.Task, error)
}

type EventCreator interface {
	Create(ownerID int64, title, description string, startAt, endAt walltime.Time, rrule, timezone string) (*model.Event, error)
}

// Anchorer finds the first occurrence of a rule at a time of day.
type Anchorer interface {
	FirstOccurrence(rule string, c temporal.Clock, now time.Time) (walltime.Time, bool, error)
}

type Service struct {
	extractor nlu.Extractor
	resolver  *temporal.Resolver
	anchorer  Anchorer
	tasks     TaskCreator
	events    EventCreator
	zone      *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(extractor nlu.Extractor, resolver *temporal.Resolver, anchorer Anchorer, tasks TaskCreator, events EventCreator, zone *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor: extractor,
		resolver:  resolver,
		anchorer:  anchorer,
		tasks:     tasks,
		events:    events,
		zone:      zone,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) anchor() temporal.Anchor {
	return temporal.Anchor{Now: s.now().In(s.zone), Zone: s.zone}
}

// TasksFromText extracts one or more tasks from text and stores each one.
// A task whose date cannot be resolved is stored without a date.
func (s *Service) TasksFromText(ctx context.Context, ownerID int64, text string) ([]model.Task, error) {
	anchor := s.anchor()
	drafts, err := s.extractor.ExtractTasks(ctx, nlu.Request{Text: text, Now: anchor.Now, Zone: anchor.Zone})
	if err != nil {
		return nil, fmt.Errorf("extract tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(drafts))
	for _, d := range drafts {
		date, ok := s.resolver.Resolve(d.Phrase, anchor)
		if !ok && !d.Phrase.IsEmpty() {
			s.logger.Debug("task date unresolved", "date_text", d.Phrase.DateText, "time_text", d.Phrase.TimeText, "day_part", d.Phrase.DayPart)
		}

		task, err := s.tasks.Create(ownerID, d.Title, d.Description, date, d.Channel)
		if err != nil {
			return nil, &agenda.PhaseError{Phase: agenda.PhaseStorage, Err: err}
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// EventFromText extracts a single event from text and stores it. A start
// time is required. The date comes from the text, or from the first
// occurrence of the recurrence rule when the text gives none.
func (s *Service) EventFromText(ctx context.Context, ownerID int64, text string) (*model.Event, error) {
	anchor := s.anchor()
	draft, err := s.extractor.ExtractEvent(ctx, nlu.Request{Text: text, Now: anchor.Now, Zone: anchor.Zone})
	if err != nil {
		return nil, fmt.Errorf("extract event: %w", err)
	}

	startClock, ok := temporal.NormalizeTime(draft.StartTime)
	if !ok {
		return nil, ErrMissingStartTime
	}

	rule := recurrence.Normalize(draft.RRule)
	if rule != "" {
		if err := recurrence.Validate(rule); err != nil {
			return nil, &agenda.PhaseError{Phase: agenda.PhaseEvaluation, Err: err}
		}
	}

	var start walltime.Time
	switch {
	case draft.DateText != "":
		start, ok = s.resolver.Resolve(temporal.Phrase{DateText: draft.DateText, TimeText: startClock.String()}, anchor)
		if !ok {
			return nil, ErrUnresolvableDate
		}
	case rule != "":
		start, ok, err = s.anchorer.FirstOccurrence(rule, startClock, anchor.Now)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoFirstOccurrence
		}
	default:
		return nil, ErrUnresolvableDate
	}

	end, err := eventEnd(start, draft)
	if err != nil {
		return nil, err
	}

	ev, err := s.events.Create(ownerID, draft.Title, draft.Description, start, end, rule, s.zone.String())
	if err != nil {
		return nil, &agenda.PhaseError{Phase: agenda.PhaseStorage, Err: err}
	}
	return ev, nil
}

// eventEnd places the end time on the start date, or adds the duration when
// the text gave no usable end time.
func eventEnd(start walltime.Time, draft nlu.EventDraft) (walltime.Time, error) {
	if c, ok := temporal.NormalizeTime(draft.EndTime); ok {
		end := start.At(c.Hour, c.Minute)
		if !end.After(start) {
			return walltime.Time{}, ErrEndBeforeStart
		}
		return end, nil
	}
	minutes := draft.DurationMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return start.Add(time.Duration(minutes) * time.Minute), nil
}
