package agenda

import (
	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

type ItemType string

const (
	TypeTask  ItemType = "task"
	TypeEvent ItemType = "event"
)

// Item is one materialized occurrence. Task fields and event fields are
// mutually exclusive; unused ones marshal as null.
type Item struct {
	Type        ItemType `json:"type"`
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`

	Date    walltime.Time `json:"date"`
	Channel *string       `json:"channel"`
	Status  *string       `json:"status"`

	StartAt        walltime.Time `json:"start_at"`
	EndAt          walltime.Time `json:"end_at"`
	RRule          *string       `json:"rrule"`
	Timezone       *string       `json:"timezone"`
	IsOccurrence   bool          `json:"is_occurrence"`
	RecurrenceText string        `json:"recurrence_text,omitempty"`
}

func taskItem(t model.Task) Item {
	it := Item{
		Type:        TypeTask,
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Status:      &t.Status,
	}
	if t.Channel != "" {
		it.Channel = &t.Channel
	}
	return it
}

func eventItem(e model.Event, start, end walltime.Time, occurrence bool) Item {
	it := Item{
		Type:         TypeEvent,
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		StartAt:      start,
		EndAt:        end,
		Timezone:     &e.Timezone,
		IsOccurrence: occurrence,
	}
	if e.RRule != "" {
		it.RRule = &e.RRule
		it.RecurrenceText = recurrence.Describe(e.RRule)
	}
	return it
}

// Start is the reading the item sorts by: StartAt for events, Date for
// tasks. ok is false when the item has neither.
func (it Item) Start() (walltime.Time, bool) {
	switch {
	case it.Type == TypeEvent && !it.StartAt.IsZero():
		return it.StartAt, true
	case it.Type == TypeTask && !it.Date.IsZero():
		return it.Date, true
	}
	return walltime.Time{}, false
}

func compareItems(a, b Item) int {
	as, aok := a.Start()
	bs, bok := b.Start()
	switch {
	case aok && bok:
		return as.Compare(bs)
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}
