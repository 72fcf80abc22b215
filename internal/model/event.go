package model

import (
	"time"

	"github.com/dukerupert/autoagenda/internal/walltime"
)

// Event is a one-off event, or the anchor of a recurring one when RRule is
// set. StartAt and EndAt are wall-clock readings in Timezone.
type Event struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartAt     walltime.Time `json:"start_at"`
	EndAt       walltime.Time `json:"end_at"`
	RRule       string        `json:"rrule,omitempty"`
	Timezone    string        `json:"timezone"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (e Event) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}

func (e Event) Recurring() bool {
	return e.RRule != ""
}
