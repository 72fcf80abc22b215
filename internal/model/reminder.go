package model

import (
	"time"

	"github.com/dukerupert/autoagenda/internal/walltime"
)

const (
	FrequencyOnce      = "once"
	FrequencyRecurring = "recurring"
)

// Reminder fires once at RemindAt, or repeatedly when RRule is set.
type Reminder struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id"`
	TaskID      *int64        `json:"task_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Deadline    walltime.Time `json:"deadline"`
	RemindAt    walltime.Time `json:"remind_at"`
	Frequency   string        `json:"frequency"`
	RRule       string        `json:"rrule,omitempty"`
	NotifiedAt  *time.Time    `json:"notified_at"`
	CreatedAt   time.Time     `json:"created_at"`
}
