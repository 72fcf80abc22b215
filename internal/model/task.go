package model

import (
	"time"

	"github.com/dukerupert/autoagenda/internal/walltime"
)

const (
	TaskPending = "pending"
	TaskDone    = "done"
)

// Task is a singular entry. Date is the local due time; zero means untimed.
type Task struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        walltime.Time `json:"date"`
	Channel     string        `json:"channel"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at"`
}
