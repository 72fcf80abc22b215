// Package reminder fires due reminders on a cron schedule.
package reminder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/walltime"
	"github.com/dukerupert/autoagenda/internal/websocket"
)

type Source interface {
	ListDue(now walltime.Time) ([]model.Reminder, error)
	MarkNotified(id int64, at time.Time) error
	Reschedule(id int64, next walltime.Time) error
}

type Notifier interface {
	Broadcast(ownerID int64, msg websocket.Message)
}

// Sweeper notifies owners of reminders whose remind_at has passed. Recurring
// reminders move on to their next rule instant after each notification.
type Sweeper struct {
	mu       sync.Mutex
	source   Source
	eval     recurrence.Evaluator
	notifier Notifier
	zone     *time.Location
	logger   *slog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewSweeper(source Source, eval recurrence.Evaluator, notifier Notifier, zone *time.Location, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		source:   source,
		eval:     eval,
		notifier: notifier,
		zone:     zone,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs Sweep on schedule, a robfig/cron spec such as "@every 1m".
func (s *Sweeper) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	c := cron.New(
		cron.WithLocation(s.zone),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error("reminder sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("reminder sweeper started", "schedule", schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep processes every due reminder once and returns how many fired.
func (s *Sweeper) Sweep() (int, error) {
	now := s.now()
	due, err := s.source.ListDue(walltime.FromInstant(now, s.zone))
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	fired := 0
	for _, r := range due {
		if !s.settle(r, now) {
			continue
		}
		fired++
		s.notifier.Broadcast(r.OwnerID, websocket.NewMessage(websocket.EntityReminder, websocket.ActionDue, r.ID))
	}

	if fired > 0 {
		s.logger.Info("reminders fired", "count", fired)
	}
	return fired, nil
}

// settle records that r fired. A recurring reminder moves to its next rule
// instant; one that has none left, or a one-off, is marked notified. It
// reports false when nothing was stored, leaving r due for the next sweep.
func (s *Sweeper) settle(r model.Reminder, now time.Time) bool {
	if r.RRule != "" {
		anchor := r.RemindAt.In(s.zone)
		next, ok, err := s.eval.FirstAtOrAfter(anchor, r.RRule, now.Add(time.Nanosecond))
		if err != nil {
			s.logger.Error("reminder recurrence failed", "reminder_id", r.ID, "rrule", r.RRule, "error", err)
			return false
		}
		if ok {
			if err := s.source.Reschedule(r.ID, walltime.FromInstant(next, s.zone)); err != nil {
				s.logger.Error("reschedule reminder", "reminder_id", r.ID, "error", err)
				return false
			}
			return true
		}
		s.logger.Debug("reminder recurrence finished", "reminder_id", r.ID)
	}

	if err := s.source.MarkNotified(r.ID, now); err != nil {
		s.logger.Error("mark reminder notified", "reminder_id", r.ID, "error", err)
		return false
	}
	return true
}
