package reminder

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/autoagenda/internal/database"
	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/store"
	"github.com/dukerupert/autoagenda/internal/walltime"
	"github.com/dukerupert/autoagenda/internal/websocket"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []websocket.Message
	to   []int64
}

func (n *recordingNotifier) Broadcast(ownerID int64, msg websocket.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	n.to = append(n.to, ownerID)
}

func setup(t *testing.T) (*Sweeper, *store.ReminderStore, *recordingNotifier, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := store.NewUserStore(db).Create("ana@example.com", "Ana", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reminders := store.NewReminderStore(db)
	notifier := &recordingNotifier{}
	s := NewSweeper(reminders, recurrence.NewRRuleEvaluator(100, logger), notifier, loc, logger)
	s.now = func() time.Time { return time.Date(2024, 3, 13, 10, 0, 0, 0, loc) }
	return s, reminders, notifier, u.ID
}

func TestSweepFiresDueOnce(t *testing.T) {
	s, reminders, notifier, owner := setup(t)

	due, err := reminders.Create(model.Reminder{OwnerID: owner, Title: "pagar luz", RemindAt: walltime.Date(2024, 3, 13, 9, 30, 0)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := reminders.Create(model.Reminder{OwnerID: owner, Title: "later", RemindAt: walltime.Date(2024, 3, 13, 11, 0, 0)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := s.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("fired %d, want 1", n)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Type != "reminder_due" || notifier.sent[0].ID != due.ID {
		t.Errorf("notifications = %+v", notifier.sent)
	}
	if notifier.to[0] != owner {
		t.Errorf("notified owner %d, want %d", notifier.to[0], owner)
	}

	got, err := reminders.GetByID(owner, due.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NotifiedAt == nil {
		t.Error("expected notified_at to be set")
	}

	n, err = s.Sweep()
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep fired %d, want 0", n)
	}
}

func TestSweepReschedulesRecurring(t *testing.T) {
	s, reminders, notifier, owner := setup(t)

	r, err := reminders.Create(model.Reminder{
		OwnerID:   owner,
		Title:     "regar plantas",
		RemindAt:  walltime.Date(2024, 3, 11, 9, 0, 0),
		Frequency: model.FrequencyRecurring,
		RRule:     "FREQ=WEEKLY;BYDAY=MO",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Sweep(); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.sent))
	}

	got, err := reminders.GetByID(owner, r.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RemindAt.String() != "2024-03-18T09:00:00" {
		t.Errorf("remind_at = %q, want 2024-03-18T09:00:00", got.RemindAt)
	}
	if got.NotifiedAt != nil {
		t.Error("rescheduled reminder should be pending again")
	}
}

type failingReschedule struct {
	*store.ReminderStore
	fail bool
}

func (f *failingReschedule) Reschedule(id int64, next walltime.Time) error {
	if f.fail {
		return errors.New("database is locked")
	}
	return f.ReminderStore.Reschedule(id, next)
}

func TestSweepRetriesWhenRescheduleFails(t *testing.T) {
	s, reminders, notifier, owner := setup(t)
	source := &failingReschedule{ReminderStore: reminders, fail: true}
	s.source = source

	r, err := reminders.Create(model.Reminder{
		OwnerID:   owner,
		Title:     "regar plantas",
		RemindAt:  walltime.Date(2024, 3, 11, 9, 0, 0),
		Frequency: model.FrequencyRecurring,
		RRule:     "FREQ=WEEKLY;BYDAY=MO",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := s.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 0 || len(notifier.sent) != 0 {
		t.Fatalf("fired %d with %d notifications, want none", n, len(notifier.sent))
	}
	got, err := reminders.GetByID(owner, r.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NotifiedAt != nil {
		t.Error("failed reschedule should leave the reminder pending")
	}
	if got.RemindAt.String() != "2024-03-11T09:00:00" {
		t.Errorf("remind_at = %q, want unchanged", got.RemindAt)
	}

	source.fail = false
	n, err = s.Sweep()
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("second sweep fired %d, want 1", n)
	}
	got, err = reminders.GetByID(owner, r.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RemindAt.String() != "2024-03-18T09:00:00" {
		t.Errorf("remind_at = %q, want 2024-03-18T09:00:00", got.RemindAt)
	}
}

func TestSweepMarksFinishedRecurring(t *testing.T) {
	s, reminders, notifier, owner := setup(t)

	r, err := reminders.Create(model.Reminder{
		OwnerID:   owner,
		Title:     "última cuota",
		RemindAt:  walltime.Date(2024, 3, 11, 9, 0, 0),
		Frequency: model.FrequencyRecurring,
		RRule:     "FREQ=WEEKLY;COUNT=1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if n, err := s.Sweep(); err != nil || n != 1 {
		t.Fatalf("Sweep = %d, %v, want 1", n, err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.sent))
	}
	got, err := reminders.GetByID(owner, r.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NotifiedAt == nil {
		t.Error("exhausted recurring reminder should be marked notified")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, _, _, _ := setup(t)
	if err := s.Start("every now and then"); err == nil {
		s.Stop()
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	s, _, _, _ := setup(t)
	if err := s.Start("@every 1h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start("@every 1h"); err == nil {
		t.Error("expected error starting twice")
	}
	s.Stop()
	s.Stop()
}
