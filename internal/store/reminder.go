package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

func scanReminder(scanner interface{ Scan(...any) error }) (*model.Reminder, error) {
	var r model.Reminder
	var taskID sql.NullInt64
	var notifiedAt sql.NullTime

	err := scanner.Scan(
		&r.ID, &r.OwnerID, &taskID, &r.Title, &r.Description, &r.Deadline,
		&r.RemindAt, &r.Frequency, &r.RRule, &notifiedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		r.TaskID = &taskID.Int64
	}
	if notifiedAt.Valid {
		r.NotifiedAt = &notifiedAt.Time
	}
	return &r, nil
}

const reminderCols = `id, owner_id, task_id, title, description, deadline, remind_at, frequency, rrule, notified_at, created_at`

// Create inserts a reminder. OwnerID, TaskID, Title, Description, Deadline,
// RemindAt, Frequency and RRule are taken from r.
func (s *ReminderStore) Create(r model.Reminder) (*model.Reminder, error) {
	var taskID sql.NullInt64
	if r.TaskID != nil {
		taskID = sql.NullInt64{Int64: *r.TaskID, Valid: true}
	}
	if r.Frequency == "" {
		r.Frequency = model.FrequencyOnce
	}

	result, err := s.db.Exec(
		`INSERT INTO reminders (owner_id, task_id, title, description, deadline, remind_at, frequency, rrule)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OwnerID, taskID, r.Title, r.Description, r.Deadline, r.RemindAt, r.Frequency, r.RRule,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(r.OwnerID, id)
}

func (s *ReminderStore) GetByID(ownerID, id int64) (*model.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM reminders WHERE id = ? AND owner_id = ?`, id, ownerID)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) list(query string, args ...any) ([]model.Reminder, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// ListByOwner returns the owner's reminders by remind_at, unscheduled last.
func (s *ReminderStore) ListByOwner(ownerID int64) ([]model.Reminder, error) {
	return s.list(
		`SELECT `+reminderCols+` FROM reminders WHERE owner_id = ?
		 ORDER BY remind_at IS NULL, remind_at ASC, id ASC`,
		ownerID,
	)
}

// ListDue returns unnotified reminders whose remind_at is at or before now,
// across all owners.
func (s *ReminderStore) ListDue(now walltime.Time) ([]model.Reminder, error) {
	return s.list(
		`SELECT `+reminderCols+` FROM reminders
		 WHERE notified_at IS NULL AND remind_at IS NOT NULL AND remind_at <= ?
		 ORDER BY remind_at ASC, id ASC`,
		now,
	)
}

func (s *ReminderStore) MarkNotified(id int64, at time.Time) error {
	_, err := s.db.Exec(`UPDATE reminders SET notified_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark reminder notified: %w", err)
	}
	return nil
}

// Reschedule moves a reminder to next and clears its notified mark.
func (s *ReminderStore) Reschedule(id int64, next walltime.Time) error {
	_, err := s.db.Exec(`UPDATE reminders SET remind_at = ?, notified_at = NULL WHERE id = ?`, next, id)
	if err != nil {
		return fmt.Errorf("reschedule reminder: %w", err)
	}
	return nil
}

func (s *ReminderStore) Delete(ownerID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}
