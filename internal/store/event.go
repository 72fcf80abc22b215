package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.StartAt, &e.EndAt,
		&e.RRule, &e.Timezone, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, owner_id, title, description, start_at, end_at, rrule, timezone, created_at`

func (s *EventStore) Create(ownerID int64, title, description string, startAt, endAt walltime.Time, rrule, timezone string) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (owner_id, title, description, start_at, end_at, rrule, timezone)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ownerID, title, description, startAt, endAt, rrule, timezone,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ownerID, id)
}

func (s *EventStore) GetByID(ownerID, id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ? AND owner_id = ?`, id, ownerID)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// ListByOwner returns all of the owner's events, latest start first.
func (s *EventStore) ListByOwner(ownerID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE owner_id = ? ORDER BY start_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(ownerID, id int64, title, description string, startAt, endAt walltime.Time, rrule, timezone string) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events
		 SET title = ?, description = ?, start_at = ?, end_at = ?, rrule = ?, timezone = ?
		 WHERE id = ? AND owner_id = ?`,
		title, description, startAt, endAt, rrule, timezone, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return s.GetByID(ownerID, id)
}

func (s *EventStore) Delete(ownerID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
