package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/autoagenda/internal/model"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Date,
		&t.Channel, &t.Status, &t.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

const taskCols = `id, owner_id, title, description, date, channel, status, created_at, completed_at`

// Create inserts a pending task. A zero date stores an untimed task.
func (s *TaskStore) Create(ownerID int64, title, description string, date walltime.Time, channel string) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (owner_id, title, description, date, channel) VALUES (?, ?, ?, ?, ?)`,
		ownerID, title, description, date, channel,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ownerID, id)
}

func (s *TaskStore) GetByID(ownerID, id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) list(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListByOwner returns the owner's tasks, newest first.
func (s *TaskStore) ListByOwner(ownerID int64) ([]model.Task, error) {
	return s.list(`SELECT `+taskCols+` FROM tasks WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
}

// ListScheduled returns the owner's tasks dated within [from, to], bounds
// included, ordered by date.
func (s *TaskStore) ListScheduled(ownerID int64, from, to walltime.Time) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks
		 WHERE owner_id = ? AND date IS NOT NULL AND date >= ? AND date <= ?
		 ORDER BY date ASC, id ASC`,
		ownerID, from, to,
	)
}

func (s *TaskStore) Complete(ownerID, id int64, at time.Time) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ? AND owner_id = ?`,
		model.TaskDone, at.UTC(), id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	return s.GetByID(ownerID, id)
}

func (s *TaskStore) Reopen(ownerID, id int64) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = NULL WHERE id = ? AND owner_id = ?`,
		model.TaskPending, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("reopen task: %w", err)
	}
	return s.GetByID(ownerID, id)
}

func (s *TaskStore) Delete(ownerID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
