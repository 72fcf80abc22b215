package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/autoagenda/internal/database"
	"github.com/dukerupert/autoagenda/internal/walltime"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "Test", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func wt(t *testing.T, s string) walltime.Time {
	t.Helper()
	w, err := walltime.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return w
}
