package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/taskdesk/internal/db"
	"github.com/alexanderramin/taskdesk/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// TestStore bundles the local repositories over one test database.
type TestStore struct {
	DB       *sql.DB
	UoW      db.UnitOfWork
	Sessions *repository.SQLiteSessionRepo
	Prefs    *repository.SQLitePrefsRepo
}

// NewTestStore opens a fresh in-memory store.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()
	database := NewTestDB(t)
	return &TestStore{
		DB:       database,
		UoW:      db.NewSQLiteUnitOfWork(database),
		Sessions: repository.NewSQLiteSessionRepo(database),
		Prefs:    repository.NewSQLitePrefsRepo(database),
	}
}
