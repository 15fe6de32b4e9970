package database

import (
	"context"
	"path/filepath"
	"testing"
)

// openTestDB initializes a SQLite database in a temp dir and runs the real
// migrations against it.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	for _, table := range []string{"migrations", "leaderboard_entries", "denylist_words"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Migrations are recorded and re-running is a no-op.
	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	id, err := db.ExecReturningID(
		"INSERT INTO leaderboard_entries (initials, level, round, passages_passed, entry_date) VALUES (?, ?, ?, ?, ?)",
		"ABC", 3, 7, 9, "2026-08-27",
	)
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("ExecReturningID returned %d, want positive id", id)
	}
}

func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO denylist_words (word) VALUES (?)", "unsuitable"); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	words, err := db.LoadDenylistWords()
	if err != nil {
		t.Fatalf("LoadDenylistWords failed: %v", err)
	}
	found := false
	for _, w := range words {
		if w == "unsuitable" {
			found = true
		}
	}
	if !found {
		t.Error("committed word not returned by LoadDenylistWords")
	}

	// Rolled-back inserts must not persist.
	tx, err = db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO denylist_words (word) VALUES (?)", "discarded"); err != nil {
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to roll back transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM denylist_words WHERE word = ?", "discarded").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Error("rolled-back word persisted")
	}
}
