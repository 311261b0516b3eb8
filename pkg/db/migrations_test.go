package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	})
	return sqlDB
}

func TestGetAvailableMigrations(t *testing.T) {
	mm := NewMigrationManager(newTestDB(t))

	migrations, err := mm.GetAvailableMigrations()
	if err != nil {
		t.Fatalf("GetAvailableMigrations failed: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("Expected embedded migrations to be available")
	}

	// Versions come back ordered and start at 1.
	if migrations[0].Version != 1 {
		t.Errorf("Expected first migration version 1, got %d", migrations[0].Version)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("Migrations out of order: %d after %d", migrations[i].Version, migrations[i-1].Version)
		}
	}
}

func TestApplyPendingMigrations(t *testing.T) {
	sqlDB := newTestDB(t)
	mm := NewMigrationManager(sqlDB)

	if err := mm.ApplyPendingMigrations(); err != nil {
		t.Fatalf("ApplyPendingMigrations failed: %v", err)
	}

	// The events table exists afterwards.
	var name string
	err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'events'").Scan(&name)
	if err != nil {
		t.Fatalf("Expected events table after migrations: %v", err)
	}

	pending, err := mm.GetPendingMigrations()
	if err != nil {
		t.Fatalf("GetPendingMigrations failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no pending migrations, got %d", len(pending))
	}

	// Running again is a no-op.
	if err := mm.ApplyPendingMigrations(); err != nil {
		t.Fatalf("Second ApplyPendingMigrations failed: %v", err)
	}

	applied, err := mm.GetAppliedMigrations()
	if err != nil {
		t.Fatalf("GetAppliedMigrations failed: %v", err)
	}
	available, err := mm.GetAvailableMigrations()
	if err != nil {
		t.Fatalf("GetAvailableMigrations failed: %v", err)
	}
	if len(applied) != len(available) {
		t.Errorf("Expected %d applied migrations, got %d", len(available), len(applied))
	}
}
