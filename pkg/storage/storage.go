// Package storage owns the events schema, the full-text index, and the
// repository consumed by the HTTP layer and the CLI. It is backed by a
// single SQLite file; keyword search uses an FTS5 external-content index
// when the SQLite build provides it and falls back to case-insensitive
// substring matching when it does not.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rubiojr/eventfinder/pkg/db"
	"github.com/rubiojr/eventfinder/pkg/log"
)

var logger = log.ForService("storage")

// Storage is the single entry point to the events store. It is safe for
// concurrent use; the underlying database/sql pool hands each operation
// its own connection.
type Storage struct {
	db       *sql.DB
	fullText bool
}

// New opens (or creates) the database at dbPath, applies pragmas and
// schema migrations, and provisions the full-text index when the SQLite
// build supports FTS5. The capability is probed once here and cached for
// the life of the process.
func New(dbPath string) (*Storage, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				logger.Warnf("failed to close database: %v", closeErr)
			}
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	s := &Storage{db: sqlDB}

	if err := s.ensureSchema(); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warnf("failed to close database: %v", closeErr)
		}
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := s.ensureFullTextIndex(); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warnf("failed to close database: %v", closeErr)
		}
		return nil, fmt.Errorf("initializing full-text index: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection pool for probes and maintenance
// commands.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// FullTextAvailable reports whether keyword searches use the FTS5 index.
// When false the query builder transparently substitutes substring
// matching; callers never need to branch on this.
func (s *Storage) FullTextAvailable() bool {
	return s.fullText
}

// ensureSchema applies the embedded migrations: the events table plus
// indexes on date, created_at and the case-normalized text columns.
// Idempotent; fails only when the store cannot be written to.
func (s *Storage) ensureSchema() error {
	return db.NewMigrationManager(s.db).ApplyPendingMigrations()
}

// ensureFullTextIndex creates the external-content FTS5 table over
// title/description plus the triggers that mirror every insert, update
// and delete of the base table into it. The triggers fire inside the
// mutating statement's transaction, so base table and index can never
// diverge on a committed write.
//
// When the SQLite build lacks FTS5 this degrades to a no-op that leaves
// fullText false; the error never escapes.
func (s *Storage) ensureFullTextIndex() error {
	_, err := s.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS events_fts
		USING fts5(
			title,
			description,
			content='events',
			content_rowid='id'
		)
	`)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "fts5") {
			logger.Infof("SQLite FTS5 not available; keyword search will use substring matching")
			s.fullText = false
			return nil
		}
		return fmt.Errorf("creating events_fts: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS events_fts_ai AFTER INSERT ON events BEGIN
			INSERT INTO events_fts(rowid, title, description)
			VALUES (new.id, new.title, new.description);
		END`,
		`CREATE TRIGGER IF NOT EXISTS events_fts_ad AFTER DELETE ON events BEGIN
			INSERT INTO events_fts(events_fts, rowid, title, description)
			VALUES ('delete', old.id, old.title, old.description);
		END`,
		`CREATE TRIGGER IF NOT EXISTS events_fts_au AFTER UPDATE ON events BEGIN
			INSERT INTO events_fts(events_fts, rowid, title, description)
			VALUES ('delete', old.id, old.title, old.description);
			INSERT INTO events_fts(rowid, title, description)
			VALUES (new.id, new.title, new.description);
		END`,
	}

	for _, trigger := range triggers {
		if _, err := s.db.Exec(trigger); err != nil {
			return fmt.Errorf("creating FTS trigger: %w", err)
		}
	}

	s.fullText = true
	return nil
}

// IntegrityCheck runs PRAGMA quick_check and fails unless it reports ok.
func (s *Storage) IntegrityCheck() error {
	var result string
	if err := s.db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("running quick_check: %w", err)
	}
	if !strings.EqualFold(result, "ok") {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// FTSIntegrityCheck verifies the full-text index against the events
// table. A no-op when FTS5 is unavailable.
func (s *Storage) FTSIntegrityCheck() error {
	if !s.fullText {
		return nil
	}
	_, err := s.db.Exec("INSERT INTO events_fts(events_fts, rank) VALUES ('integrity-check', 1)")
	if err != nil {
		return fmt.Errorf("FTS integrity check failed: %w", err)
	}
	return nil
}

// FTSRebuild rebuilds the full-text index from the events table.
func (s *Storage) FTSRebuild() error {
	if !s.fullText {
		return fmt.Errorf("FTS5 not available in this build")
	}
	if _, err := s.db.Exec("INSERT INTO events_fts(events_fts) VALUES ('rebuild')"); err != nil {
		return fmt.Errorf("rebuilding FTS index: %w", err)
	}
	return nil
}

// Optimize runs PRAGMA optimize.
func (s *Storage) Optimize() error {
	_, err := s.db.Exec("PRAGMA optimize")
	return err
}

// Analyze updates query planner statistics.
func (s *Storage) Analyze() error {
	_, err := s.db.Exec("ANALYZE")
	return err
}

// Vacuum defragments the database file.
func (s *Storage) Vacuum() error {
	_, err := s.db.Exec("VACUUM")
	return err
}

// WALCheckpoint flushes the write-ahead log into the main database file.
func (s *Storage) WALCheckpoint() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}
