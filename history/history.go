// Package history persists installation run outcomes to a local sqlite
// database so `devbox history` can show what was installed when, and how it
// went.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	toolbox "github.com/johndanger/developer-toolbox"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a sqlite-backed run history. It implements toolbox.RunRecorder.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path and brings
// its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ComponentRecord is one component's export outcome within a recorded run.
type ComponentRecord struct {
	Component string
	Status    string
	Reason    string
}

// Record is one persisted installation run.
type Record struct {
	ID              int64
	Name            string
	Selection       []string
	LanguageServers []string
	Result          string
	StartedAt       time.Time
	FinishedAt      time.Time
	Components      []ComponentRecord
}

// RecordRun persists a finished run and its per-component outcomes.
func (s *Store) RecordRun(ctx context.Context, run *toolbox.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (name, selection, language_servers, result, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Name,
		run.Selection.String(),
		strings.Join(run.LanguageServers, ","),
		string(run.Result),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, id := range run.ExportedComponents() {
		outcome := run.Outcomes[id]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_components (run_id, position, component, status, reason)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, i, id, string(outcome.Status), outcome.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert component outcome: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, selection, language_servers, result, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var selection, languageServers string
		if err := rows.Scan(&rec.ID, &rec.Name, &selection, &languageServers, &rec.Result, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.Selection = splitList(selection)
		rec.LanguageServers = splitList(languageServers)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		components, err := s.runComponents(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Components = components
	}
	return records, nil
}

func (s *Store) runComponents(ctx context.Context, runID int64) ([]ComponentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT component, status, reason FROM run_components
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComponentRecord
	for rows.Next() {
		var cr ComponentRecord
		if err := rows.Scan(&cr.Component, &cr.Status, &cr.Reason); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
