// Package store handles SQLite persistence of the history and the session log.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store wraps SQLite access. It implements history.Backend.
type Store struct {
	db *sql.DB
	// Strict aborts Load on a corrupt history row instead of skipping it.
	Strict bool
	// Skipped counts rows dropped by the last lenient Load.
	Skipped int
}

var _ history.Backend = (*Store)(nil)

// Open opens or creates the SQLite database and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Load reads the full history table.
func (s *Store) Load(ctx context.Context) (*history.History, error) {
	s.Skipped = 0
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_key, word, accepted, length, frequency FROM history ORDER BY word_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	h := history.New()
	for rows.Next() {
		var rec model.Record
		var accepted int
		if err := rows.Scan(&rec.Key, &rec.Word, &accepted, &rec.Length, &rec.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Accepted = accepted != 0 || rec.Frequency > 0
		if rec.Key == "" || rec.Word == "" || rec.Length < 0 || rec.Frequency < 0 {
			if s.Strict {
				return nil, fmt.Errorf("history row %q: %w", rec.Key, model.ErrCorruptData)
			}
			s.Skipped++
			continue
		}
		h.Put(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return h, nil
}

// Flush replaces the history table with h in one transaction.
func (s *Store) Flush(ctx context.Context, h *history.History) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin flush: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history (word_key, word, accepted, length, frequency) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, rec := range h.Records() {
		if _, err = stmt.ExecContext(ctx, rec.Key, rec.Word, boolInt(rec.Accepted), rec.Length, rec.Frequency); err != nil {
			return fmt.Errorf("failed to insert %q: %w", rec.Key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}

// InsertSession appends a session to the log and returns its id.
func (s *Store) InsertSession(ctx context.Context, sum model.SessionSummary) (string, error) {
	id := sum.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, central, letters, policy, attempts, submitted, accepted, rejected, found, total, completed, persisted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		sum.StartedAt.UTC().Format(time.RFC3339Nano),
		sum.EndedAt.UTC().Format(time.RFC3339Nano),
		sum.Central,
		sum.Letters,
		sum.Policy.String(),
		sum.Attempts,
		sum.Submitted,
		sum.Accepted,
		sum.Rejected,
		sum.Found,
		sum.Total,
		boolInt(sum.Completed),
		boolInt(sum.Persisted),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	return id, nil
}

// ListSessions returns the most recent sessions, oldest first. A non-positive
// limit returns every session.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, central, letters, policy, attempts, submitted, accepted, rejected, found, total, completed, persisted
		 FROM (SELECT * FROM sessions ORDER BY ended_at DESC LIMIT ?)
		 ORDER BY ended_at ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		var startedAt, endedAt, policy string
		var completed, persisted int
		if err := rows.Scan(&sum.ID, &startedAt, &endedAt, &sum.Central, &sum.Letters, &policy,
			&sum.Attempts, &sum.Submitted, &sum.Accepted, &sum.Rejected, &sum.Found, &sum.Total,
			&completed, &persisted); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if sum.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("session %s: %w", sum.ID, err)
		}
		if sum.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, fmt.Errorf("session %s: %w", sum.ID, err)
		}
		if sum.Policy, err = model.ParsePolicy(policy); err != nil {
			return nil, fmt.Errorf("session %s: %w", sum.ID, err)
		}
		sum.Completed = completed != 0
		sum.Persisted = persisted != 0
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
