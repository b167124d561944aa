// Package sqlite provides a SQLite-backed conversation history store.
//
// The JSONL history log is the default backend; SQLite is selected via
// configuration when feedback queries over a long history matter more
// than a grep-able file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore persists conversation turns in a SQLite database.
type HistoryStore struct {
	db   *sql.DB
	path string
}

// NewHistoryStore opens (or creates) the history database at the
// given path and applies pending migrations.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	// WAL mode for better concurrency between chat and history reads.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &HistoryStore{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Append records a completed turn.
func (s *HistoryStore) Append(ctx context.Context, turn domain.ConversationTurn) error {
	retrieved, err := json.Marshal(turn.Retrieved)
	if err != nil {
		return fmt.Errorf("marshal retrieved refs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (id, ts, query, answer, tier, retrieved, feedback)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.Timestamp.UTC().Format(time.RFC3339), turn.Query,
		turn.Answer, string(turn.Tier), string(retrieved), turn.Feedback,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// Recent returns up to limit turns, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, query, answer, tier, retrieved, feedback
		FROM conversation_turns
		ORDER BY ts DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var (
			turn      domain.ConversationTurn
			ts        string
			tier      string
			retrieved sql.NullString
		)
		if err := rows.Scan(&turn.ID, &ts, &turn.Query, &turn.Answer, &tier, &retrieved, &turn.Feedback); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Tier = domain.AnswerTier(tier)
		if turn.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parse turn timestamp: %w", err)
		}
		if retrieved.Valid && retrieved.String != "" && retrieved.String != "null" {
			if err := json.Unmarshal([]byte(retrieved.String), &turn.Retrieved); err != nil {
				return nil, fmt.Errorf("unmarshal retrieved refs: %w", err)
			}
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// Count returns the total number of recorded turns.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversation_turns").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return count, nil
}

// SetFeedback marks a turn with "up" or "down".
func (s *HistoryStore) SetFeedback(ctx context.Context, id, feedback string) error {
	if feedback != "up" && feedback != "down" {
		return fmt.Errorf("%w: feedback must be \"up\" or \"down\"", domain.ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE conversation_turns SET feedback = ? WHERE id = ?", feedback, id)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: no turn with id %q", domain.ErrNotFound, id)
	}
	return nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *HistoryStore) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *HistoryStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= currentVersion {
			continue
		}

		sqlBytes, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// migrationVersion extracts the numeric prefix of a migration file
// name, e.g. "0001_create_history.up.sql" -> 1.
func migrationVersion(name string) (int, error) {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return 0, errors.New("migration file name missing version prefix: " + name)
	}
	var version int
	if _, err := fmt.Sscanf(name[:idx], "%d", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %s: %w", name, err)
	}
	return version, nil
}
