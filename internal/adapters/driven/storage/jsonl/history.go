package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore records conversation turns as line-delimited JSON,
// one record per turn, appended in arrival order.
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

// NewHistoryStore creates a history store backed by the given file.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Append records a completed turn.
func (s *HistoryStore) Append(ctx context.Context, turn domain.ConversationTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(turn); err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	return nil
}

// Recent returns up to limit turns, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]domain.ConversationTurn, error) {
	turns, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	// Reverse into newest-first order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[:limit]
	}
	return turns, nil
}

// Count returns the total number of recorded turns.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	turns, err := s.readAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(turns), nil
}

// SetFeedback marks a turn with "up" or "down". The log is rewritten
// in place; only the feedback field of the matching record changes.
func (s *HistoryStore) SetFeedback(ctx context.Context, id, feedback string) error {
	if feedback != "up" && feedback != "down" {
		return fmt.Errorf("%w: feedback must be \"up\" or \"down\"", domain.ErrInvalidInput)
	}

	turns, err := s.readAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range turns {
		if turns[i].ID == id {
			turns[i].Feedback = feedback
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: no turn with id %q", domain.ErrNotFound, id)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("create temp history log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, turn := range turns {
		if err := enc.Encode(turn); err != nil {
			tmp.Close()
			return fmt.Errorf("encode history record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush history log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp history log: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history log: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *HistoryStore) Close() error {
	return nil
}

// readAll loads every turn in file order. A missing file is an empty
// history, not an error.
func (s *HistoryStore) readAll(ctx context.Context) ([]domain.ConversationTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	var turns []domain.ConversationTurn
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var turn domain.ConversationTurn
		if err := json.Unmarshal(scanner.Bytes(), &turn); err != nil {
			// A torn trailing write must not make history unreadable.
			continue
		}
		turns = append(turns, turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history log: %w", err)
	}
	return turns, nil
}
