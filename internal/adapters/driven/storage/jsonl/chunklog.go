// Package jsonl provides line-delimited JSON storage adapters.
//
// This is the wire format shared with other tooling: one JSON record
// per line, UTF-8, no framing beyond the newline. The chunk metadata
// log must stay in lock-step with the vector index - record i
// describes vector i - so it is only ever rewritten wholesale,
// atomically, during an index build.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure ChunkLog implements the interface.
var _ driven.ChunkLog = (*ChunkLog)(nil)

// chunkRecord is the on-disk format of one metadata log entry.
type chunkRecord struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Source     string   `json:"source"`
	Text       string   `json:"text"`
	ChunkID    int      `json:"chunk_id"`
	StartChar  int      `json:"start_char"`
	EndChar    int      `json:"end_char"`
	Tags       []string `json:"tags,omitempty"`
}

// ChunkLog stores chunk metadata as line-delimited JSON.
type ChunkLog struct {
	path string
}

// NewChunkLog creates a chunk log backed by the given file path.
func NewChunkLog(path string) *ChunkLog {
	return &ChunkLog{path: path}
}

// Rewrite atomically replaces the log with the given chunks.
func (l *ChunkLog) Rewrite(ctx context.Context, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("create meta directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".meta-*")
	if err != nil {
		return fmt.Errorf("create temp meta log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, ch := range chunks {
		rec := chunkRecord{
			ID:         ch.ID,
			DocumentID: ch.DocumentID,
			Source:     ch.Source,
			Text:       ch.Content,
			ChunkID:    ch.Position,
			StartChar:  ch.StartOffset,
			EndChar:    ch.EndOffset,
			Tags:       ch.Tags,
		}
		if err := enc.Encode(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("encode chunk record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush meta log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp meta log: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace meta log: %w", err)
	}
	return nil
}

// All returns every chunk in insertion order.
func (l *ChunkLog) All(ctx context.Context) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: chunk metadata log %s does not exist", domain.ErrNoIndex, l.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open meta log: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec chunkRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%w: malformed record at %s:%d: %v",
				domain.ErrIndexCorrupt, l.path, line, err)
		}
		chunks = append(chunks, domain.Chunk{
			ID:          rec.ID,
			DocumentID:  rec.DocumentID,
			Source:      rec.Source,
			Content:     rec.Text,
			Position:    rec.ChunkID,
			StartOffset: rec.StartChar,
			EndOffset:   rec.EndChar,
			Tags:        rec.Tags,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read meta log: %w", err)
	}
	return chunks, nil
}

// Count returns the number of records without decoding them.
func (l *ChunkLog) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: chunk metadata log %s does not exist", domain.ErrNoIndex, l.path)
	}
	if err != nil {
		return 0, fmt.Errorf("open meta log: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read meta log: %w", err)
	}
	return count, nil
}
