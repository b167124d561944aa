// Package loader reads the FAQ corpus from disk into Documents.
//
// Two input formats are supported and normalise to the same Document
// representation:
//
//   - .txt files using the loose "P:" (pergunta) / "R:" (resposta)
//     marker convention. One file becomes one document.
//   - .jsonl files with one {"question", "answer", "tags"} record per
//     line. Each record becomes one document carrying its tags.
//
// Malformed JSONL lines are skipped with a warning; they never abort
// the load.
package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// Loader reads documents from a corpus directory.
type Loader struct{}

// New creates a new corpus loader.
func New() *Loader {
	return &Loader{}
}

// record is the wire format of one structured FAQ entry.
type record struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags,omitempty"`
}

// Load walks docsPath and returns every loadable document.
// Returns domain.ErrEmptyCorpus when the directory yields nothing.
func (l *Loader) Load(docsPath string) ([]domain.Document, error) {
	info, err := os.Stat(docsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: docs path %q is not readable: %v", domain.ErrEmptyCorpus, docsPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: docs path %q is not a directory", domain.ErrEmptyCorpus, docsPath)
	}

	var docs []domain.Document
	walkErr := filepath.WalkDir(docsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt":
			doc, ok := l.loadText(path)
			if ok {
				docs = append(docs, doc)
			}
		case ".jsonl":
			docs = append(docs, l.loadRecords(path)...)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk corpus: %w", walkErr)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no .txt or .jsonl documents in %q", domain.ErrEmptyCorpus, docsPath)
	}

	logger.Info("Loaded %d documents from %s", len(docs), docsPath)
	return docs, nil
}

// loadText reads one marker-format text file as a single document.
// Empty files are skipped.
func (l *Loader) loadText(path string) (domain.Document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read %s: %v", path, err)
		return domain.Document{}, false
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		logger.Debug("Skipping empty file %s", path)
		return domain.Document{}, false
	}

	return domain.Document{
		ID:       uuid.New().String(),
		Path:     path,
		Title:    titleFromPath(path),
		Content:  content,
		LoadedAt: time.Now(),
	}, true
}

// loadRecords reads one JSONL file, producing one document per valid
// record. Malformed lines are skipped with a warning.
func (l *Loader) loadRecords(path string) []domain.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read %s: %v", path, err)
		return nil
	}

	var docs []domain.Document
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("Skipping malformed record %s:%d: %v", path, i+1, err)
			continue
		}
		if rec.Question == "" || rec.Answer == "" {
			logger.Warn("Skipping incomplete record %s:%d", path, i+1)
			continue
		}
		docs = append(docs, domain.Document{
			ID:       uuid.New().String(),
			Path:     path,
			Title:    titleFromPath(path),
			Content:  fmt.Sprintf("P: %s\nR: %s", rec.Question, rec.Answer),
			Tags:     rec.Tags,
			LoadedAt: time.Now(),
		})
	}
	return docs
}

// titleFromPath derives a human-readable title from a file path.
func titleFromPath(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
