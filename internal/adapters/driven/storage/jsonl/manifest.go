package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore persists the IndexManifest as a settings.json file
// beside the index.
type ManifestStore struct {
	path string
}

// NewManifestStore creates a manifest store backed by the given path.
func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// Save writes the manifest.
func (s *ManifestStore) Save(ctx context.Context, m domain.IndexManifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Load reads the manifest. Returns domain.ErrNoIndex when no manifest
// exists.
func (s *ManifestStore) Load(ctx context.Context) (domain.IndexManifest, error) {
	if err := ctx.Err(); err != nil {
		return domain.IndexManifest{}, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.IndexManifest{}, fmt.Errorf("%w: no manifest at %s (run 'respondo index' first)",
			domain.ErrNoIndex, s.path)
	}
	if err != nil {
		return domain.IndexManifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var m domain.IndexManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.IndexManifest{}, fmt.Errorf("%w: malformed manifest %s: %v",
			domain.ErrIndexCorrupt, s.path, err)
	}
	return m, nil
}
