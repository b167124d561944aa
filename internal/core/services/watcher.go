package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/respondo-labs/respondo-cli/internal/core/ports/driving"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// DefaultDebounce coalesces the event bursts editors and sync tools
// produce into a single rebuild.
const DefaultDebounce = 2 * time.Second

// Watcher rebuilds the index when corpus files change.
type Watcher struct {
	indexer   driving.IndexService
	retriever *Retriever // may be nil
	docsPath  string
	debounce  time.Duration
}

// NewWatcher creates a Watcher over docsPath. retriever, when given,
// is refreshed after each successful rebuild so an in-process chat
// session sees the new chunks.
func NewWatcher(indexer driving.IndexService, retriever *Retriever, docsPath string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		indexer:   indexer,
		retriever: retriever,
		docsPath:  docsPath,
		debounce:  debounce,
	}
}

// Run watches the corpus until the context is cancelled. Each change
// burst triggers one rebuild; a failed rebuild is logged and watching
// continues with the previous index intact.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.docsPath); err != nil {
		return fmt.Errorf("watch %s: %w", w.docsPath, err)
	}
	logger.Info("watching %s for changes", w.docsPath)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !corpusEvent(event) {
				continue
			}
			logger.Debug("corpus change: %s %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	manifest, err := w.indexer.Build(ctx)
	if err != nil {
		logger.Warn("rebuild after corpus change failed: %v", err)
		return
	}
	if w.retriever != nil {
		w.retriever.Refresh()
	}
	logger.Info("index rebuilt: %d chunks", manifest.ChunkCount)
}

// corpusEvent filters for changes to loadable corpus files.
func corpusEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".txt", ".jsonl":
		return true
	default:
		return false
	}
}
