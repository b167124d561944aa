package services

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

type countingIndexer struct {
	builds int
	err    error
}

func (c *countingIndexer) Build(context.Context) (domain.IndexManifest, error) {
	c.builds++
	return domain.IndexManifest{ChunkCount: 1}, c.err
}

func TestCorpusEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"txt write", fsnotify.Event{Name: "faq.txt", Op: fsnotify.Write}, true},
		{"jsonl create", fsnotify.Event{Name: "faq.jsonl", Op: fsnotify.Create}, true},
		{"uppercase extension", fsnotify.Event{Name: "FAQ.TXT", Op: fsnotify.Write}, true},
		{"txt remove", fsnotify.Event{Name: "faq.txt", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "faq.txt", Op: fsnotify.Chmod}, false},
		{"editor swap file", fsnotify.Event{Name: ".faq.txt.swp", Op: fsnotify.Write}, false},
		{"unrelated extension", fsnotify.Event{Name: "notes.md", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, corpusEvent(tt.event))
		})
	}
}

func TestWatcherRun_StopsOnCancel(t *testing.T) {
	w := NewWatcher(&countingIndexer{}, nil, t.TempDir(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherRebuild_RefreshesRetriever(t *testing.T) {
	emb := newStubEmbedder()
	index := &fakeIndex{}
	log := &fakeChunkLog{}
	ctx := context.Background()

	_ = index.Rebuild(ctx, 3, [][]float32{{1, 0, 0}})
	_ = log.Rewrite(ctx, []domain.Chunk{{ID: "old"}})

	r := NewRetriever(emb, index, log)
	_, err := r.Retrieve(ctx, "q", 1)
	assert.NoError(t, err)

	_ = log.Rewrite(ctx, []domain.Chunk{{ID: "new"}})

	indexer := &countingIndexer{}
	w := NewWatcher(indexer, r, t.TempDir(), time.Hour)
	w.rebuild(ctx)

	assert.Equal(t, 1, indexer.builds)
	hits, err := r.Retrieve(ctx, "q", 1)
	assert.NoError(t, err)
	assert.Equal(t, "new", hits[0].Chunk.ID)
}

func TestWatcherRebuild_FailureKeepsWatching(t *testing.T) {
	indexer := &countingIndexer{err: assert.AnError}
	w := NewWatcher(indexer, nil, t.TempDir(), time.Hour)

	// Must not panic or propagate; the previous index stays in use.
	w.rebuild(context.Background())
	assert.Equal(t, 1, indexer.builds)
}
