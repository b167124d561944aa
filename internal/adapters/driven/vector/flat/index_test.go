package flat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

func testVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.7071, 0.7071, 0},
	}
}

func TestOpen_MissingFile(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "faiss.rvix"))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Dimensions())
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "faiss.rvix"))
	require.NoError(t, err)

	_, err = idx.Search(context.Background(), []float32{1, 0, 0}, 3)
	assert.True(t, errors.Is(err, domain.ErrNoIndex))
}

func TestRebuildAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faiss.rvix")
	idx, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, idx.Rebuild(context.Background(), 3, testVectors()))
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, 3, idx.Dimensions())

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// Self-retrieval: the identical vector is the top hit.
	assert.Equal(t, 0, hits[0].Position)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, 3, hits[1].Position)
	assert.InDelta(t, 0.7071, hits[1].Similarity, 1e-3)
}

func TestSearch_TieKeepsInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faiss.rvix")
	idx, err := Open(path)
	require.NoError(t, err)

	// Two identical vectors: the first indexed must win.
	vectors := [][]float32{{0, 1}, {1, 0}, {1, 0}}
	require.NoError(t, idx.Rebuild(context.Background(), 2, vectors))

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, 2, hits[1].Position)
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "faiss.rvix"))
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(context.Background(), 3, testVectors()))

	hits, err := idx.Search(context.Background(), []float32{0, 1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "faiss.rvix"))
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(context.Background(), 3, testVectors()))

	_, err = idx.Search(context.Background(), []float32{1, 0}, 3)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRebuild_RejectsRaggedVectors(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "faiss.rvix"))
	require.NoError(t, err)

	err = idx.Rebuild(context.Background(), 3, [][]float32{{1, 0, 0}, {1, 0}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPersistence_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faiss.rvix")

	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(context.Background(), 3, testVectors()))
	require.NoError(t, idx.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reopened.Len())
	assert.Equal(t, 3, reopened.Dimensions())

	hits, err := reopened.Search(context.Background(), []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, hits[0].Position)
}

func TestRebuild_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faiss.rvix")
	idx, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, idx.Rebuild(context.Background(), 3, testVectors()))
	require.NoError(t, idx.Rebuild(context.Background(), 2, [][]float32{{1, 0}}))

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 2, idx.Dimensions())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
}
