// Package flat provides an exact inner-product vector index.
//
// Vectors are stored densely and scanned in full on every query. With
// L2-normalised embeddings, inner product equals cosine similarity.
// Exact scan is the right trade-off for FAQ-sized corpora (hundreds to
// low thousands of chunks); there is no approximation error and no
// build step beyond writing the file.
package flat

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants.
const (
	magic       = "RVIX"
	formatVer   = 1
	headerBytes = 4 + 4 + 4 + 4 // magic + version + dimensions + count
)

// Index is a flat on-disk vector index held fully in memory.
type Index struct {
	mu         sync.RWMutex
	path       string
	dimensions int
	vectors    [][]float32
}

// Open loads the index at path, or returns an empty index when the
// file does not exist yet.
func Open(path string) (*Index, error) {
	idx := &Index{path: path}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Rebuild replaces the index contents and persists them atomically:
// the new index is written to a temporary file and renamed over the
// old one, so a failed rebuild leaves the previous index untouched.
func (i *Index) Rebuild(ctx context.Context, dimensions int, vectors [][]float32) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}
	for n, v := range vectors {
		if len(v) != dimensions {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, n, len(v), dimensions)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := i.persist(dimensions, vectors); err != nil {
		return err
	}

	i.mu.Lock()
	i.dimensions = dimensions
	i.vectors = vectors
	i.mu.Unlock()
	return nil
}

// Search scans every vector and returns the k best matches by inner
// product, best first. Equal scores keep insertion order.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.vectors) == 0 {
		return nil, fmt.Errorf("%w: vector index is empty", domain.ErrNoIndex)
	}
	if len(query) != i.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), i.dimensions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 5
	}

	hits := make([]driven.VectorHit, len(i.vectors))
	for pos, v := range i.vectors {
		hits[pos] = driven.VectorHit{Position: pos, Similarity: dot(query, v)}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of vectors in the index.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Dimensions returns the vector size, zero when empty.
func (i *Index) Dimensions() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dimensions
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for n := range a {
		sum += float64(a[n]) * float64(b[n])
	}
	return sum
}

// persist writes the index to disk via temp file + rename.
func (i *Index) persist(dimensions int, vectors [][]float32) error {
	if err := os.MkdirAll(filepath.Dir(i.path), 0700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(i.path), ".rvix-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	header := make([]byte, headerBytes)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:], formatVer)
	binary.LittleEndian.PutUint32(header[8:], uint32(dimensions))
	binary.LittleEndian.PutUint32(header[12:], uint32(len(vectors)))
	if _, err := tmp.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write index header: %w", err)
	}

	buf := make([]byte, 4*dimensions)
	for _, v := range vectors {
		for n, f := range v {
			binary.LittleEndian.PutUint32(buf[4*n:], math.Float32bits(f))
		}
		if _, err := tmp.Write(buf); err != nil {
			tmp.Close()
			return fmt.Errorf("write index vectors: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmp.Name(), i.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// load reads the index file into memory. A missing file leaves the
// index empty.
func (i *Index) load() error {
	data, err := os.ReadFile(i.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	if len(data) < headerBytes || string(data[:4]) != magic {
		return fmt.Errorf("%w: %s is not a vector index file", domain.ErrIndexCorrupt, i.path)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != formatVer {
		return fmt.Errorf("%w: unsupported index format version %d", domain.ErrIndexCorrupt, v)
	}

	dimensions := int(binary.LittleEndian.Uint32(data[8:]))
	count := int(binary.LittleEndian.Uint32(data[12:]))
	want := headerBytes + 4*dimensions*count
	if len(data) != want {
		return fmt.Errorf("%w: index file is %d bytes, expected %d", domain.ErrIndexCorrupt, len(data), want)
	}

	vectors := make([][]float32, count)
	off := headerBytes
	for n := range vectors {
		v := make([]float32, dimensions)
		for d := range v {
			v[d] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[n] = v
	}

	i.dimensions = dimensions
	i.vectors = vectors
	return nil
}
