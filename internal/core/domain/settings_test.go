package domain

import (
	"errors"
	"testing"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderTGI} {
		if !p.IsValid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if AIProvider("flan-t5").IsValid() {
		t.Error("expected unknown provider to be invalid")
	}
}

func TestIndexManifest_Validate(t *testing.T) {
	m := IndexManifest{
		EmbeddingModel: "nomic-embed-text",
		Dimensions:     768,
		ChunkSize:      800,
		Overlap:        120,
		ChunkCount:     12,
	}

	t.Run("matching config passes", func(t *testing.T) {
		if err := m.Validate("nomic-embed-text", 800, 120); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("model mismatch rejected", func(t *testing.T) {
		err := m.Validate("all-minilm", 800, 120)
		if !errors.Is(err, ErrIndexMismatch) {
			t.Fatalf("expected ErrIndexMismatch, got %v", err)
		}
	})

	t.Run("geometry mismatch rejected", func(t *testing.T) {
		err := m.Validate("nomic-embed-text", 1000, 120)
		if !errors.Is(err, ErrIndexMismatch) {
			t.Fatalf("expected ErrIndexMismatch, got %v", err)
		}
	})
}

func TestIndexManifest_CheckCount(t *testing.T) {
	m := IndexManifest{ChunkCount: 3}

	if err := m.CheckCount(3, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := m.CheckCount(3, 2)
	if !errors.Is(err, ErrIndexCorrupt) {
		t.Fatalf("expected ErrIndexCorrupt, got %v", err)
	}
}
