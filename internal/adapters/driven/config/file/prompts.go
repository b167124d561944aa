package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// defaultPrompts are the built-in templates, keyed by language-qualified
// name. A file named "<name>.txt" in the prompts directory overrides
// the built-in of the same name.
var defaultPrompts = map[string]string{
	"grounded_answer_pt": `Você é um assistente de FAQ. Responda a pergunta usando APENAS as informações do contexto abaixo. Se o contexto não contém a resposta, diga que não sabe. Responda em português, de forma curta e direta.

Contexto:
%s

Pergunta: %s

Resposta:`,

	"grounded_answer_en": `You are an FAQ assistant. Answer the question using ONLY the information in the context below. If the context does not contain the answer, say you do not know. Answer briefly and directly.

Context:
%s

Question: %s

Answer:`,

	"ungrounded_answer_pt": `Você é um assistente prestativo. Responda a pergunta abaixo em português, de forma curta e direta. Se não souber, diga que não sabe.

Pergunta: %s

Resposta:`,

	"ungrounded_answer_en": `You are a helpful assistant. Answer the question below briefly and directly. If you do not know, say so.

Question: %s

Answer:`,
}

// PromptStore loads prompt templates from a directory, falling back to
// built-in defaults. Loaded prompts are cached until Reload.
type PromptStore struct {
	mu    sync.Mutex
	dir   string
	cache map[string]string
}

// NewPromptStore creates a prompt store reading overrides from dir.
// An empty dir serves built-in defaults only.
func NewPromptStore(dir string) *PromptStore {
	return &PromptStore{
		dir:   dir,
		cache: make(map[string]string),
	}
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tmpl, ok := s.cache[name]; ok {
		return tmpl, nil
	}

	if s.dir != "" {
		path := filepath.Join(s.dir, name+".txt")
		data, err := os.ReadFile(path)
		if err == nil {
			tmpl := strings.TrimSpace(string(data))
			if tmpl != "" {
				s.cache[name] = tmpl
				return tmpl, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt %s: %w", path, err)
		}
	}

	tmpl, ok := defaultPrompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	s.cache[name] = tmpl
	return tmpl, nil
}

// Reload clears the cache so edited prompt files take effect.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}
