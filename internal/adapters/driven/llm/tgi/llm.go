// Package tgi provides an LLM service adapter for a Text Generation
// Inference endpoint (Hugging Face TGI), local or remote.
//
// The endpoint speaks a minimal contract: POST /generate with
// {"inputs", "parameters"} and a response that is either
// {"generated_text": "..."} or a one-element list of that object,
// depending on server version. Both shapes are accepted.
package tgi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 120 * time.Second

// Config holds configuration for the TGI LLM service.
type Config struct {
	// BaseURL is the TGI server URL (required), e.g. http://localhost:8080.
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides text generation against a TGI endpoint.
type LLMService struct {
	client  *http.Client
	baseURL string
}

// generateRequest is the TGI /generate request format.
type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

// parameters holds TGI generation parameters.
type parameters struct {
	MaxNewTokens   int      `json:"max_new_tokens,omitempty"`
	Temperature    float64  `json:"temperature,omitempty"`
	Stop           []string `json:"stop,omitempty"`
	DoSample       bool     `json:"do_sample"`
	ReturnFullText bool     `json:"return_full_text"`
}

// generated is one TGI response object.
type generated struct {
	GeneratedText string `json:"generated_text"`
}

// NewLLMService creates a new TGI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tgi: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Inputs: prompt,
		Parameters: parameters{
			MaxNewTokens:   opts.MaxTokens,
			Temperature:    opts.Temperature,
			Stop:           opts.StopWords,
			DoSample:       opts.Temperature > 0,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tgi error (status %d): %s", resp.StatusCode, string(body))
	}

	return parseGenerated(body)
}

// parseGenerated accepts both TGI response shapes.
func parseGenerated(body []byte) (string, error) {
	var obj generated
	if err := json.Unmarshal(body, &obj); err == nil && obj.GeneratedText != "" {
		return strings.TrimSpace(obj.GeneratedText), nil
	}

	var list []generated
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0].GeneratedText), nil
	}

	return "", fmt.Errorf("tgi: unrecognised response shape: %s", string(body))
}

// ModelName returns the endpoint URL; TGI serves a single model chosen
// at server start, so the URL is the most useful identifier.
func (s *LLMService) ModelName() string {
	return s.baseURL
}

// Ping validates the server is reachable via its health endpoint.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("tgi: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tgi: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tgi: health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
