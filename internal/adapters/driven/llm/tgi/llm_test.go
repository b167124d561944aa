package tgi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

func TestNewLLMService_RequiresBaseURL(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestGenerate_ObjectResponse(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(generated{GeneratedText: "  O horário é das 9h às 18h.  "})
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{
		MaxTokens:   256,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "O horário é das 9h às 18h.", out)

	assert.Equal(t, "prompt", gotReq.Inputs)
	assert.Equal(t, 256, gotReq.Parameters.MaxNewTokens)
	assert.True(t, gotReq.Parameters.DoSample)
	assert.False(t, gotReq.Parameters.ReturnFullText)
}

func TestGenerate_ListResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]generated{{GeneratedText: "resposta"}})
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "resposta", out)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "status 503")
}

func TestGenerate_UnrecognisedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"something":"else"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "unrecognised response shape")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL + "/"})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
}
