package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/config"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAIConfig(provider, url string) *config.Config {
	return &config.Config{
		AIProvider:   provider,
		AIAPIKey:     "test-key",
		OpenAIAPIURL: url + "/v1/chat/completions",
		OpenAIModel:  "gpt-3.5-turbo",
		GeminiAPIURL: url + "/v1beta/models",
		GeminiModel:  "gemini-pro",
		AITimeout:    5 * time.Second,
	}
}

func TestCompletionClient_OpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 200, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "how long does it take?", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"About 10 minutes."}}]}`))
	}))
	defer srv.Close()

	client := NewCompletionClient(testAIConfig(ProviderOpenAI, srv.URL), metrics.Nop())
	got, err := client.Complete(context.Background(), "how long does it take?")

	require.NoError(t, err)
	assert.Equal(t, "About 10 minutes.", got)
}

func TestCompletionClient_OpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	got, err := NewCompletionClient(testAIConfig(ProviderOpenAI, srv.URL), metrics.Nop()).
		Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, noCompletionText, got)
}

func TestCompletionClient_Gemini(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "\n\nUser Question: is it painful?")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Only a pinch."}]}}]}`))
	}))
	defer srv.Close()

	got, err := NewCompletionClient(testAIConfig(ProviderGemini, srv.URL), metrics.Nop()).
		Complete(context.Background(), "is it painful?")
	require.NoError(t, err)
	assert.Equal(t, "Only a pinch.", got)
}

func TestCompletionClient_ProviderError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := NewCompletionClient(testAIConfig(ProviderOpenAI, srv.URL), metrics.Nop()).
		Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, int32(1), calls.Load())
}
