package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestAnthropicProvider(t *testing.T, url string) *AnthropicProvider {
	t.Helper()
	provider, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "You advise." {
			t.Errorf("Expected system prompt, got %q", req.System)
		}
		if req.Temperature != 0.3 {
			t.Errorf("Expected temperature 0.3, got %v", req.Temperature)
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_123",
			"content": [{"type": "text", "text": "{\"google_trends\": 60}"}],
			"model": "claude-3-5-sonnet-20241022",
			"usage": {"input_tokens": 50, "output_tokens": 50}
		}`))
	}))
	defer server.Close()

	provider := newTestAnthropicProvider(t, server.URL)

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:      "Write the report",
		System:      "You advise.",
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != `{"google_trends": 60}` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer server.Close()

	provider := newTestAnthropicProvider(t, server.URL)

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	te, ok := AsTransport(err)
	if !ok {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if te.Kind != KindAuth {
		t.Errorf("Expected auth kind, got %s", te.Kind)
	}
	if !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("Expected API message in error, got %v", err)
	}
}

func TestAnthropicProvider_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "msg_1", "content": [], "model": "claude"}`))
	}))
	defer server.Close()

	provider := newTestAnthropicProvider(t, server.URL)

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	te, ok := AsTransport(err)
	if !ok || te.Kind != KindEmpty {
		t.Fatalf("Expected empty TransportError, got %v", err)
	}
}

func TestAnthropicProvider_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed`))
	}))
	defer server.Close()

	provider := newTestAnthropicProvider(t, server.URL)

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	if !IsTransport(err) {
		t.Fatalf("Expected TransportError for malformed body, got %v", err)
	}
}

func TestAnthropicProvider_Complete_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := newTestAnthropicProvider(t, url)

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	te, ok := AsTransport(err)
	if !ok {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if te.Kind != KindNetwork {
		t.Errorf("Expected network kind, got %s", te.Kind)
	}
}
