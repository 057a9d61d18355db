package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProviderPreconditions(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Fatalf("expected missing API key error")
	} else if _, ok := err.(ErrMissingAPIKey); !ok {
		t.Fatalf("expected ErrMissingAPIKey, got %T", err)
	}

	if _, err := NewProvider(Config{Provider: "azure", APIKey: "k"}); err == nil {
		t.Fatalf("expected missing endpoint error for azure")
	} else if _, ok := err.(ErrMissingEndpoint); !ok {
		t.Fatalf("expected ErrMissingEndpoint, got %T", err)
	}

	if _, err := NewProvider(Config{Provider: "custom", APIKey: "k"}); err == nil {
		t.Fatalf("expected missing endpoint error for custom")
	}

	if _, err := NewProvider(Config{Provider: "gemini", APIKey: "k"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	} else if _, ok := err.(ErrUnsupportedProvider); !ok {
		t.Fatalf("expected ErrUnsupportedProvider, got %T", err)
	}
}

func TestNewProviderCustomBadHeadersJSON(t *testing.T) {
	_, err := NewProvider(Config{
		Provider:     "custom",
		APIKey:       "k",
		Endpoint:     "http://localhost:1",
		ExtraHeaders: "{not json",
	})
	if err == nil {
		t.Fatalf("malformed extra headers must fail at construction")
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		var req struct {
			Model    string        `json:"model"`
			Messages []chatMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("messages = %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "world"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "openai", APIKey: "test-key", Endpoint: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	got, err := p.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "world" {
		t.Fatalf("completion = %q, want world", got)
	}
}

func TestAnthropicProviderComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Errorf("missing anthropic-version header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "grouped"},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "anthropic", APIKey: "test-key", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	got, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "grouped" {
		t.Fatalf("completion = %q", got)
	}
}

func TestAzureProviderRouting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "test-key" {
			t.Errorf("api-key header = %q", got)
		}
		if r.URL.Path != "/openai/deployments/dep1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api-version") == "" {
			t.Errorf("missing api-version query")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "azure", APIKey: "test-key", Endpoint: srv.URL, Model: "dep1"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, err := p.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func TestCustomProviderHeadersAndShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Org"); got != "warden" {
			t.Errorf("extra header X-Org = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "flat shape"})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{
		Provider:     "custom",
		APIKey:       "k",
		Endpoint:     srv.URL,
		ExtraHeaders: `{"X-Org":"warden"}`,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	got, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "flat shape" {
		t.Fatalf("completion = %q", got)
	}
}

func TestStatusErrorSurfacesCodeAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "openai", APIKey: "k", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	_, err = p.Complete(context.Background(), "prompt")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
	if statusErr.Body != "rate limited" {
		t.Fatalf("body = %q", statusErr.Body)
	}
}

func TestDecodeCustomCompletionShapes(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"choices":[{"message":{"content":"a"}}]}`, "a"},
		{`{"choices":[{"text":"b"}]}`, "b"},
		{`{"content":[{"text":"c"}]}`, "c"},
		{`{"text":"d"}`, "d"},
		{`{"completion":"e"}`, "e"},
	}
	for _, tc := range cases {
		got, err := decodeCustomCompletion([]byte(tc.body))
		if err != nil {
			t.Errorf("decode %s: %v", tc.body, err)
			continue
		}
		if got != tc.want {
			t.Errorf("decode %s = %q, want %q", tc.body, got, tc.want)
		}
	}

	if _, err := decodeCustomCompletion([]byte(`{"unrelated":true}`)); err == nil {
		t.Errorf("expected error for unknown shape")
	}
}
