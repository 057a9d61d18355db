// Package llm dispatches text-completion calls to one of four provider
// adapters. The adapters differ only in request shape, auth header, and the
// JSON path the completion text lives at; everything else about a provider
// is opaque to the organizer.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Completer is the gateway contract: one prompt in, one completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a provider. Missing key/endpoint is a
// precondition failure resolved in NewProvider, before any network call.
type Config struct {
	Provider     string // "openai", "azure", "anthropic", "custom"
	APIKey       string
	Endpoint     string // required for azure and custom
	Model        string
	ExtraHeaders string // custom only: JSON object of additional headers
}

const defaultTimeout = 35 * time.Second

// NewProvider validates the config and returns the matching adapter.
func NewProvider(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey{Provider: cfg.Provider}
	}

	switch cfg.Provider {
	case "openai":
		return newOpenAIProvider(cfg), nil
	case "azure":
		if cfg.Endpoint == "" {
			return nil, ErrMissingEndpoint{Provider: cfg.Provider}
		}
		return newAzureProvider(cfg), nil
	case "anthropic":
		return newAnthropicProvider(cfg), nil
	case "custom":
		if cfg.Endpoint == "" {
			return nil, ErrMissingEndpoint{Provider: cfg.Provider}
		}
		return newCustomProvider(cfg)
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// readError turns a non-2xx response into a StatusError carrying status and
// body text. No automatic retry happens at this layer.
func readError(resp *http.Response, body []byte) error {
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// chatMessage is the request message shape shared by the chat-style
// providers.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// decodeChatCompletion extracts choices[0].message.content, the response
// path shared by the OpenAI and Azure chat shapes.
func decodeChatCompletion(body []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion had no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
