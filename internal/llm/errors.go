package llm

import "fmt"

type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %q", e.Provider)
}

type ErrMissingAPIKey struct {
	Provider string
}

func (e ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("missing API key for provider %q", e.Provider)
}

type ErrMissingEndpoint struct {
	Provider string
}

func (e ErrMissingEndpoint) Error() string {
	return fmt.Sprintf("provider %q requires an endpoint URL", e.Provider)
}

// StatusError wraps a non-success HTTP response from a provider with its
// status code and body text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("LLM request failed: HTTP %d: %s", e.StatusCode, body)
}
