package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const azureAPIVersion = "2024-02-15-preview"

// azureProvider speaks the same chat shape as OpenAI but routes through an
// Azure deployment URL and authenticates with an api-key header.
type azureProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func newAzureProvider(cfg Config) *azureProvider {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &azureProvider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   newHTTPClient(),
	}
}

func (p *azureProvider) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"messages": []chatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, p.model, azureAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", readError(resp, respBody)
	}
	return decodeChatCompletion(respBody)
}
