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

// customProvider posts a chat-style payload to a caller-supplied endpoint
// with arbitrary extra headers. The completion is pulled from whichever
// known response shape the endpoint answers with, tried in a fixed order
// rather than duck-typed field sniffing.
type customProvider struct {
	apiKey   string
	model    string
	endpoint string
	headers  map[string]string
	client   *http.Client
}

func newCustomProvider(cfg Config) (*customProvider, error) {
	headers := map[string]string{}
	if cfg.ExtraHeaders != "" {
		if err := json.Unmarshal([]byte(cfg.ExtraHeaders), &headers); err != nil {
			return nil, fmt.Errorf("custom provider extra headers: %w", err)
		}
	}
	return &customProvider{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		headers:  headers,
		client:   newHTTPClient(),
	}, nil
}

func (p *customProvider) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"messages": []chatMessage{{Role: "user", Content: prompt}},
	}
	if p.model != "" {
		payload["model"] = p.model
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

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
	return decodeCustomCompletion(respBody)
}

// decodeCustomCompletion tries the known response shapes in order: OpenAI
// chat, Anthropic messages, then a flat {"text": ...} / {"completion": ...}
// document.
func decodeCustomCompletion(body []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Text       string `json:"text"`
		Completion string `json:"completion"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	if len(parsed.Choices) > 0 {
		if c := parsed.Choices[0].Message.Content; c != "" {
			return c, nil
		}
		if c := parsed.Choices[0].Text; c != "" {
			return c, nil
		}
	}
	if len(parsed.Content) > 0 && parsed.Content[0].Text != "" {
		return parsed.Content[0].Text, nil
	}
	if parsed.Text != "" {
		return parsed.Text, nil
	}
	if parsed.Completion != "" {
		return parsed.Completion, nil
	}
	return "", fmt.Errorf("completion text not found in response")
}
