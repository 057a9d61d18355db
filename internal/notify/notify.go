// Package notify posts plain-text event notifications to an ntfy-style
// endpoint.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Notifier posts messages to one configured endpoint. A Notifier with an
// empty endpoint silently drops every message, so callers never need a nil
// check.
type Notifier struct {
	endpoint string
	client   *http.Client
}

// New builds a Notifier. Pass an empty endpoint to disable notifications.
func New(endpoint string, client *http.Client) *Notifier {
	return &Notifier{endpoint: endpoint, client: client}
}

// Notify posts one message. Disabled notifiers return nil.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if n == nil || n.endpoint == "" {
		return nil
	}
	return Send(ctx, n.client, n.endpoint, message)
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	if endpoint == "" {
		return fmt.Errorf("notify: no endpoint configured")
	}
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
