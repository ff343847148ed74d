package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// NTFY posts notifications to an ntfy-compatible topic endpoint.
type NTFY struct {
	client   *http.Client
	endpoint string
}

func NewNTFY(client *http.Client, endpoint string) *NTFY {
	return &NTFY{client: client, endpoint: endpoint}
}

func (n *NTFY) Notify(ctx context.Context, title, message string) error {
	return Send(ctx, n.client, n.endpoint, title, message)
}

// Log writes notifications to the process log. It is used when no endpoint
// is configured.
type Log struct{}

func (Log) Notify(_ context.Context, title, message string) error {
	slog.Info("notification", "title", title, "message", message)
	return nil
}

// Send sends a message to the requested endpoint using HTTP POST. A non-empty
// title is carried in the ntfy Title header.
func Send(ctx context.Context, client *http.Client, endpoint, title, message string) error {
	if strings.TrimSpace(endpoint) == "" {
		return errors.New("ntfy notification failed: missing endpoint")
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
	if title != "" {
		req.Header.Set("Title", title)
	}

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
