package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/engine"
	"github.com/go-resty/resty/v2"
)

// Client talks to a running tabdedup daemon.
type Client struct {
	r *resty.Client
}

// apiError is the problem document returned by the daemon.
type apiError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func New(baseURL string, timeout time.Duration) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "tabdedupctl/1.0")
	return &Client{r: r}
}

func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", nil, &out)
}

func (c *Client) Settings(ctx context.Context) (dedup.Settings, error) {
	var out dedup.Settings
	err := c.do(ctx, http.MethodGet, "/api/v1/settings", nil, &out)
	return out, err
}

func (c *Client) UpdateSettings(ctx context.Context, patch dedup.Patch) (engine.Ack, error) {
	var out engine.Ack
	err := c.do(ctx, http.MethodPatch, "/api/v1/settings", patch, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (dedup.Stats, error) {
	var out dedup.Stats
	err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &out)
	return out, err
}

func (c *Client) Duplicates(ctx context.Context) ([]dedup.DuplicateGroup, error) {
	var out []dedup.DuplicateGroup
	err := c.do(ctx, http.MethodGet, "/api/v1/duplicates", nil, &out)
	return out, err
}

func (c *Client) CloseDuplicates(ctx context.Context) (dedup.CloseResult, error) {
	var out dedup.CloseResult
	err := c.do(ctx, http.MethodPost, "/api/v1/duplicates/close", nil, &out)
	return out, err
}

func (c *Client) Tabs(ctx context.Context) ([]dedup.TabRef, error) {
	var out struct {
		Tabs []dedup.TabRef `json:"tabs"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/tabs", nil, &out)
	return out.Tabs, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var apiErr apiError
	req := c.r.R().SetContext(ctx).SetResult(out).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Title
		}
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("%s %s: status=%d: %s", method, path, resp.StatusCode(), msg)
	}
	return nil
}
