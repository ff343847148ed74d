package cdphost

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

const (
	defaultEventBuffer = 256
	maxReconnectDelay  = 30 * time.Second
)

// Client exposes the page targets of a Chromium browser as tabs and turns
// Target and Page domain events into tab lifecycle events.
type Client struct {
	cdpURL     string
	opTimeout  time.Duration
	trackLoads bool
	httpClient *http.Client

	mu     sync.Mutex
	cdp    *rawCDP
	unregs []func()

	registry *TabRegistry
	events   chan types.TabEvent
}

type Option func(*Client)

// WithLoadTracking attaches a session to every page and reports load
// completion from Page.loadEventFired. When disabled, URL changes from
// Target.targetInfoChanged are reported as complete immediately.
func WithLoadTracking(enabled bool) Option {
	return func(c *Client) { c.trackLoads = enabled }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithEventBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.events = make(chan types.TabEvent, n)
		}
	}
}

func NewClient(cdpURL string, opTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		cdpURL:     cdpURL,
		opTimeout:  opTimeout,
		trackLoads: true,
		registry:   NewTabRegistry(),
		events:     make(chan types.TabEvent, defaultEventBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the tab lifecycle stream. The channel is never closed;
// consumers stop on their own context.
func (c *Client) Events() <-chan types.TabEvent {
	return c.events
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.cdpURL == "" {
		return types.NewError(types.CodeCDPUnavailable, "missing CDP URL", nil)
	}

	slog.Info("cdphost connect start", "cdp_url", c.cdpURL)
	c.cleanupLocked()

	cdp := newRawCDP(c.cdpURL, c.httpClient)
	if err := cdp.connect(ctx); err != nil {
		return types.NewError(types.CodeCDPUnavailable, "connect to CDP failed", err)
	}
	c.cdp = cdp
	c.registerHandlersLocked()

	// Known pages are registered silently so discovery does not report
	// them as newly created.
	pages, err := c.listPagesLocked(ctx)
	if err != nil {
		slog.Error("cdphost initial tab sync failed", "error", err)
		c.cleanupLocked()
		return types.NewError(types.CodeCDPUnavailable, "connect to CDP failed", err)
	}
	c.registry.ClearSessions()
	refs := c.registry.Sync(pages)

	if err := c.cdp.setDiscoverTargets(ctx); err != nil {
		c.cleanupLocked()
		return types.NewError(types.CodeCDPUnavailable, "enable target discovery failed", err)
	}

	if c.trackLoads {
		for _, p := range pages {
			go c.attach(p.TargetID)
		}
	}

	slog.Info("cdphost connect ok", "cdp_url", c.cdpURL, "tabs", len(refs), "track_loads", c.trackLoads)
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
	return nil
}

func (c *Client) cleanupLocked() {
	for _, unreg := range c.unregs {
		unreg()
	}
	c.unregs = nil
	if c.cdp != nil {
		c.cdp.close()
		c.cdp = nil
	}
}

// Run keeps the connection alive until ctx is done, reconnecting with
// exponential backoff whenever the browser socket drops.
func (c *Client) Run(ctx context.Context) error {
	delay := time.Second
	for {
		c.mu.Lock()
		cdp := c.cdp
		c.mu.Unlock()

		if cdp != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-cdp.closed():
				slog.Warn("cdphost connection lost", "cdp_url", c.cdpURL)
				c.mu.Lock()
				if c.cdp == cdp {
					c.cleanupLocked()
				}
				c.mu.Unlock()
			}
		}

		if err := c.Connect(ctx); err != nil {
			slog.Warn("cdphost reconnect failed", "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxReconnectDelay)
			continue
		}
		delay = time.Second
	}
}

// ListTabs returns all page targets in tab-strip order.
func (c *Client) ListTabs(ctx context.Context) ([]dedup.TabRef, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	c.mu.Lock()
	pages, err := c.listPagesLocked(ctx)
	c.mu.Unlock()
	if err != nil {
		slog.Warn("cdphost list tabs failed", "error", err)
		return nil, types.NewError(types.CodeCDPUnavailable, "failed to list targets", err)
	}
	refs := c.registry.Sync(pages)
	slog.Debug("cdphost list tabs", "count", len(refs))
	return refs, nil
}

// GetTab re-reads a single tab from the browser.
func (c *Client) GetTab(ctx context.Context, id int) (dedup.TabRef, error) {
	tabs, err := c.ListTabs(ctx)
	if err != nil {
		return dedup.TabRef{}, err
	}
	for _, t := range tabs {
		if t.ID == id {
			return t, nil
		}
	}
	return dedup.TabRef{}, types.NewError(types.CodeTabNotFound, "tab not found", nil)
}

func (c *Client) CloseTab(ctx context.Context, id int) error {
	return c.targetOp(ctx, id, "close tab", (*rawCDP).closeTarget)
}

func (c *Client) ActivateTab(ctx context.Context, id int) error {
	return c.targetOp(ctx, id, "activate tab", (*rawCDP).activateTarget)
}

func (c *Client) targetOp(ctx context.Context, id int, what string, op func(*rawCDP, context.Context, target.ID) error) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}
	targetID, ok := c.registry.Lookup(id)
	if !ok {
		return types.NewError(types.CodeTabNotFound, "tab not found", nil)
	}

	c.mu.Lock()
	cdp := c.cdp
	c.mu.Unlock()
	if cdp == nil {
		return types.NewError(types.CodeCDPUnavailable, "CDP client not connected", nil)
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if err := op(cdp, ctx, targetID); err != nil {
		return types.NewError(types.CodeHostFailure, what+" failed", err)
	}
	slog.Debug("cdphost "+what, "tab_id", id, "target_id", targetID)
	return nil
}

func (c *Client) listPagesLocked(ctx context.Context) ([]*target.Info, error) {
	if c.cdp == nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "CDP client not connected", nil)
	}
	targets, err := c.cdp.listTargets(ctx)
	if err != nil {
		return nil, err
	}
	return pagesOnly(targets), nil
}

func pagesOnly(targets []*target.Info) []*target.Info {
	out := make([]*target.Info, 0, len(targets))
	for _, t := range targets {
		if t.Type == "page" {
			out = append(out, t)
		}
	}
	return out
}

func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	connected := c.cdp != nil
	c.mu.Unlock()
	if connected {
		return nil
	}
	return c.Connect(ctx)
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// attach opens a flat session on a page and enables the Page domain.
func (c *Client) attach(targetID target.ID) {
	c.mu.Lock()
	cdp := c.cdp
	c.mu.Unlock()
	if cdp == nil {
		return
	}

	ctx, cancel := c.opContext(context.Background())
	defer cancel()

	sessionID, err := cdp.attachToTarget(ctx, targetID)
	if err != nil {
		slog.Debug("cdphost attach failed", "target_id", targetID, "error", err)
		return
	}
	if !c.registry.BindSession(targetID, sessionID) {
		_ = cdp.detachFromTarget(ctx, sessionID)
		return
	}
	if err := cdp.enablePageDomain(ctx, sessionID); err != nil {
		slog.Debug("cdphost page enable failed", "target_id", targetID, "error", err)
		c.registry.UnbindSession(sessionID)
		return
	}
	slog.Debug("cdphost attached", "target_id", targetID, "session_id", sessionID)
}

func (c *Client) emit(ev types.TabEvent) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("cdphost event dropped", "kind", ev.Kind, "tab_id", ev.Tab.ID)
	}
}
