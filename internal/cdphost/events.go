package cdphost

import (
	"encoding/json"
	"log/slog"

	"github.com/chromedp/cdproto/target"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

type targetInfoParams struct {
	TargetInfo struct {
		TargetID target.ID `json:"targetId"`
		Type     string    `json:"type"`
		Title    string    `json:"title"`
		URL      string    `json:"url"`
	} `json:"targetInfo"`
}

func (p targetInfoParams) info() *target.Info {
	return &target.Info{
		TargetID: p.TargetInfo.TargetID,
		Type:     p.TargetInfo.Type,
		Title:    p.TargetInfo.Title,
		URL:      p.TargetInfo.URL,
	}
}

func (c *Client) registerHandlersLocked() {
	on := func(method string, fn func(sessionID string, params json.RawMessage)) {
		c.unregs = append(c.unregs, c.cdp.registerEventHandler(method, fn))
	}
	on("Target.targetCreated", c.onTargetCreated)
	on("Target.targetInfoChanged", c.onTargetInfoChanged)
	on("Target.targetDestroyed", c.onTargetDestroyed)
	on("Target.detachedFromTarget", c.onDetached)
	on("Page.frameNavigated", c.onFrameNavigated)
	on("Page.navigatedWithinDocument", c.onNavigatedWithinDocument)
	on("Page.loadEventFired", c.onLoadEventFired)
}

func (c *Client) onTargetCreated(_ string, params json.RawMessage) {
	var p targetInfoParams
	if err := json.Unmarshal(params, &p); err != nil {
		slog.Debug("cdphost decode targetCreated failed", "error", err)
		return
	}
	if p.TargetInfo.Type != "page" {
		return
	}
	ref, created := c.registry.Register(p.info())
	if !created {
		return
	}
	c.emit(types.TabEvent{Kind: types.TabCreated, Tab: ref})
	if c.trackLoads {
		go c.attach(p.TargetInfo.TargetID)
	}
}

func (c *Client) onTargetInfoChanged(_ string, params json.RawMessage) {
	var p targetInfoParams
	if err := json.Unmarshal(params, &p); err != nil {
		slog.Debug("cdphost decode targetInfoChanged failed", "error", err)
		return
	}
	if p.TargetInfo.Type != "page" {
		return
	}
	if _, ok := c.registry.Update(p.info()); !ok {
		return
	}
	// Attached pages report completion through Page.loadEventFired.
	if c.trackLoads && c.registry.HasSession(p.TargetInfo.TargetID) {
		return
	}
	ref, changed, ok := c.registry.TakeLoaded(p.TargetInfo.TargetID)
	if !ok || !changed {
		return
	}
	c.emit(types.TabEvent{Kind: types.TabUpdated, Tab: ref, URLChanged: true, Status: types.StatusComplete})
}

func (c *Client) onTargetDestroyed(_ string, params json.RawMessage) {
	var p struct {
		TargetID target.ID `json:"targetId"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	ref, ok := c.registry.Remove(p.TargetID)
	if !ok {
		return
	}
	c.emit(types.TabEvent{Kind: types.TabRemoved, Tab: ref})
}

func (c *Client) onDetached(_ string, params json.RawMessage) {
	var p struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	c.registry.UnbindSession(p.SessionID)
}

func (c *Client) onFrameNavigated(sessionID string, params json.RawMessage) {
	targetID, ok := c.registry.TargetForSession(sessionID)
	if !ok {
		return
	}
	var p struct {
		Frame struct {
			ID          string `json:"id"`
			ParentID    string `json:"parentId"`
			URL         string `json:"url"`
			URLFragment string `json:"urlFragment"`
		} `json:"frame"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	if p.Frame.ParentID != "" {
		return
	}
	ref, changed, ok := c.registry.Navigated(targetID, p.Frame.URL+p.Frame.URLFragment)
	if !ok {
		return
	}
	c.emit(types.TabEvent{Kind: types.TabUpdated, Tab: ref, URLChanged: changed, Status: types.StatusLoading})
}

func (c *Client) onNavigatedWithinDocument(sessionID string, params json.RawMessage) {
	targetID, ok := c.registry.TargetForSession(sessionID)
	if !ok {
		return
	}
	var p struct {
		FrameID string `json:"frameId"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	// The main frame of a page shares its target's ID.
	if p.FrameID != string(targetID) {
		return
	}
	if _, _, ok := c.registry.Navigated(targetID, p.URL); !ok {
		return
	}
	c.emitLoaded(targetID)
}

func (c *Client) onLoadEventFired(sessionID string, _ json.RawMessage) {
	targetID, ok := c.registry.TargetForSession(sessionID)
	if !ok {
		return
	}
	c.emitLoaded(targetID)
}

func (c *Client) emitLoaded(targetID target.ID) {
	ref, changed, ok := c.registry.TakeLoaded(targetID)
	if !ok {
		return
	}
	c.emit(types.TabEvent{Kind: types.TabUpdated, Tab: ref, URLChanged: changed, Status: types.StatusComplete})
}
