// Package host talks to the browser over the DevTools Protocol and maintains
// the numeric tab registry every organizer operation works from.
package host

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/dgnsrekt/tab_warden/internal/types"
)

// Client manages the CDP connection and maps browser targets to numeric tab
// ids. Ids are assigned in discovery order, which makes them a rough proxy
// for creation order; they are unique while a tab is open and unstable
// across browser restarts.
type Client struct {
	cdpURL string

	mu         sync.Mutex
	cdp        *rawCDP
	byTarget   map[target.ID]*types.Tab
	byID       map[int]target.ID
	windows    map[string]int // browserContextId -> window id
	nextTabID  int
	nextWindow int

	listenerMu sync.RWMutex
	onCreated  []func(types.Tab)
	onRemoved  []func(int)
}

// NewClient builds an unconnected client for the given CDP HTTP endpoint,
// e.g. "http://127.0.0.1:9222".
func NewClient(cdpURL string) *Client {
	return &Client{
		cdpURL:   cdpURL,
		byTarget: make(map[target.ID]*types.Tab),
		byID:     make(map[int]target.ID),
		windows:  make(map[string]int),
	}
}

// CDPURL returns the HTTP endpoint the client was built with.
func (c *Client) CDPURL() string { return c.cdpURL }

// Connect dials the browser, subscribes to target lifecycle events, and
// performs the initial tab sync.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cdpURL == "" {
		return types.NewError(types.CodeCDPUnavailable, "missing CDP URL", nil)
	}

	slog.Info("host connect start", "cdp_url", c.cdpURL)
	c.cleanupLocked()

	c.cdp = newRawCDP(c.cdpURL)
	if err := c.cdp.connect(ctx); err != nil {
		c.cdp = nil
		return types.NewError(types.CodeCDPUnavailable, "connect to CDP failed", err)
	}

	c.cdp.registerEventHandler("Target.targetCreated", c.handleTargetCreated)
	c.cdp.registerEventHandler("Target.targetInfoChanged", c.handleTargetInfoChanged)
	c.cdp.registerEventHandler("Target.targetDestroyed", c.handleTargetDestroyed)

	if err := c.cdp.setDiscoverTargets(ctx, true); err != nil {
		slog.Warn("host target discovery unavailable, falling back to polling", "error", err)
	}

	if err := c.syncTabsLocked(ctx); err != nil {
		slog.Error("host initial tab sync failed", "error", err)
		c.cleanupLocked()
		return types.NewError(types.CodeCDPUnavailable, "connect to CDP failed", err)
	}

	slog.Info("host connect ok", "cdp_url", c.cdpURL, "tabs", len(c.byTarget))
	return nil
}

// Close drops the CDP connection and clears the registry.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
	slog.Info("host client closed")
	return nil
}

func (c *Client) cleanupLocked() {
	if c.cdp != nil {
		c.cdp.close()
		c.cdp = nil
	}
	c.byTarget = make(map[target.ID]*types.Tab)
	c.byID = make(map[int]target.ID)
	c.windows = make(map[string]int)
}

// OnTabCreated registers a callback invoked when the browser reports a new
// page target. The callback runs on the CDP read loop; keep it short.
func (c *Client) OnTabCreated(fn func(types.Tab)) {
	c.listenerMu.Lock()
	c.onCreated = append(c.onCreated, fn)
	c.listenerMu.Unlock()
}

// OnTabRemoved registers a callback invoked with the numeric id of a closed
// tab.
func (c *Client) OnTabRemoved(fn func(int)) {
	c.listenerMu.Lock()
	c.onRemoved = append(c.onRemoved, fn)
	c.listenerMu.Unlock()
}

func isPage(info *target.Info) bool {
	return info != nil && info.Type == "page"
}

// trackLocked registers or updates a page target and reports whether it was
// newly seen.
func (c *Client) trackLocked(info *target.Info) (types.Tab, bool) {
	if tab, ok := c.byTarget[info.TargetID]; ok {
		tab.URL = info.URL
		tab.Title = info.Title
		return *tab, false
	}

	contextID := string(info.BrowserContextID)
	windowID, ok := c.windows[contextID]
	if !ok {
		c.nextWindow++
		windowID = c.nextWindow
		c.windows[contextID] = windowID
	}

	c.nextTabID++
	tab := &types.Tab{
		ID:       c.nextTabID,
		WindowID: windowID,
		TargetID: string(info.TargetID),
		URL:      info.URL,
		Title:    info.Title,
		GroupID:  types.GroupNone,
	}
	c.byTarget[info.TargetID] = tab
	c.byID[tab.ID] = info.TargetID
	return *tab, true
}

func (c *Client) handleTargetCreated(_ string, params json.RawMessage) {
	var ev struct {
		TargetInfo *target.Info `json:"targetInfo"`
	}
	if json.Unmarshal(params, &ev) != nil || !isPage(ev.TargetInfo) {
		return
	}

	c.mu.Lock()
	tab, fresh := c.trackLocked(ev.TargetInfo)
	c.mu.Unlock()
	if !fresh {
		return
	}

	slog.Debug("host tab created", "tab_id", tab.ID, "url", truncateURL(tab.URL))
	c.listenerMu.RLock()
	listeners := make([]func(types.Tab), len(c.onCreated))
	copy(listeners, c.onCreated)
	c.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(tab)
	}
}

func (c *Client) handleTargetInfoChanged(_ string, params json.RawMessage) {
	var ev struct {
		TargetInfo *target.Info `json:"targetInfo"`
	}
	if json.Unmarshal(params, &ev) != nil || !isPage(ev.TargetInfo) {
		return
	}
	c.mu.Lock()
	if tab, ok := c.byTarget[ev.TargetInfo.TargetID]; ok {
		tab.URL = ev.TargetInfo.URL
		tab.Title = ev.TargetInfo.Title
	}
	c.mu.Unlock()
}

func (c *Client) handleTargetDestroyed(_ string, params json.RawMessage) {
	var ev struct {
		TargetID target.ID `json:"targetId"`
	}
	if json.Unmarshal(params, &ev) != nil {
		return
	}

	c.mu.Lock()
	tab, ok := c.byTarget[ev.TargetID]
	var removedID int
	if ok {
		removedID = tab.ID
		delete(c.byTarget, ev.TargetID)
		delete(c.byID, tab.ID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	slog.Debug("host tab removed", "tab_id", removedID)
	c.listenerMu.RLock()
	listeners := make([]func(int), len(c.onRemoved))
	copy(listeners, c.onRemoved)
	c.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(removedID)
	}
}

// syncTabsLocked reconciles the registry with Target.getTargets: new targets
// are tracked, known ones refreshed, vanished ones dropped.
func (c *Client) syncTabsLocked(ctx context.Context) error {
	infos, err := c.cdp.getTargets(ctx)
	if err != nil {
		return err
	}

	seen := make(map[target.ID]bool, len(infos))
	for _, info := range infos {
		if !isPage(info) {
			continue
		}
		seen[info.TargetID] = true
		c.trackLocked(info)
	}
	for id, tab := range c.byTarget {
		if !seen[id] {
			delete(c.byID, tab.ID)
			delete(c.byTarget, id)
		}
	}
	return nil
}

// ListTabs refreshes the registry and returns a snapshot of every open tab
// in id (discovery) order. Callers must treat the snapshot as stale the
// moment any await point follows.
func (c *Client) ListTabs(ctx context.Context) ([]types.Tab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cdp == nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "not connected", nil)
	}
	if err := c.syncTabsLocked(ctx); err != nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "tab sync failed", err)
	}

	tabs := make([]types.Tab, 0, len(c.byTarget))
	for _, tab := range c.byTarget {
		tabs = append(tabs, *tab)
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].ID < tabs[j].ID })
	return tabs, nil
}

// ListWindowTabs returns the snapshot filtered to one window.
func (c *Client) ListWindowTabs(ctx context.Context, windowID int) ([]types.Tab, error) {
	tabs, err := c.ListTabs(ctx)
	if err != nil {
		return nil, err
	}
	out := tabs[:0]
	for _, tab := range tabs {
		if tab.WindowID == windowID {
			out = append(out, tab)
		}
	}
	return out, nil
}

// GetTab returns one tab by numeric id from the current registry state.
func (c *Client) GetTab(id int) (types.Tab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	targetID, ok := c.byID[id]
	if !ok {
		return types.Tab{}, types.NewError(types.CodeTabNotFound, "unknown tab id", nil)
	}
	return *c.byTarget[targetID], nil
}

// CreateTab opens a new tab at the given URL and returns its record.
func (c *Client) CreateTab(ctx context.Context, url string) (types.Tab, error) {
	c.mu.Lock()
	cdp := c.cdp
	c.mu.Unlock()
	if cdp == nil {
		return types.Tab{}, types.NewError(types.CodeCDPUnavailable, "not connected", nil)
	}

	targetID, err := cdp.createTarget(ctx, url)
	if err != nil {
		return types.Tab{}, types.NewError(types.CodeCDPUnavailable, "create tab failed", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tab, ok := c.byTarget[targetID]; ok {
		return *tab, nil
	}
	tab, _ := c.trackLocked(&target.Info{TargetID: targetID, Type: "page", URL: url})
	return tab, nil
}

// CloseTab closes one tab. A tab that vanished between snapshot and call
// surfaces as a TAB_NOT_FOUND coded error, which callers treat as
// recoverable.
func (c *Client) CloseTab(ctx context.Context, id int) error {
	c.mu.Lock()
	cdp := c.cdp
	targetID, ok := c.byID[id]
	c.mu.Unlock()
	if cdp == nil {
		return types.NewError(types.CodeCDPUnavailable, "not connected", nil)
	}
	if !ok {
		return types.NewError(types.CodeTabNotFound, "unknown tab id", nil)
	}

	if err := cdp.closeTarget(ctx, targetID); err != nil {
		if isGoneError(err) {
			c.dropTab(id, targetID)
			return types.NewError(types.CodeTabNotFound, "tab already closed", err)
		}
		return types.NewError(types.CodeCDPUnavailable, "close tab failed", err)
	}

	c.dropTab(id, targetID)
	return nil
}

// ActivateTab focuses one tab.
func (c *Client) ActivateTab(ctx context.Context, id int) error {
	c.mu.Lock()
	cdp := c.cdp
	targetID, ok := c.byID[id]
	c.mu.Unlock()
	if cdp == nil {
		return types.NewError(types.CodeCDPUnavailable, "not connected", nil)
	}
	if !ok {
		return types.NewError(types.CodeTabNotFound, "unknown tab id", nil)
	}
	if err := cdp.activateTarget(ctx, targetID); err != nil {
		if isGoneError(err) {
			c.dropTab(id, targetID)
			return types.NewError(types.CodeTabNotFound, "tab already closed", err)
		}
		return types.NewError(types.CodeCDPUnavailable, "activate tab failed", err)
	}
	return nil
}

func (c *Client) dropTab(id int, targetID target.ID) {
	c.mu.Lock()
	delete(c.byID, id)
	delete(c.byTarget, targetID)
	c.mu.Unlock()
}

// isGoneError matches CDP error messages for targets that no longer exist.
func isGoneError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no target") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "not closed") ||
		strings.Contains(msg, "target closed")
}

func truncateURL(url string) string {
	if len(url) > 120 {
		return url[:120] + "..."
	}
	return url
}
