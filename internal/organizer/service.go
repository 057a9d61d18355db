// Package organizer wires the host client, the duplicate partitioner, the
// cluster strategies, and the group registry into the operations the API
// exposes.
package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dgnsrekt/tab_warden/internal/cluster"
	"github.com/dgnsrekt/tab_warden/internal/dedupe"
	"github.com/dgnsrekt/tab_warden/internal/groups"
	"github.com/dgnsrekt/tab_warden/internal/llm"
	"github.com/dgnsrekt/tab_warden/internal/notify"
	"github.com/dgnsrekt/tab_warden/internal/store"
	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/dgnsrekt/tab_warden/internal/urlnorm"
)

// duplicatesGroupTitle names the forced-red group MarkDuplicates builds.
const duplicatesGroupTitle = "Duplicates"

// Host is the browser surface the organizer drives.
type Host interface {
	ListTabs(ctx context.Context) ([]types.Tab, error)
	ListWindowTabs(ctx context.Context, windowID int) ([]types.Tab, error)
	GetTab(id int) (types.Tab, error)
	CreateTab(ctx context.Context, url string) (types.Tab, error)
	CloseTab(ctx context.Context, id int) error
	ActivateTab(ctx context.Context, id int) error
}

// Service implements every organizer operation against one host browser.
type Service struct {
	host       Host
	registry   *groups.Registry
	reconciler *groups.Reconciler
	store      *store.Store
	actions    *store.ActionLog
	completer  llm.Completer
	fetcher    cluster.ContentFetcher
	notifier   *notify.Notifier

	settingsMu sync.RWMutex
	settings   store.Settings
}

// Options carries the optional collaborators. Nil members disable the
// matching feature instead of failing construction.
type Options struct {
	Completer llm.Completer
	Fetcher   cluster.ContentFetcher
	Actions   *store.ActionLog
	Notifier  *notify.Notifier
}

// New builds a Service. Settings are loaded from the store once at startup;
// later updates go through UpdateSettings.
func New(host Host, st *store.Store, opts Options) (*Service, error) {
	settings, err := st.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("organizer: load settings: %w", err)
	}

	registry := groups.NewRegistry()
	return &Service{
		host:       host,
		registry:   registry,
		reconciler: groups.NewReconciler(registry),
		store:      st,
		actions:    opts.Actions,
		completer:  opts.Completer,
		fetcher:    opts.Fetcher,
		notifier:   opts.Notifier,
		settings:   settings,
	}, nil
}

// Registry exposes the group registry for event wiring.
func (s *Service) Registry() *groups.Registry { return s.registry }

func (s *Service) record(action string, details map[string]any) {
	if s.actions != nil {
		s.actions.Record(action, details)
	}
}

func (s *Service) notify(ctx context.Context, message string) {
	if err := s.notifier.Notify(ctx, message); err != nil {
		slog.Debug("notification failed", "error", err)
	}
}

// snapshot returns the current tab list decorated with registry group ids.
func (s *Service) snapshot(ctx context.Context) ([]types.Tab, error) {
	tabs, err := s.host.ListTabs(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry.Decorate(tabs), nil
}

// Tabs returns every open tab with its group membership.
func (s *Service) Tabs(ctx context.Context) ([]types.Tab, error) {
	return s.snapshot(ctx)
}

// GetTab returns one tab with its group membership.
func (s *Service) GetTab(id int) (types.Tab, error) {
	tab, err := s.host.GetTab(id)
	if err != nil {
		return types.Tab{}, err
	}
	tab.GroupID = s.registry.GroupOf(tab.ID)
	return tab, nil
}

// OpenTab opens a new tab at the given URL.
func (s *Service) OpenTab(ctx context.Context, url string) (types.Tab, error) {
	return s.host.CreateTab(ctx, url)
}

// CloseTab closes one tab.
func (s *Service) CloseTab(ctx context.Context, id int) error {
	return s.host.CloseTab(ctx, id)
}

// ActivateTab focuses one tab.
func (s *Service) ActivateTab(ctx context.Context, id int) error {
	return s.host.ActivateTab(ctx, id)
}

// FindDuplicates partitions every open tab into duplicate groups.
func (s *Service) FindDuplicates(ctx context.Context) ([]types.DuplicateGroup, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dedupe.Partition(tabs), nil
}

// FindDuplicatesInWindow restricts the duplicate scan to one window.
func (s *Service) FindDuplicatesInWindow(ctx context.Context, windowID int) ([]types.DuplicateGroup, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dedupe.PartitionWindow(tabs, windowID), nil
}

// DuplicatesOf lists the tabs duplicating one reference tab.
func (s *Service) DuplicatesOf(ctx context.Context, tabID int) ([]types.Tab, error) {
	ref, err := s.GetTab(tabID)
	if err != nil {
		return nil, err
	}
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dedupe.DuplicatesOf(tabs, ref), nil
}

// CloseDuplicates closes every duplicate tab, keeping each original.
// Failures are collected per tab; the batch always runs to the end.
func (s *Service) CloseDuplicates(ctx context.Context) (dedupe.MergeReport, error) {
	duplicateGroups, err := s.FindDuplicates(ctx)
	if err != nil {
		return dedupe.MergeReport{}, err
	}
	report := dedupe.CloseDuplicates(ctx, s.host, duplicateGroups)
	for _, g := range duplicateGroups {
		for _, dup := range g.Duplicates {
			s.registry.DropTab(dup.ID)
		}
	}

	s.record("close_duplicates", map[string]any{"removed": report.Removed, "errors": len(report.Errors)})
	if report.Removed > 0 {
		s.notify(ctx, fmt.Sprintf("tab warden closed %d duplicate tabs", report.Removed))
	}
	return report, nil
}

// MarkDuplicates groups each duplicate set into a red group instead of
// closing anything, so the user can review before acting.
func (s *Service) MarkDuplicates(ctx context.Context) (groups.ApplyReport, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return groups.ApplyReport{}, err
	}

	var clusters []types.NamedCluster
	for _, g := range dedupe.Partition(tabs) {
		ids := []int{g.Original.ID}
		for _, dup := range g.Duplicates {
			ids = append(ids, dup.ID)
		}
		clusters = append(clusters, types.NamedCluster{
			Name:   duplicatesGroupTitle,
			TabIDs: ids,
			Color:  types.ColorRed,
		})
	}

	report := s.reconciler.Apply(clusters, tabs)
	s.record("mark_duplicates", map[string]any{"groups": len(report.Created) + len(report.Reused)})
	return report, nil
}

// GroupByDomain clusters ungrouped tabs by registrable host and
// materializes the clusters as groups.
func (s *Service) GroupByDomain(ctx context.Context) (groups.ApplyReport, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	report := s.reconciler.Apply(cluster.ByDomain(tabs), tabs)
	s.record("group_by_domain", map[string]any{"created": len(report.Created), "reused": len(report.Reused)})
	return report, nil
}

// GroupByPattern groups tabs whose URL matches the given regular
// expression under the given title.
func (s *Service) GroupByPattern(ctx context.Context, expr, title string) (groups.ApplyReport, error) {
	if title == "" {
		return groups.ApplyReport{}, types.NewError(types.CodeValidation, "group title required", nil)
	}
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	c, err := cluster.ByPattern(tabs, expr, title)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	report := s.reconciler.Apply([]types.NamedCluster{c}, tabs)
	s.record("group_by_pattern", map[string]any{"pattern": expr, "matched": len(c.TabIDs)})
	return report, nil
}

// GroupByTime buckets ungrouped tabs into sessions by id gap. A zero
// gapMinutes falls back to the configured default.
func (s *Service) GroupByTime(ctx context.Context, gapMinutes float64) (groups.ApplyReport, error) {
	if gapMinutes <= 0 {
		gapMinutes = s.Settings().TimeGapMinutes
	}
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	report := s.reconciler.Apply(cluster.ByTimeWindow(tabs, gapMinutes), tabs)
	s.record("group_by_time", map[string]any{"gap_minutes": gapMinutes, "created": len(report.Created)})
	return report, nil
}

// GroupByTopic asks the language model for topical clusters and
// materializes them.
func (s *Service) GroupByTopic(ctx context.Context) (groups.ApplyReport, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	clusters, err := cluster.ByTopic(ctx, tabs, s.completer, s.fetcher)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	report := s.reconciler.Apply(clusters, tabs)
	s.record("group_by_topic", map[string]any{"created": len(report.Created), "reused": len(report.Reused)})
	return report, nil
}

// GroupSimilar groups the reference tab with the tabs the language model
// judges related to it.
func (s *Service) GroupSimilar(ctx context.Context, tabID int) (groups.ApplyReport, error) {
	ref, err := s.GetTab(tabID)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	c, err := cluster.Similar(ctx, ref, tabs, s.completer)
	if err != nil {
		return groups.ApplyReport{}, err
	}
	report := s.reconciler.Apply([]types.NamedCluster{c}, tabs)
	s.record("group_similar", map[string]any{"tab_id": tabID, "members": len(c.TabIDs)})
	return report, nil
}

// ListGroups returns every live group in display order.
func (s *Service) ListGroups() []groups.Handle {
	return s.registry.List()
}

// GetGroup returns one group.
func (s *Service) GetGroup(groupID int) (groups.Handle, error) {
	h, ok := s.registry.Get(groupID)
	if !ok {
		return groups.Handle{}, types.NewError(types.CodeGroupNotFound, "group not found", nil)
	}
	return h, nil
}

// Ungroup dissolves a group, leaving its tabs open.
func (s *Service) Ungroup(groupID int) error {
	if err := s.registry.Destroy(groupID); err != nil {
		return err
	}
	s.record("ungroup", map[string]any{"group_id": groupID})
	return nil
}

// MoveGroup places a group at the given display position.
func (s *Service) MoveGroup(groupID, index int) error {
	return s.registry.Move(groupID, index)
}

// SetCollapsedAll collapses or expands every group, returning how many
// changed.
func (s *Service) SetCollapsedAll(collapsed bool) int {
	changed := s.registry.SetCollapsedAll(collapsed)
	s.record("set_collapsed_all", map[string]any{"collapsed": collapsed, "changed": changed})
	return changed
}

// SetCollapsed collapses or expands one group.
func (s *Service) SetCollapsed(groupID int, collapsed bool) error {
	return s.registry.SetCollapsed(groupID, collapsed)
}

type hostCloser struct {
	ctx  context.Context
	host Host
}

func (h hostCloser) CloseTab(id int) error { return h.host.CloseTab(h.ctx, id) }

// CloseGroup closes every tab in the group and destroys it. Individual
// close failures are reported, not fatal.
func (s *Service) CloseGroup(ctx context.Context, groupID int) (groups.CloseGroupReport, error) {
	report, err := s.reconciler.CloseGroup(groupID, hostCloser{ctx: ctx, host: s.host})
	if err != nil {
		return groups.CloseGroupReport{}, err
	}
	s.record("close_group", map[string]any{"group_id": groupID, "closed": len(report.Closed)})
	return report, nil
}

// SortTabs returns the current tabs ordered by window, then host, then
// title. The wire protocol cannot reorder the browser tab strip, so the
// sorted order is advisory: clients render it, the browser keeps its own
// order.
func (s *Service) SortTabs(ctx context.Context) ([]types.Tab, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tabs, func(i, j int) bool {
		if tabs[i].WindowID != tabs[j].WindowID {
			return tabs[i].WindowID < tabs[j].WindowID
		}
		hi, hj := urlnorm.Host(tabs[i].URL), urlnorm.Host(tabs[j].URL)
		if hi != hj {
			return hi < hj
		}
		if tabs[i].Title != tabs[j].Title {
			return tabs[i].Title < tabs[j].Title
		}
		return urlnorm.Normalize(tabs[i].URL) < urlnorm.Normalize(tabs[j].URL)
	})
	s.record("sort_tabs", map[string]any{"tabs": len(tabs)})
	return tabs, nil
}

// SaveGroup persists one live group's tabs for later restore.
func (s *Service) SaveGroup(ctx context.Context, groupID int) (store.SavedGroup, error) {
	handle, err := s.GetGroup(groupID)
	if err != nil {
		return store.SavedGroup{}, err
	}

	saved := store.SavedGroup{Title: handle.Title, Color: handle.Color}
	for _, id := range handle.TabIDs {
		tab, err := s.host.GetTab(id)
		if err != nil {
			slog.Warn("saving group skipped vanished tab", "tab_id", id)
			continue
		}
		saved.Tabs = append(saved.Tabs, types.SavedTab{Title: tab.Title, URL: tab.URL})
	}
	saved, err = s.store.SaveGroup(saved)
	if err != nil {
		return store.SavedGroup{}, err
	}
	s.record("save_group", map[string]any{"group_id": groupID, "saved_id": saved.ID})
	return saved, nil
}

// SaveSession persists every window's tabs under one name.
func (s *Service) SaveSession(ctx context.Context, name string) (store.SavedSession, error) {
	tabs, err := s.snapshot(ctx)
	if err != nil {
		return store.SavedSession{}, err
	}

	byWindow := make(map[int][]types.SavedTab)
	var windowIDs []int
	for _, tab := range tabs {
		if _, ok := byWindow[tab.WindowID]; !ok {
			windowIDs = append(windowIDs, tab.WindowID)
		}
		byWindow[tab.WindowID] = append(byWindow[tab.WindowID], types.SavedTab{Title: tab.Title, URL: tab.URL})
	}
	sort.Ints(windowIDs)

	sess := store.SavedSession{Name: name}
	for _, id := range windowIDs {
		sess.Windows = append(sess.Windows, store.SavedWindow{Tabs: byWindow[id]})
	}
	sess, err = s.store.SaveSession(sess)
	if err != nil {
		return store.SavedSession{}, err
	}
	s.record("save_session", map[string]any{"saved_id": sess.ID, "windows": len(sess.Windows)})
	return sess, nil
}

// ListSavedGroups lists persisted groups, newest first.
func (s *Service) ListSavedGroups() ([]store.SavedGroup, error) { return s.store.ListGroups() }

// ListSavedSessions lists persisted sessions, newest first.
func (s *Service) ListSavedSessions() ([]store.SavedSession, error) { return s.store.ListSessions() }

// DeleteSavedGroup removes one persisted group.
func (s *Service) DeleteSavedGroup(id string) error { return s.store.DeleteGroup(id) }

// DeleteSavedSession removes one persisted session.
func (s *Service) DeleteSavedSession(id string) error { return s.store.DeleteSession(id) }

// RestoreGroup reopens a saved group's tabs and regroups them under the
// saved title and color. Tabs that fail to open are skipped.
func (s *Service) RestoreGroup(ctx context.Context, savedID string) (groups.ApplyReport, error) {
	saved, err := s.store.GetGroup(savedID)
	if err != nil {
		return groups.ApplyReport{}, err
	}

	var opened []types.Tab
	for _, st := range saved.Tabs {
		tab, err := s.host.CreateTab(ctx, st.URL)
		if err != nil {
			slog.Warn("restore skipped tab", "url", st.URL, "error", err)
			continue
		}
		opened = append(opened, tab)
	}

	ids := make([]int, 0, len(opened))
	for _, tab := range opened {
		ids = append(ids, tab.ID)
	}
	c := types.NamedCluster{Name: saved.Title, TabIDs: ids, Color: saved.Color}
	report := s.reconciler.Apply([]types.NamedCluster{c}, opened)
	s.record("restore_group", map[string]any{"saved_id": savedID, "opened": len(opened)})
	return report, nil
}

// RestoreSession reopens every tab of a saved session. Window boundaries
// are not reproduced; the wire protocol offers no window placement, so the
// tabs open in the current window.
func (s *Service) RestoreSession(ctx context.Context, savedID string) (int, error) {
	saved, err := s.store.GetSession(savedID)
	if err != nil {
		return 0, err
	}

	opened := 0
	for _, window := range saved.Windows {
		for _, st := range window.Tabs {
			if _, err := s.host.CreateTab(ctx, st.URL); err != nil {
				slog.Warn("restore skipped tab", "url", st.URL, "error", err)
				continue
			}
			opened++
		}
	}
	s.record("restore_session", map[string]any{"saved_id": savedID, "opened": opened})
	return opened, nil
}

// Settings returns the current runtime settings.
func (s *Service) Settings() store.Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// UpdateSettings persists and applies new settings. Last writer wins.
func (s *Service) UpdateSettings(settings store.Settings) error {
	if settings.TimeGapMinutes <= 0 {
		return types.NewError(types.CodeValidation, "time gap must be positive", nil)
	}
	if err := s.store.SaveSettings(settings); err != nil {
		return err
	}
	s.settingsMu.Lock()
	s.settings = settings
	s.settingsMu.Unlock()
	s.record("update_settings", map[string]any{
		"auto_dedupe": settings.AutoDedupe,
		"auto_group":  settings.AutoGroup,
	})
	return nil
}
