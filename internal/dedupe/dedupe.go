// Package dedupe partitions tab snapshots into original/duplicate groups.
package dedupe

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/dgnsrekt/tab_warden/internal/urlnorm"
)

// Partition groups tabs that share a normalized URL. Single pass over the
// input: the first-encountered tab of each equivalence class is the
// original, so output depends on input order — callers keep snapshots in id
// order for deterministic results. Tabs without an id are skipped entirely,
// and a tab with no duplicates produces no group.
func Partition(tabs []types.Tab) []types.DuplicateGroup {
	assigned := make(map[int]bool, len(tabs))
	var groups []types.DuplicateGroup

	for i, tab := range tabs {
		if tab.ID == 0 || assigned[tab.ID] {
			continue
		}

		var dups []types.Tab
		for _, other := range tabs[i+1:] {
			if other.ID == 0 || assigned[other.ID] {
				continue
			}
			if urlnorm.SamePage(tab.URL, other.URL) {
				dups = append(dups, other)
				assigned[other.ID] = true
			}
		}
		if len(dups) == 0 {
			continue
		}
		assigned[tab.ID] = true
		groups = append(groups, types.DuplicateGroup{Original: tab, Duplicates: dups})
	}
	return groups
}

// PartitionWindow is Partition restricted to one window.
func PartitionWindow(tabs []types.Tab, windowID int) []types.DuplicateGroup {
	scoped := make([]types.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if tab.WindowID == windowID {
			scoped = append(scoped, tab)
		}
	}
	return Partition(scoped)
}

// DuplicatesOf returns every tab that duplicates the given tab, excluding
// the tab itself.
func DuplicatesOf(tabs []types.Tab, ref types.Tab) []types.Tab {
	var dups []types.Tab
	for _, other := range tabs {
		if other.ID == 0 || other.ID == ref.ID {
			continue
		}
		if urlnorm.SamePage(ref.URL, other.URL) {
			dups = append(dups, other)
		}
	}
	return dups
}

// TabRemover closes a tab on the host. A TAB_NOT_FOUND failure is expected
// when the tab vanished after the snapshot.
type TabRemover interface {
	CloseTab(ctx context.Context, id int) error
}

// GroupMerge reports the outcome for one duplicate group.
type GroupMerge struct {
	OriginalID int `json:"original_id"`
	Removed    int `json:"removed"`
	Failed     int `json:"failed"`
}

// MergeReport is the outcome of closing duplicates across groups. Removal
// continues past individual failures; Errors collects what went wrong.
type MergeReport struct {
	Groups  []GroupMerge `json:"groups"`
	Removed int          `json:"removed"`
	Errors  []string     `json:"errors,omitempty"`
}

// CloseDuplicates removes every duplicate tab in the given groups, keeping
// each original. Failures are collected, not fatal: a vanished tab costs
// one entry in the report, never the rest of the batch.
func CloseDuplicates(ctx context.Context, remover TabRemover, groups []types.DuplicateGroup) MergeReport {
	var report MergeReport
	for _, g := range groups {
		merge := GroupMerge{OriginalID: g.Original.ID}
		for _, dup := range g.Duplicates {
			if err := remover.CloseTab(ctx, dup.ID); err != nil {
				merge.Failed++
				report.Errors = append(report.Errors, err.Error())
				slog.Warn("duplicate close failed", "tab_id", dup.ID, "error", err)
				continue
			}
			merge.Removed++
			report.Removed++
		}
		report.Groups = append(report.Groups, merge)
	}
	return report
}
