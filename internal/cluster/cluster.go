// Package cluster maps tab snapshots to named group proposals. Each
// strategy is a function of a snapshot; none mutates host state.
package cluster

import (
	"context"

	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/dgnsrekt/tab_warden/internal/urlnorm"
)

// MinClusterSize is the materialization floor: proposals with fewer members
// are discarded rather than turned into real groups.
const MinClusterSize = 2

// Snippet is the page content a strategy may attach to a prompt.
type Snippet struct {
	Title string
	Text  string
}

// ContentFetcher reads page text for a tab. Implemented by the host
// extractor; declared here so strategies stay decoupled from the CDP layer.
type ContentFetcher interface {
	Extract(ctx context.Context, targetID string) (Snippet, error)
}

// Eligible reports whether a tab can join a cluster: it must have an id,
// belong to no group, and not be a browser-internal or blank page.
func Eligible(tab types.Tab) bool {
	return tab.ID != 0 && tab.GroupID == types.GroupNone && !urlnorm.IsInternal(tab.URL)
}

func eligibleTabs(tabs []types.Tab) []types.Tab {
	out := make([]types.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if Eligible(tab) {
			out = append(out, tab)
		}
	}
	return out
}
