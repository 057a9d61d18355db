// Package types holds the tab and cluster records shared between the host
// client, the partitioner, the cluster strategies, and the reconciler.
package types

// GroupNone marks a tab that belongs to no tab group.
const GroupNone = 0

// Tab is a point-in-time copy of one browser tab. The host browser owns the
// live state; everything here is a snapshot taken at query time. The numeric
// ID is assigned in discovery order and is unique while the tab is open but
// unstable across browser restarts.
type Tab struct {
	ID       int    `json:"id"`
	WindowID int    `json:"window_id"`
	TargetID string `json:"target_id"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	GroupID  int    `json:"group_id,omitempty"`
	Active   bool   `json:"active,omitempty"`
	Pinned   bool   `json:"pinned,omitempty"`
}

// DuplicateGroup is one original tab plus the tabs that share its normalized
// URL. Recomputed on every scan, never persisted.
type DuplicateGroup struct {
	Original   Tab   `json:"original"`
	Duplicates []Tab `json:"duplicates"`
}

// NamedCluster is a proposed tab group: a title, member tab ids, and an
// optional color. Clusters with fewer than two members are never
// materialized as real groups.
type NamedCluster struct {
	Name   string `json:"name"`
	TabIDs []int  `json:"tab_ids"`
	Color  Color  `json:"color,omitempty"`
}

// SavedTab is the durable copy of tab metadata kept in saved groups and
// sessions.
type SavedTab struct {
	Title      string `json:"title,omitempty"`
	URL        string `json:"url"`
	FavIconURL string `json:"favicon_url,omitempty"`
}
