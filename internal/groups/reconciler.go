package groups

import (
	"log/slog"
	"math/rand"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

// Reconciler turns proposed clusters into real registry groups. Applying
// the same proposal twice is a no-op: a cluster whose title already names a
// group in the same window is merged into it instead of spawning a twin.
type Reconciler struct {
	registry *Registry
	colorFn  func() types.Color
}

func NewReconciler(registry *Registry) *Reconciler {
	return &Reconciler{
		registry: registry,
		colorFn:  randomColor,
	}
}

func randomColor() types.Color {
	palette := types.Palette()
	return palette[rand.Intn(len(palette))]
}

// ApplyReport summarizes one reconciliation pass.
type ApplyReport struct {
	Created []Handle `json:"created"`
	Reused  []Handle `json:"reused"`
	Skipped int      `json:"skipped"`
}

// Apply materializes each cluster as a tab group. Clusters with fewer than
// two members are skipped. The window for a cluster is taken from its first
// resolvable member; members from other windows are still assigned, since
// the registry does not police window membership. A cluster without a color
// draws one at random from the palette.
func (r *Reconciler) Apply(clusters []types.NamedCluster, tabs []types.Tab) ApplyReport {
	byID := make(map[int]types.Tab, len(tabs))
	for _, tab := range tabs {
		byID[tab.ID] = tab
	}

	var report ApplyReport
	for _, cluster := range clusters {
		members := make([]int, 0, len(cluster.TabIDs))
		windowID := 0
		for _, id := range cluster.TabIDs {
			tab, ok := byID[id]
			if !ok {
				continue
			}
			if windowID == 0 {
				windowID = tab.WindowID
			}
			members = append(members, id)
		}
		if len(members) < 2 {
			report.Skipped++
			continue
		}

		handle, ok := r.registry.FindByTitle(windowID, cluster.Name)
		if !ok {
			color := cluster.Color
			if !color.Valid() {
				color = r.colorFn()
			}
			handle = r.registry.Create(cluster.Name, color, windowID)
			if err := r.registry.Assign(handle.ID, members...); err != nil {
				slog.Warn("assign to new group failed", "group", cluster.Name, "error", err)
				continue
			}
			handle, _ = r.registry.Get(handle.ID)
			report.Created = append(report.Created, handle)
			continue
		}

		if err := r.registry.Assign(handle.ID, members...); err != nil {
			slog.Warn("assign to existing group failed", "group", cluster.Name, "error", err)
			continue
		}
		handle, _ = r.registry.Get(handle.ID)
		report.Reused = append(report.Reused, handle)
	}
	return report
}

// TabCloser closes one tab in the host browser.
type TabCloser interface {
	CloseTab(id int) error
}

// CloseGroupReport lists what CloseGroup managed to close.
type CloseGroupReport struct {
	Closed []int `json:"closed"`
	Failed []int `json:"failed,omitempty"`
}

// CloseGroup closes every tab in the group, continuing past individual
// failures, then destroys the group. Tabs that failed to close are
// released from the registry anyway; the next snapshot reconciles them.
func (r *Reconciler) CloseGroup(groupID int, closer TabCloser) (CloseGroupReport, error) {
	handle, ok := r.registry.Get(groupID)
	if !ok {
		return CloseGroupReport{}, types.NewError(types.CodeGroupNotFound, "group not found", nil)
	}

	var report CloseGroupReport
	for _, id := range handle.TabIDs {
		if err := closer.CloseTab(id); err != nil {
			slog.Warn("close tab in group failed", "tab_id", id, "error", err)
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Closed = append(report.Closed, id)
	}
	// Destroy even on partial failure so the registry never holds a
	// half-closed group.
	_ = r.registry.Destroy(groupID)
	return report, nil
}
