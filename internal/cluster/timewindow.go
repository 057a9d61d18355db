package cluster

import (
	"fmt"
	"sort"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

// idMinuteScale converts a tab-id delta into approximate minutes. Tab ids
// are assigned in discovery order, so consecutive ids opened close together
// sit near each other; the scale constant is arbitrary and the whole
// strategy is a heuristic, not a clock. The host exposes no real creation
// timestamp to replace it with.
const idMinuteScale = 0.1

// ByTimeWindow sorts eligible tabs by id and splits the sequence wherever
// the scaled id gap exceeds gapMinutes. Buckets of one are dropped.
func ByTimeWindow(tabs []types.Tab, gapMinutes float64) []types.NamedCluster {
	eligible := eligibleTabs(tabs)
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })

	var buckets [][]int
	var current []int
	for i, tab := range eligible {
		if i > 0 {
			gap := float64(tab.ID-eligible[i-1].ID) * idMinuteScale
			if gap > gapMinutes {
				buckets = append(buckets, current)
				current = nil
			}
		}
		current = append(current, tab.ID)
	}
	if len(current) > 0 {
		buckets = append(buckets, current)
	}

	var clusters []types.NamedCluster
	for _, bucket := range buckets {
		if len(bucket) < MinClusterSize {
			continue
		}
		clusters = append(clusters, types.NamedCluster{
			Name:   fmt.Sprintf("Session %d", len(clusters)+1),
			TabIDs: bucket,
		})
	}
	return clusters
}
