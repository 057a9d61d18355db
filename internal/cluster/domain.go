package cluster

import (
	"sort"

	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/dgnsrekt/tab_warden/internal/urlnorm"
)

// ByDomain buckets eligible tabs by registrable host (leading "www."
// stripped) and proposes one cluster per host with at least two members,
// titled by the host. Output is sorted by host for deterministic
// reconciliation.
func ByDomain(tabs []types.Tab) []types.NamedCluster {
	buckets := make(map[string][]int)
	for _, tab := range eligibleTabs(tabs) {
		host := urlnorm.Host(tab.URL)
		if host == "" {
			continue
		}
		buckets[host] = append(buckets[host], tab.ID)
	}

	hosts := make([]string, 0, len(buckets))
	for host, ids := range buckets {
		if len(ids) >= MinClusterSize {
			hosts = append(hosts, host)
		}
	}
	sort.Strings(hosts)

	clusters := make([]types.NamedCluster, 0, len(hosts))
	for _, host := range hosts {
		clusters = append(clusters, types.NamedCluster{Name: host, TabIDs: buckets[host]})
	}
	return clusters
}
