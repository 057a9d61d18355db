package cluster

import (
	"regexp"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

// ByPattern selects eligible tabs whose URL matches the user-supplied
// regular expression and proposes a single cluster under the given title.
// A pattern that fails to compile is a precondition error. The returned
// cluster may hold fewer than two members; the reconciler skips those.
func ByPattern(tabs []types.Tab, expr, title string) (types.NamedCluster, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return types.NamedCluster{}, types.NewError(types.CodeValidation, "invalid pattern", err)
	}

	cluster := types.NamedCluster{Name: title}
	for _, tab := range eligibleTabs(tabs) {
		if re.MatchString(tab.URL) {
			cluster.TabIDs = append(cluster.TabIDs, tab.ID)
		}
	}
	return cluster, nil
}
