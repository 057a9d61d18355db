package cluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgnsrekt/tab_warden/internal/llm"
	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/dgnsrekt/tab_warden/internal/urlnorm"
)

// Similar asks the language model which of the eligible tabs in the
// reference tab's window belong with it. The reply is parsed as a bare id
// list and intersected with the candidates actually offered, so a
// hallucinated id can never reach the reconciler. The reference tab itself
// is always part of the proposal.
func Similar(ctx context.Context, ref types.Tab, tabs []types.Tab, completer llm.Completer) (types.NamedCluster, error) {
	if completer == nil {
		return types.NamedCluster{}, types.NewError(types.CodeLLMConfig, "no LLM provider configured", nil)
	}
	if ref.ID == 0 {
		return types.NamedCluster{}, types.NewError(types.CodeValidation, "reference tab has no id", nil)
	}

	var candidates []types.Tab
	for _, tab := range eligibleTabs(tabs) {
		if tab.ID != ref.ID && tab.WindowID == ref.WindowID {
			candidates = append(candidates, tab)
		}
	}

	name := similarClusterName(ref)
	if len(candidates) == 0 {
		return types.NamedCluster{Name: name, TabIDs: []int{ref.ID}}, nil
	}

	prompt := buildSimilarPrompt(ref, candidates)
	completion, err := completer.Complete(ctx, prompt)
	if err != nil {
		return types.NamedCluster{}, types.NewError(types.CodeLLMUnavailable, "similarity clustering failed", err)
	}

	known := make([]int, 0, len(candidates))
	for _, c := range candidates {
		known = append(known, c.ID)
	}

	ids := []int{ref.ID}
	ids = append(ids, llm.ParseIDList(completion, known)...)
	return types.NamedCluster{Name: name, TabIDs: ids}, nil
}

func similarClusterName(ref types.Tab) string {
	if title := strings.TrimSpace(ref.Title); title != "" {
		if len(title) > 40 {
			title = title[:40]
		}
		return title
	}
	if host := urlnorm.Host(ref.URL); host != "" {
		return host
	}
	return "Related tabs"
}

func buildSimilarPrompt(ref types.Tab, candidates []types.Tab) string {
	var b strings.Builder
	b.WriteString("You organize browser tabs. Here is a reference tab:\n")
	fmt.Fprintf(&b, "Tab id %d: %s — %s\n", ref.ID, ref.Title, ref.URL)
	b.WriteString("\nWhich of these tabs belong in a group with it?\n")
	for _, tab := range candidates {
		fmt.Fprintf(&b, "Tab id %d: %s — %s\n", tab.ID, tab.Title, tab.URL)
	}
	b.WriteString("\nAnswer with ONLY a comma-separated list of tab ids, or the word none.")
	return b.String()
}
