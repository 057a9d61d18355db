package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/tab_warden/internal/llm"
	"github.com/dgnsrekt/tab_warden/internal/types"
)

// TopicBatchSize caps how many tabs go into one prompt, bounding prompt
// length.
const TopicBatchSize = 10

const topicInstructions = `You organize browser tabs into topical groups.
Given the numbered tabs below, propose groups of related tabs.
Answer ONLY in this exact format, one block per group:

Group 1 Name: <short group name>
Tabs: <comma-separated tab ids>

Only use the tab ids listed. A group needs at least two tabs. Tabs that fit
no group should be left out.`

// ByTopic asks the language model to group tabs by topic, one batch at a
// time, and merges the parsed suggestions. A failed content extraction
// degrades that tab to title/URL only; a failed completion aborts the whole
// clustering with an error so the caller can retry.
func ByTopic(ctx context.Context, tabs []types.Tab, completer llm.Completer, fetcher ContentFetcher) ([]types.NamedCluster, error) {
	if completer == nil {
		return nil, types.NewError(types.CodeLLMConfig, "no LLM provider configured", nil)
	}

	eligible := eligibleTabs(tabs)
	var clusters []types.NamedCluster

	for start := 0; start < len(eligible); start += TopicBatchSize {
		end := start + TopicBatchSize
		if end > len(eligible) {
			end = len(eligible)
		}
		batch := eligible[start:end]
		if len(batch) < MinClusterSize {
			break
		}

		prompt, batchIDs := buildTopicPrompt(ctx, batch, fetcher)
		completion, err := completer.Complete(ctx, prompt)
		if err != nil {
			return nil, types.NewError(types.CodeLLMUnavailable, "topic clustering failed", err)
		}

		suggestions := llm.ParseGroupSuggestions(completion, batchIDs)
		slog.Debug("topic batch parsed", "batch_size", len(batch), "suggestions", len(suggestions))
		for _, s := range suggestions {
			clusters = append(clusters, types.NamedCluster{Name: s.Name, TabIDs: s.TabIDs})
		}
	}
	return clusters, nil
}

func buildTopicPrompt(ctx context.Context, batch []types.Tab, fetcher ContentFetcher) (string, []int) {
	var b strings.Builder
	b.WriteString(topicInstructions)
	b.WriteString("\n\nTabs:\n")

	ids := make([]int, 0, len(batch))
	for _, tab := range batch {
		ids = append(ids, tab.ID)
		fmt.Fprintf(&b, "Tab id %d: %s — %s\n", tab.ID, tab.Title, tab.URL)
		if fetcher == nil {
			continue
		}
		content, err := fetcher.Extract(ctx, tab.TargetID)
		if err != nil {
			slog.Debug("content extraction failed, using title/url only", "tab_id", tab.ID, "error", err)
			continue
		}
		if content.Text != "" {
			fmt.Fprintf(&b, "  content: %s\n", content.Text)
		}
	}
	return b.String(), ids
}
