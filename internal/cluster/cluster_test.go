package cluster

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

func tab(id int, url string) types.Tab {
	return types.Tab{ID: id, WindowID: 1, URL: url}
}

func TestByDomainMergesWWWAndSkipsSingletons(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://a.com/x"),
		tab(2, "https://www.a.com/y"),
		tab(3, "https://b.com/z"),
	}
	clusters := ByDomain(tabs)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1: %+v", len(clusters), clusters)
	}
	if clusters[0].Name != "a.com" {
		t.Fatalf("cluster name = %q, want a.com", clusters[0].Name)
	}
	if !reflect.DeepEqual(clusters[0].TabIDs, []int{1, 2}) {
		t.Fatalf("cluster ids = %v, want [1 2]", clusters[0].TabIDs)
	}
}

func TestByDomainSkipsGroupedAndInternalTabs(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://a.com/x"),
		{ID: 2, WindowID: 1, URL: "https://a.com/y", GroupID: 9},
		tab(3, "chrome://settings"),
		tab(4, "https://a.com/z"),
	}
	clusters := ByDomain(tabs)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if !reflect.DeepEqual(clusters[0].TabIDs, []int{1, 4}) {
		t.Fatalf("grouped tab must be excluded, got %v", clusters[0].TabIDs)
	}
}

func TestByPattern(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://github.com/org/repo"),
		tab(2, "https://docs.github.com/en"),
		tab(3, "https://example.com/"),
	}
	cluster, err := ByPattern(tabs, `github\.com`, "GitHub")
	if err != nil {
		t.Fatalf("ByPattern: %v", err)
	}
	if cluster.Name != "GitHub" || !reflect.DeepEqual(cluster.TabIDs, []int{1, 2}) {
		t.Fatalf("cluster = %+v", cluster)
	}
}

func TestByPatternInvalidRegexp(t *testing.T) {
	if _, err := ByPattern(nil, `([`, "bad"); err == nil {
		t.Fatalf("invalid pattern must be a precondition error")
	}
}

func TestByTimeWindowBuckets(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://a.com/1"),
		tab(2, "https://a.com/2"),
		tab(3, "https://a.com/3"),
		tab(1000, "https://a.com/4"),
		tab(1001, "https://a.com/5"),
	}
	// Threshold 10 with the 0.1 scale splits on id gaps above 100.
	clusters := ByTimeWindow(tabs, 10)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(clusters), clusters)
	}
	if !reflect.DeepEqual(clusters[0].TabIDs, []int{1, 2, 3}) {
		t.Fatalf("bucket 0 = %v", clusters[0].TabIDs)
	}
	if !reflect.DeepEqual(clusters[1].TabIDs, []int{1000, 1001}) {
		t.Fatalf("bucket 1 = %v", clusters[1].TabIDs)
	}
}

func TestByTimeWindowDropsIsolatedTab(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://a.com/1"),
		tab(2, "https://a.com/2"),
		tab(5000, "https://a.com/3"),
	}
	clusters := ByTimeWindow(tabs, 10)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if !reflect.DeepEqual(clusters[0].TabIDs, []int{1, 2}) {
		t.Fatalf("isolated tab must form no bucket, got %+v", clusters)
	}
}

type fakeCompleter struct {
	completion string
	err        error
	prompts    []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func TestByTopicParsesSuggestions(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://news.com/a"),
		tab(2, "https://news.com/b"),
		tab(3, "https://shop.com/c"),
		tab(4, "https://shop.com/d"),
	}
	completer := &fakeCompleter{completion: `Group 1 Name: News
Tabs: 1, 2

Group 2 Name: Shopping
Tabs: 3, 4
`}
	clusters, err := ByTopic(context.Background(), tabs, completer, nil)
	if err != nil {
		t.Fatalf("ByTopic: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(clusters), clusters)
	}
	if clusters[0].Name != "News" || clusters[1].Name != "Shopping" {
		t.Fatalf("cluster names = %q, %q", clusters[0].Name, clusters[1].Name)
	}
	if len(completer.prompts) != 1 {
		t.Fatalf("four tabs should fit one batch, got %d prompts", len(completer.prompts))
	}
}

func TestByTopicPropagatesCompletionError(t *testing.T) {
	tabs := []types.Tab{tab(1, "https://a.com/1"), tab(2, "https://a.com/2")}
	completer := &fakeCompleter{err: errors.New("boom")}
	if _, err := ByTopic(context.Background(), tabs, completer, nil); err == nil {
		t.Fatalf("completion failure must propagate, not yield empty clusters")
	}
}

func TestByTopicWithoutProvider(t *testing.T) {
	if _, err := ByTopic(context.Background(), nil, nil, nil); err == nil {
		t.Fatalf("missing provider must be a precondition error")
	}
}

func TestSimilarIntersectsWithCandidates(t *testing.T) {
	ref := types.Tab{ID: 10, WindowID: 1, URL: "https://a.com/ref", Title: "Reference"}
	tabs := []types.Tab{
		ref,
		tab(11, "https://a.com/x"),
		tab(12, "https://b.com/y"),
		{ID: 13, WindowID: 2, URL: "https://a.com/other-window"},
	}
	// 99 is hallucinated, 13 is in another window; both must be dropped.
	completer := &fakeCompleter{completion: "11, 99, 13"}
	cluster, err := Similar(context.Background(), ref, tabs, completer)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if !reflect.DeepEqual(cluster.TabIDs, []int{10, 11}) {
		t.Fatalf("cluster ids = %v, want [10 11]", cluster.TabIDs)
	}
}

func TestSimilarNoCandidates(t *testing.T) {
	ref := types.Tab{ID: 10, WindowID: 1, URL: "https://a.com/ref"}
	cluster, err := Similar(context.Background(), ref, []types.Tab{ref}, &fakeCompleter{})
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if !reflect.DeepEqual(cluster.TabIDs, []int{10}) {
		t.Fatalf("cluster ids = %v, want just the reference", cluster.TabIDs)
	}
}
