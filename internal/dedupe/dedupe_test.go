package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

func tab(id int, url string) types.Tab {
	return types.Tab{ID: id, WindowID: 1, URL: url}
}

func TestPartitionFirstEncounteredIsOriginal(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://example.com/a"),
		tab(2, "https://example.com/a"),
		tab(3, "https://example.com/a"),
	}
	groups := Partition(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Original.ID != 1 {
		t.Fatalf("original = %d, want 1", g.Original.ID)
	}
	if len(g.Duplicates) != 2 || g.Duplicates[0].ID != 2 || g.Duplicates[1].ID != 3 {
		t.Fatalf("duplicates = %v, want [2 3]", g.Duplicates)
	}
}

func TestPartitionDisjointGroups(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "https://a.com/"),
		tab(2, "https://a.com/"),
		tab(3, "https://b.com/"),
		tab(4, "https://b.com/"),
		tab(5, "https://c.com/"),
	}
	groups := Partition(tabs)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	seen := make(map[int]bool)
	for _, g := range groups {
		for _, d := range g.Duplicates {
			if seen[d.ID] {
				t.Fatalf("tab %d appears in more than one duplicate set", d.ID)
			}
			seen[d.ID] = true
		}
	}
	// Singleton tab 5 appears nowhere.
	if seen[5] {
		t.Fatalf("singleton tab must not appear in any group")
	}
}

func TestPartitionSkipsTabsWithoutID(t *testing.T) {
	tabs := []types.Tab{
		{URL: "https://a.com/"},
		tab(2, "https://a.com/"),
		tab(3, "https://a.com/"),
	}
	groups := Partition(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Original.ID != 2 {
		t.Fatalf("id-less tab must not become original, got %d", groups[0].Original.ID)
	}
}

func TestPartitionIgnoresInternalPages(t *testing.T) {
	tabs := []types.Tab{
		tab(1, "chrome://newtab"),
		tab(2, "chrome://newtab"),
	}
	if groups := Partition(tabs); len(groups) != 0 {
		t.Fatalf("internal pages must never form duplicate groups, got %v", groups)
	}
}

func TestPartitionWindowScoping(t *testing.T) {
	tabs := []types.Tab{
		{ID: 1, WindowID: 1, URL: "https://a.com/"},
		{ID: 2, WindowID: 2, URL: "https://a.com/"},
		{ID: 3, WindowID: 2, URL: "https://a.com/"},
	}
	groups := PartitionWindow(tabs, 2)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Original.ID != 2 {
		t.Fatalf("original = %d, want 2", groups[0].Original.ID)
	}
}

func TestDuplicatesOfExcludesSelf(t *testing.T) {
	ref := tab(1, "https://a.com/x?b=2&a=1")
	tabs := []types.Tab{
		ref,
		tab(2, "https://a.com/x?a=1&b=2"),
		tab(3, "https://a.com/y"),
	}
	dups := DuplicatesOf(tabs, ref)
	if len(dups) != 1 || dups[0].ID != 2 {
		t.Fatalf("dups = %v, want only tab 2", dups)
	}
}

type fakeRemover struct {
	failIDs map[int]bool
	closed  []int
}

func (f *fakeRemover) CloseTab(_ context.Context, id int) error {
	if f.failIDs[id] {
		return errors.New("tab already closed")
	}
	f.closed = append(f.closed, id)
	return nil
}

func TestCloseDuplicatesCollectAndContinue(t *testing.T) {
	groups := []types.DuplicateGroup{
		{Original: tab(1, "u"), Duplicates: []types.Tab{tab(2, "u"), tab(3, "u")}},
		{Original: tab(4, "v"), Duplicates: []types.Tab{tab(5, "v")}},
	}
	remover := &fakeRemover{failIDs: map[int]bool{2: true}}
	report := CloseDuplicates(context.Background(), remover, groups)

	if report.Removed != 2 {
		t.Fatalf("removed = %d, want 2", report.Removed)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", report.Errors)
	}
	if len(remover.closed) != 2 {
		t.Fatalf("closed = %v, want tabs 3 and 5", remover.closed)
	}
	if report.Groups[0].Failed != 1 || report.Groups[0].Removed != 1 {
		t.Fatalf("group 0 merge = %+v, want 1 removed 1 failed", report.Groups[0])
	}
}
