package groups

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

func testTabs() []types.Tab {
	return []types.Tab{
		{ID: 1, WindowID: 1, URL: "https://a.com/1"},
		{ID: 2, WindowID: 1, URL: "https://a.com/2"},
		{ID: 3, WindowID: 1, URL: "https://b.com/3"},
		{ID: 4, WindowID: 2, URL: "https://b.com/4"},
	}
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	h := r.Create("Work", types.ColorBlue, 1)
	if err := r.Assign(h.ID, 1, 2); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	got, ok := r.Get(h.ID)
	if !ok || !reflect.DeepEqual(got.TabIDs, []int{1, 2}) {
		t.Fatalf("group = %+v, ok=%v", got, ok)
	}
	if r.GroupOf(1) != h.ID {
		t.Fatalf("GroupOf(1) = %d, want %d", r.GroupOf(1), h.ID)
	}

	// Releasing the last member destroys the group.
	r.Release(1)
	r.DropTab(2)
	if _, ok := r.Get(h.ID); ok {
		t.Fatalf("empty group must be destroyed")
	}
	if r.GroupOf(1) != types.GroupNone {
		t.Fatalf("released tab still grouped")
	}
}

func TestRegistryAssignMovesBetweenGroups(t *testing.T) {
	r := NewRegistry()
	a := r.Create("A", types.ColorBlue, 1)
	b := r.Create("B", types.ColorGreen, 1)
	if err := r.Assign(a.ID, 1, 2); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := r.Assign(b.ID, 2, 3); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	gotA, _ := r.Get(a.ID)
	gotB, _ := r.Get(b.ID)
	if !reflect.DeepEqual(gotA.TabIDs, []int{1}) {
		t.Fatalf("group A = %v, want [1]", gotA.TabIDs)
	}
	if !reflect.DeepEqual(gotB.TabIDs, []int{2, 3}) {
		t.Fatalf("group B = %v, want [2 3]", gotB.TabIDs)
	}
}

func TestRegistryDecorate(t *testing.T) {
	r := NewRegistry()
	h := r.Create("Work", types.ColorBlue, 1)
	if err := r.Assign(h.ID, 2); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	tabs := r.Decorate(testTabs())
	if tabs[0].GroupID != types.GroupNone {
		t.Fatalf("ungrouped tab decorated with group %d", tabs[0].GroupID)
	}
	if tabs[1].GroupID != h.ID {
		t.Fatalf("tab 2 group = %d, want %d", tabs[1].GroupID, h.ID)
	}
}

func TestRegistryMoveReordersDisplayOrder(t *testing.T) {
	r := NewRegistry()
	a := r.Create("A", types.ColorBlue, 1)
	b := r.Create("B", types.ColorGreen, 1)
	c := r.Create("C", types.ColorRed, 1)

	if err := r.Move(c.ID, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	var order []int
	for _, h := range r.List() {
		order = append(order, h.ID)
	}
	if !reflect.DeepEqual(order, []int{c.ID, a.ID, b.ID}) {
		t.Fatalf("order = %v", order)
	}

	// Out-of-range indexes clamp instead of failing.
	if err := r.Move(c.ID, 99); err != nil {
		t.Fatalf("Move clamp: %v", err)
	}
	if got := r.List(); got[len(got)-1].ID != c.ID {
		t.Fatalf("clamped move did not land last: %+v", got)
	}

	err := r.Move(999, 0)
	var coded *types.CodedError
	if !errors.As(err, &coded) || coded.Code != types.CodeGroupNotFound {
		t.Fatalf("moving unknown group: %v", err)
	}
}

func TestRegistryCollapseAll(t *testing.T) {
	r := NewRegistry()
	a := r.Create("A", types.ColorBlue, 1)
	b := r.Create("B", types.ColorGreen, 1)
	_ = r.Assign(a.ID, 1)
	_ = r.Assign(b.ID, 2)

	if changed := r.SetCollapsedAll(true); changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}
	// Idempotent second pass.
	if changed := r.SetCollapsedAll(true); changed != 0 {
		t.Fatalf("second collapse changed = %d, want 0", changed)
	}
	got, _ := r.Get(a.ID)
	if !got.Collapsed {
		t.Fatalf("group A not collapsed")
	}
}

func TestReconcilerApplyCreatesAndSkips(t *testing.T) {
	r := NewRegistry()
	rec := NewReconciler(r)
	rec.colorFn = func() types.Color { return types.ColorCyan }

	clusters := []types.NamedCluster{
		{Name: "a.com", TabIDs: []int{1, 2}},
		{Name: "solo", TabIDs: []int{3}},
		{Name: "ghosts", TabIDs: []int{98, 99}},
	}
	report := rec.Apply(clusters, testTabs())
	if len(report.Created) != 1 || report.Skipped != 2 {
		t.Fatalf("report = %+v", report)
	}
	created := report.Created[0]
	if created.Title != "a.com" || created.Color != types.ColorCyan || created.WindowID != 1 {
		t.Fatalf("created = %+v", created)
	}
	if !reflect.DeepEqual(created.TabIDs, []int{1, 2}) {
		t.Fatalf("created members = %v", created.TabIDs)
	}
}

func TestReconcilerApplyIsIdempotent(t *testing.T) {
	r := NewRegistry()
	rec := NewReconciler(r)
	clusters := []types.NamedCluster{{Name: "a.com", TabIDs: []int{1, 2}, Color: types.ColorBlue}}

	first := rec.Apply(clusters, testTabs())
	second := rec.Apply(clusters, testTabs())

	if len(first.Created) != 1 {
		t.Fatalf("first apply: %+v", first)
	}
	if len(second.Created) != 0 || len(second.Reused) != 1 {
		t.Fatalf("second apply must reuse, got %+v", second)
	}
	if len(r.List()) != 1 {
		t.Fatalf("idempotent apply grew the registry: %+v", r.List())
	}
	got := r.List()[0]
	if !reflect.DeepEqual(got.TabIDs, []int{1, 2}) {
		t.Fatalf("members changed across applies: %v", got.TabIDs)
	}
}

func TestReconcilerApplyHonorsClusterColor(t *testing.T) {
	r := NewRegistry()
	rec := NewReconciler(r)
	rec.colorFn = func() types.Color { return types.ColorGrey }

	clusters := []types.NamedCluster{{Name: "Duplicates", TabIDs: []int{1, 2}, Color: types.ColorRed}}
	report := rec.Apply(clusters, testTabs())
	if len(report.Created) != 1 || report.Created[0].Color != types.ColorRed {
		t.Fatalf("forced color ignored: %+v", report)
	}
}

type fakeCloser struct {
	closed []int
	fail   map[int]bool
}

func (f *fakeCloser) CloseTab(id int) error {
	if f.fail[id] {
		return errors.New("tab is gone")
	}
	f.closed = append(f.closed, id)
	return nil
}

func TestCloseGroupContinuesPastFailures(t *testing.T) {
	r := NewRegistry()
	rec := NewReconciler(r)
	h := r.Create("Work", types.ColorBlue, 1)
	_ = r.Assign(h.ID, 1, 2, 3)

	closer := &fakeCloser{fail: map[int]bool{2: true}}
	report, err := rec.CloseGroup(h.ID, closer)
	if err != nil {
		t.Fatalf("CloseGroup: %v", err)
	}
	if !reflect.DeepEqual(report.Closed, []int{1, 3}) || !reflect.DeepEqual(report.Failed, []int{2}) {
		t.Fatalf("report = %+v", report)
	}
	if _, ok := r.Get(h.ID); ok {
		t.Fatalf("group must be destroyed after close")
	}

	if _, err := rec.CloseGroup(999, closer); err == nil {
		t.Fatalf("closing unknown group must fail")
	}
}
