// Package groups tracks tab groups. The host browser exposes no group API
// over the wire protocol, so the registry is the source of truth: groups
// live in process, are decorated onto tab snapshots at query time, and
// follow the native lifecycle — a group exists only while it has members.
package groups

import (
	"sort"
	"sync"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

// Handle is a point-in-time copy of one tab group.
type Handle struct {
	ID        int         `json:"id"`
	Title     string      `json:"title"`
	Color     types.Color `json:"color"`
	Collapsed bool        `json:"collapsed"`
	WindowID  int         `json:"window_id"`
	TabIDs    []int       `json:"tab_ids"`
}

type group struct {
	id        int
	title     string
	color     types.Color
	collapsed bool
	windowID  int
	members   []int
}

// Registry holds all live tab groups. Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	nextID int
	groups map[int]*group
	order  []int       // group ids in display order
	byTab  map[int]int // tab id -> group id
}

func NewRegistry() *Registry {
	return &Registry{
		nextID: 1,
		groups: make(map[int]*group),
		byTab:  make(map[int]int),
	}
}

// Create registers a new empty group and returns its handle. The group is
// destroyed automatically once its last member leaves, so callers should
// Assign members right after creating.
func (r *Registry) Create(title string, color types.Color, windowID int) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &group{
		id:       r.nextID,
		title:    title,
		color:    color,
		windowID: windowID,
	}
	r.nextID++
	r.groups[g.id] = g
	r.order = append(r.order, g.id)
	return handleOf(g)
}

// Assign moves the given tabs into the group, removing them from any group
// they were in before. Tabs already in the group are left alone, so
// assigning the same members twice is a no-op.
func (r *Registry) Assign(groupID int, tabIDs ...int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return types.NewError(types.CodeGroupNotFound, "group not found", nil)
	}
	for _, id := range tabIDs {
		if r.byTab[id] == groupID {
			continue
		}
		r.releaseLocked(id)
		r.byTab[id] = groupID
		g.members = append(g.members, id)
	}
	return nil
}

// Release ungroups the given tabs. Groups left empty are destroyed.
func (r *Registry) Release(tabIDs ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range tabIDs {
		r.releaseLocked(id)
	}
}

// DropTab forgets a tab that was closed in the browser.
func (r *Registry) DropTab(tabID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(tabID)
}

func (r *Registry) releaseLocked(tabID int) {
	gid, ok := r.byTab[tabID]
	if !ok {
		return
	}
	delete(r.byTab, tabID)
	g := r.groups[gid]
	for i, member := range g.members {
		if member == tabID {
			g.members = append(g.members[:i], g.members[i+1:]...)
			break
		}
	}
	if len(g.members) == 0 {
		r.destroyLocked(gid)
	}
}

// Destroy removes a group and ungroups its members.
func (r *Registry) Destroy(groupID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return types.NewError(types.CodeGroupNotFound, "group not found", nil)
	}
	for _, id := range g.members {
		delete(r.byTab, id)
	}
	r.destroyLocked(groupID)
	return nil
}

func (r *Registry) destroyLocked(groupID int) {
	delete(r.groups, groupID)
	for i, id := range r.order {
		if id == groupID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of one group.
func (r *Registry) Get(groupID int) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	if !ok {
		return Handle{}, false
	}
	return handleOf(g), true
}

// FindByTitle returns the group with the exact title in the given window.
// Title matching is exact; "News" and "news" are different groups.
func (r *Registry) FindByTitle(windowID int, title string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		g := r.groups[id]
		if g.windowID == windowID && g.title == title {
			return handleOf(g), true
		}
	}
	return Handle{}, false
}

// List returns all groups in display order.
func (r *Registry) List() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Handle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, handleOf(r.groups[id]))
	}
	return out
}

// GroupOf returns the group id a tab belongs to, or GroupNone.
func (r *Registry) GroupOf(tabID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byTab[tabID]
}

// Decorate stamps each tab snapshot with its registry group id.
func (r *Registry) Decorate(tabs []types.Tab) []types.Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range tabs {
		tabs[i].GroupID = r.byTab[tabs[i].ID]
	}
	return tabs
}

// SetCollapsed collapses or expands one group.
func (r *Registry) SetCollapsed(groupID int, collapsed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	if !ok {
		return types.NewError(types.CodeGroupNotFound, "group not found", nil)
	}
	g.collapsed = collapsed
	return nil
}

// SetCollapsedAll collapses or expands every group and returns how many
// changed state.
func (r *Registry) SetCollapsedAll(collapsed bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for _, g := range r.groups {
		if g.collapsed != collapsed {
			g.collapsed = collapsed
			changed++
		}
	}
	return changed
}

// Move places the group at the given position in display order. The index
// is clamped to the valid range.
func (r *Registry) Move(groupID, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[groupID]; !ok {
		return types.NewError(types.CodeGroupNotFound, "group not found", nil)
	}
	for i, id := range r.order {
		if id == groupID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if index < 0 {
		index = 0
	}
	if index > len(r.order) {
		index = len(r.order)
	}
	r.order = append(r.order[:index], append([]int{groupID}, r.order[index:]...)...)
	return nil
}

func handleOf(g *group) Handle {
	members := make([]int, len(g.members))
	copy(members, g.members)
	sort.Ints(members)
	return Handle{
		ID:        g.id,
		Title:     g.title,
		Color:     g.color,
		Collapsed: g.collapsed,
		WindowID:  g.windowID,
		TabIDs:    members,
	}
}
