// Package navigation keeps the menus rendered around every page. Packages
// register their links at startup and the server resolves them per view
package navigation

import (
	"slices"
	"sync"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

type (
	// Link is a menu entry pointing at a named view
	Link struct {
		Text        string
		View        string
		Icon        string
		Permissions []api.Permission
		// Object links take the primary key of the object being rendered
		Object bool
	}

	// TopMenuEntry is a named entry of the main menu
	TopMenuEntry struct {
		Name string
		Link Link
	}

	// Registry collects the links registered by each package
	Registry struct {
		menus map[string]map[string][]Link
		top   []TopMenuEntry
		setup []Link
		mu    sync.RWMutex
	}
)

const (
	// SecondaryMenu is the default menu links are bound to
	SecondaryMenu = "secondary_menu"

	// ObjectMenu holds the per-object links of list rows
	ObjectMenu = "object_menu"
)

// NewRegistry creates an empty navigation registry
func NewRegistry() *Registry {
	return &Registry{
		menus: map[string]map[string][]Link{},
	}
}

// RegisterLinks binds links to each of the named views in a menu. An empty
// menu name selects SecondaryMenu
func (r *Registry) RegisterLinks(views []string, links []Link, menu string) {
	if menu == "" {
		menu = SecondaryMenu
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byView, ok := r.menus[menu]
	if !ok {
		byView = map[string][]Link{}
		r.menus[menu] = byView
	}
	for _, view := range views {
		byView[view] = append(byView[view], links...)
	}
}

// Links returns the links bound to a view in a menu
func (r *Registry) Links(view, menu string) []Link {
	if menu == "" {
		menu = SecondaryMenu
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.menus[menu][view])
}

// RegisterTopMenu appends an entry to the main menu
func (r *Registry) RegisterTopMenu(name string, link Link) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.top = append(r.top, TopMenuEntry{Name: name, Link: link})
}

// RegisterTopMenuAt inserts an entry before the one currently at position.
// Negative positions count from the end, so -1 inserts before the last
// entry. Out of range positions clamp to either end
func (r *Registry) RegisterTopMenuAt(name string, link Link, position int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.top)
	if position < 0 {
		position = max(n+position, 0)
	}
	position = min(position, n)
	r.top = slices.Insert(r.top, position, TopMenuEntry{Name: name, Link: link})
}

// TopMenu returns the main menu entries in display order
func (r *Registry) TopMenu() []TopMenuEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.top)
}

// RegisterSetup adds an entry to the setup menu
func (r *Registry) RegisterSetup(links ...Link) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setup = append(r.setup, links...)
}

// SetupLinks returns the setup menu entries
func (r *Registry) SetupLinks() []Link {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.setup)
}
