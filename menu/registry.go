package menu

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Registry is an in-memory surface; the admin API serves it as the menu.
type Registry struct {
	mux   sync.RWMutex
	items []Item
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RemoveAll(_ context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.items = nil
	return nil
}

func (r *Registry) Create(_ context.Context, item Item) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, existing := range r.items {
		if existing.ID == item.ID {
			return fmt.Errorf("duplicate menu item id: %s", item.ID)
		}
	}
	if item.ParentID != "" && !slices.ContainsFunc(r.items, func(i Item) bool { return i.ID == item.ParentID }) {
		return fmt.Errorf("parent menu item %s does not exist", item.ParentID)
	}
	r.items = append(r.items, item)
	return nil
}

// Items returns the current items in creation order.
func (r *Registry) Items() []Item {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return slices.Clone(r.items)
}

func (r *Registry) Get(id string) (Item, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, item := range r.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
