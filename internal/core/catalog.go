package core

import (
	"context"

	"github.com/shopspring/decimal"

	"restaurantcore/pkg/domain"
)

// AddMenuItem adds an available item to the catalog. Inputs are stored as
// given; callers validate names and prices.
func (s *Store) AddMenuItem(ctx context.Context, name, description string, price decimal.Decimal, category string) (domain.MenuItem, error) {
	var created domain.MenuItem
	err := s.mutate(ctx, "add_menu_item", func(t *tx) error {
		created = domain.MenuItem{
			ID:           s.newID(),
			Name:         name,
			Description:  description,
			Price:        price,
			Category:     category,
			Availability: true,
		}
		t.state.menu.set(created.ID, created)
		return nil
	})
	if err == nil {
		s.logger.Info("menu item added", "action", "add_menu_item", "menu_item_id", created.ID, "category", category)
	}
	return created, err
}

// UpdateMenuItem applies patch to the item with the given ID. Orders that
// already contain the item keep their own copy.
func (s *Store) UpdateMenuItem(ctx context.Context, id string, patch domain.MenuItemPatch) (domain.MenuItem, error) {
	var updated domain.MenuItem
	err := s.mutate(ctx, "update_menu_item", func(t *tx) error {
		item, ok := t.state.menu.get(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityMenuItem, ID: id}
		}
		patch.Apply(&item)
		t.state.menu.set(id, item)
		updated = item
		return nil
	})
	return updated, err
}

// MenuItem returns the catalog entry with the given ID.
func (s *Store) MenuItem(id string) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.menu.get(id)
}

// MenuItems returns every catalog entry, available or not, in insertion order.
func (s *Store) MenuItems() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MenuItem, 0, s.state.menu.len())
	s.state.menu.each(func(_ string, item domain.MenuItem) {
		out = append(out, item)
	})
	return out
}

// MenuByCategory groups the available items by category. Within a category
// items keep catalog order; categories without available items are absent.
func (s *Store) MenuByCategory() map[string][]domain.MenuItem {
	out := make(map[string][]domain.MenuItem)
	for _, section := range s.MenuSections() {
		out[section.Category] = section.Items
	}
	return out
}

// MenuSections is MenuByCategory as a slice, with categories in the order
// they first appear in the catalog.
func (s *Store) MenuSections() []domain.MenuSection {
	return s.sections(false)
}

// AllMenuSections groups the whole catalog like MenuSections, unavailable
// items included.
func (s *Store) AllMenuSections() []domain.MenuSection {
	return s.sections(true)
}

func (s *Store) sections(includeUnavailable bool) []domain.MenuSection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sections []domain.MenuSection
	index := make(map[string]int)
	s.state.menu.each(func(_ string, item domain.MenuItem) {
		if !item.Availability && !includeUnavailable {
			return
		}
		i, ok := index[item.Category]
		if !ok {
			i = len(sections)
			index[item.Category] = i
			sections = append(sections, domain.MenuSection{Category: item.Category})
		}
		sections[i].Items = append(sections[i].Items, item)
	})
	return sections
}
