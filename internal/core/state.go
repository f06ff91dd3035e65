package core

import (
	"github.com/shopspring/decimal"

	"restaurantcore/pkg/domain"
)

// orderedMap is a string-keyed map that remembers insertion order so menus,
// listings and saved documents come out in the order records were added.
type orderedMap[T any] struct {
	keys   []string
	values map[string]T
}

func newOrderedMap[T any]() orderedMap[T] {
	return orderedMap[T]{values: make(map[string]T)}
}

func (m orderedMap[T]) get(key string) (T, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[T]) set(key string, value T) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap[T]) remove(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m orderedMap[T]) len() int { return len(m.keys) }

func (m orderedMap[T]) each(fn func(key string, value T)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

func (m orderedMap[T]) clone(cloneFn func(T) T) orderedMap[T] {
	out := orderedMap[T]{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]T, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = cloneFn(v)
	}
	return out
}

type restaurantState struct {
	name      string
	menu      orderedMap[domain.MenuItem]
	active    orderedMap[domain.Order]
	completed orderedMap[domain.Order]
	revenue   decimal.Decimal
}

func newRestaurantState(name string) restaurantState {
	return restaurantState{
		name:      name,
		menu:      newOrderedMap[domain.MenuItem](),
		active:    newOrderedMap[domain.Order](),
		completed: newOrderedMap[domain.Order](),
		revenue:   decimal.Zero,
	}
}

func (s restaurantState) clone() restaurantState {
	return restaurantState{
		name:      s.name,
		menu:      s.menu.clone(cloneMenuItem),
		active:    s.active.clone(domain.Order.Clone),
		completed: s.completed.clone(domain.Order.Clone),
		revenue:   s.revenue,
	}
}

func (s restaurantState) summary() StateSummary {
	return StateSummary{
		MenuItems:       s.menu.len(),
		ActiveOrders:    s.active.len(),
		CompletedOrders: s.completed.len(),
		Revenue:         s.revenue,
	}
}

func cloneMenuItem(m domain.MenuItem) domain.MenuItem { return m }
