package core

import (
	"context"

	"restaurantcore/pkg/domain"
)

// CreateOrder opens a pending order for a table.
func (s *Store) CreateOrder(ctx context.Context, tableNumber int, serverName string) (domain.Order, error) {
	var created domain.Order
	err := s.mutate(ctx, "create_order", func(t *tx) error {
		created = domain.Order{
			ID:          s.newID(),
			TableNumber: tableNumber,
			ServerName:  serverName,
			Items:       []domain.OrderLine{},
			Status:      domain.StatusPending,
			CreatedAt:   t.now,
			UpdatedAt:   t.now,
		}
		t.state.active.set(created.ID, created)
		return nil
	})
	if err == nil {
		s.logger.Info("order created", "action", "create_order", "order_id", created.ID, "table_number", tableNumber, "server_name", serverName)
	}
	return created.Clone(), err
}

// AddItemToOrder appends a line holding a copy of the menu item as it is now.
// The order must be active and the item must exist and be available.
// Quantity is stored as given.
func (s *Store) AddItemToOrder(ctx context.Context, orderID, menuItemID string, quantity int, instructions string) error {
	return s.mutate(ctx, "add_item_to_order", func(t *tx) error {
		order, ok := t.state.active.get(orderID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityOrder, ID: orderID}
		}
		item, ok := t.state.menu.get(menuItemID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityMenuItem, ID: menuItemID}
		}
		if !item.Availability {
			return domain.ErrUnavailable{ID: menuItemID}
		}
		order.Items = append(order.Items, domain.OrderLine{
			MenuItem:            item,
			Quantity:            quantity,
			SpecialInstructions: instructions,
		})
		order.UpdatedAt = t.now
		t.state.active.set(orderID, order)
		return nil
	})
}

// UpdateOrderStatus sets the status of an active order. Any status string is
// accepted. Paying an order adds its total to revenue and moves it to the
// completed set, after which it can no longer be changed.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	var change domain.StatusChange
	err := s.mutate(ctx, "update_order_status", func(t *tx) error {
		order, ok := t.state.active.get(orderID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityOrder, ID: orderID}
		}
		if !status.Known() {
			s.logger.Warn("non-standard order status", "action", "update_order_status", "order_id", orderID, "status", string(status))
		}
		change = domain.StatusChange{
			OrderID:     order.ID,
			TableNumber: order.TableNumber,
			ServerName:  order.ServerName,
			OldStatus:   order.Status,
			NewStatus:   status,
			Total:       order.Total(),
			ChangedAt:   t.now,
		}
		order.Status = status
		order.UpdatedAt = t.now
		if status == domain.StatusPaid {
			t.state.revenue = t.state.revenue.Add(change.Total)
			t.state.active.remove(orderID)
			t.state.completed.set(orderID, order)
			return nil
		}
		t.state.active.set(orderID, order)
		return nil
	})
	if err != nil {
		return err
	}
	if change.Archived() {
		s.logger.Info("order paid", "action", "order_paid", "order_id", orderID, "total", change.Total.StringFixed(2))
	}
	if nerr := s.notifier.NotifyStatusChange(ctx, change); nerr != nil {
		s.logger.Error("status notification failed", "action", "notify_status_change", "order_id", orderID, "error", nerr)
	}
	return nil
}

// Order finds an order by ID, looking at active orders first.
func (s *Store) Order(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.state.active.get(id); ok {
		return o.Clone(), true
	}
	if o, ok := s.state.completed.get(id); ok {
		return o.Clone(), true
	}
	return domain.Order{}, false
}

// ActiveOrders returns unpaid orders in creation order.
func (s *Store) ActiveOrders() []domain.Order {
	return s.filterActive(func(domain.Order) bool { return true })
}

// CompletedOrders returns paid orders in the order they were paid.
func (s *Store) CompletedOrders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, s.state.completed.len())
	s.state.completed.each(func(_ string, o domain.Order) {
		out = append(out, o.Clone())
	})
	return out
}

// OrdersByStatus returns the active orders whose status equals status.
func (s *Store) OrdersByStatus(status domain.OrderStatus) []domain.Order {
	return s.filterActive(func(o domain.Order) bool { return o.Status == status })
}

// OrdersByTable returns the active orders for a table.
func (s *Store) OrdersByTable(tableNumber int) []domain.Order {
	return s.filterActive(func(o domain.Order) bool { return o.TableNumber == tableNumber })
}

func (s *Store) filterActive(keep func(domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0)
	s.state.active.each(func(_ string, o domain.Order) {
		if keep(o) {
			out = append(out, o.Clone())
		}
	})
	return out
}
