package core

import (
	"context"
	"encoding/json"
	"fmt"

	"restaurantcore/pkg/domain"
)

// load replaces the state with the backend's document. Without WithStrictLoad
// a damaged document is loaded up to the first bad entry and the error is only
// logged; with it, any failure leaves the store empty and is returned.
func (s *Store) load(ctx context.Context) error {
	doc, found, err := s.backend.Load(ctx)
	if err != nil {
		if s.strict {
			return fmt.Errorf("load document: %w", err)
		}
		s.logger.Error("load document failed, starting empty", "action", "load", "error", err)
		return nil
	}
	if !found {
		s.logger.Info("no saved document, starting empty", "action", "load")
		return nil
	}

	loaded := newRestaurantState(s.state.name)
	if err := decodeDocument(&loaded, doc, domain.NewTimestamp(s.nowFn())); err != nil {
		if s.strict {
			return fmt.Errorf("load document: %w", err)
		}
		s.logger.Error("load document stopped at first error", "action", "load", "error", err,
			"menu_items", loaded.menu.len(), "active_orders", loaded.active.len(), "completed_orders", loaded.completed.len())
	} else {
		s.logger.Info("document loaded", "action", "load",
			"menu_items", loaded.menu.len(), "active_orders", loaded.active.len(), "completed_orders", loaded.completed.len())
	}
	s.state = loaded
	return nil
}

// decodeDocument fills dst section by section. Everything decoded before the
// first error stays in dst. now stands in for missing order timestamps.
func decodeDocument(dst *restaurantState, doc domain.Document, now domain.Timestamp) error {
	if !isNull(doc.RestaurantName) {
		var name string
		if err := json.Unmarshal(doc.RestaurantName, &name); err != nil {
			return fmt.Errorf("%s: %w", domain.SectionRestaurantName, err)
		}
		dst.name = name
	}
	if !isNull(doc.DailyRevenue) {
		if err := json.Unmarshal(doc.DailyRevenue, &dst.revenue); err != nil {
			return fmt.Errorf("%s: %w", domain.SectionDailyRevenue, err)
		}
	}
	err := eachEntry(doc.MenuItems, func(key string, value json.RawMessage) error {
		var rec menuItemRecord
		if err := decodeStrict(value, &rec); err != nil {
			return err
		}
		item, err := rec.build()
		if err != nil {
			return err
		}
		dst.menu.set(key, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", domain.SectionMenuItems, err)
	}
	if err := decodeOrders(&dst.active, doc.ActiveOrders, now); err != nil {
		return fmt.Errorf("%s: %w", domain.SectionActiveOrders, err)
	}
	if err := decodeOrders(&dst.completed, doc.CompletedOrders, now); err != nil {
		return fmt.Errorf("%s: %w", domain.SectionCompletedOrders, err)
	}
	return nil
}

func decodeOrders(dst *orderedMap[domain.Order], raw json.RawMessage, now domain.Timestamp) error {
	return eachEntry(raw, func(key string, value json.RawMessage) error {
		var rec orderRecord
		if err := decodeStrict(value, &rec); err != nil {
			return err
		}
		order, err := rec.build(now)
		if err != nil {
			return err
		}
		dst.set(key, order)
		return nil
	})
}
