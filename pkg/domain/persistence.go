package domain

import (
	"context"
	"encoding/json"
	"strings"
)

// Document section (bucket) names, in the order they are written.
const (
	SectionRestaurantName  = "restaurant_name"
	SectionMenuItems       = "menu_items"
	SectionActiveOrders    = "active_orders"
	SectionCompletedOrders = "completed_orders"
	SectionDailyRevenue    = "daily_revenue"
)

// Sections lists every top-level document section.
var Sections = []string{
	SectionRestaurantName,
	SectionMenuItems,
	SectionActiveOrders,
	SectionCompletedOrders,
	SectionDailyRevenue,
}

// Document is the persisted form of a store. Each section is kept as raw JSON
// so backends can store it whole (one file) or per bucket (one row each)
// without knowing the record types.
type Document struct {
	RestaurantName  json.RawMessage `json:"restaurant_name,omitempty"`
	MenuItems       json.RawMessage `json:"menu_items,omitempty"`
	ActiveOrders    json.RawMessage `json:"active_orders,omitempty"`
	CompletedOrders json.RawMessage `json:"completed_orders,omitempty"`
	DailyRevenue    json.RawMessage `json:"daily_revenue,omitempty"`
}

// Section returns a pointer to the named section, or nil for unknown names.
func (d *Document) Section(name string) *json.RawMessage {
	switch name {
	case SectionRestaurantName:
		return &d.RestaurantName
	case SectionMenuItems:
		return &d.MenuItems
	case SectionActiveOrders:
		return &d.ActiveOrders
	case SectionCompletedOrders:
		return &d.CompletedOrders
	case SectionDailyRevenue:
		return &d.DailyRevenue
	default:
		return nil
	}
}

// IsZero reports whether no section is present.
func (d Document) IsZero() bool {
	for _, name := range Sections {
		if len(*d.Section(name)) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no byte slices with d.
func (d Document) Clone() Document {
	var cp Document
	for _, name := range Sections {
		if src := *d.Section(name); src != nil {
			*cp.Section(name) = append(json.RawMessage(nil), src...)
		}
	}
	return cp
}

// DocumentBackend persists whole documents. Save replaces any previous
// document; Load reports found=false when nothing has been saved yet.
type DocumentBackend interface {
	Save(ctx context.Context, doc Document) error
	Load(ctx context.Context) (doc Document, found bool, err error)
}

// DataFileName derives the document name from the restaurant's display name:
// lowercased, spaces replaced with underscores, suffixed with _data.json.
func DataFileName(restaurantName string) string {
	return strings.ReplaceAll(strings.ToLower(restaurantName), " ", "_") + "_data.json"
}
