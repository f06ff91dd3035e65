// Package domain defines the menu and order records, value types, and
// persistence contracts used by restaurantcore.
package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// JSONNumber renders d as a bare JSON number. Prices, totals and revenue are
// written this way so documents read as {"price": 12.99}; the decimal
// package default would quote them.
func JSONNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// EntityType identifies the kind of record referenced by errors and events.
type EntityType string

// Supported entity type identifiers.
const (
	// EntityMenuItem identifies a catalog menu item.
	EntityMenuItem EntityType = "menu_item"
	// EntityOrder identifies an order (active or completed).
	EntityOrder EntityType = "order"
)

// OrderStatus is the workflow state of an order. Any value is accepted by the
// store; only StatusPaid has a system effect (archival and revenue accrual).
type OrderStatus string

// Known order statuses.
const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusPaid      OrderStatus = "paid"
)

// KnownStatuses lists the statuses in workflow order.
var KnownStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusPaid}

// Known reports whether s is one of the enumerated statuses.
func (s OrderStatus) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// MenuItem is a catalog entry.
type MenuItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Availability bool            `json:"availability"`
}

type menuItemJSON struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        json.Number `json:"price"`
	Category     string      `json:"category"`
	Availability bool        `json:"availability"`
}

// MarshalJSON writes Price as a bare number.
func (m MenuItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(menuItemJSON{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        JSONNumber(m.Price),
		Category:     m.Category,
		Availability: m.Availability,
	})
}

// MenuItemPatch carries a partial update for a MenuItem. Nil slots are left
// untouched; the ID is immutable and therefore has no slot.
type MenuItemPatch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Category     *string
	Availability *bool
}

// Apply overwrites the fields of item named by the non-nil slots.
func (p MenuItemPatch) Apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Availability != nil {
		item.Availability = *p.Availability
	}
}

// Empty reports whether the patch changes nothing.
func (p MenuItemPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Category == nil && p.Availability == nil
}

// OrderLine is one quantity of a menu item inside an order. MenuItem is a copy
// taken when the line was added; later catalog edits do not reach it.
type OrderLine struct {
	MenuItem            MenuItem `json:"menu_item"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"special_instructions"`
}

// Subtotal returns price × quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.MenuItem.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a table's order.
type Order struct {
	ID          string      `json:"id"`
	TableNumber int         `json:"table_number"`
	ServerName  string      `json:"server_name"`
	Items       []OrderLine `json:"items"`
	Status      OrderStatus `json:"status"`
	CreatedAt   Timestamp   `json:"created_at"`
	UpdatedAt   Timestamp   `json:"updated_at"`
}

// Total sums the line subtotals. It is never cached.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	cp := o
	cp.Items = append([]OrderLine(nil), o.Items...)
	if cp.Items == nil {
		cp.Items = []OrderLine{}
	}
	return cp
}

// MenuSection is one category of the available menu.
type MenuSection struct {
	Category string
	Items    []MenuItem
}

// StatusChange describes a successful order status update.
type StatusChange struct {
	OrderID     string          `json:"order_id"`
	TableNumber int             `json:"table_number"`
	ServerName  string          `json:"server_name"`
	OldStatus   OrderStatus     `json:"old_status"`
	NewStatus   OrderStatus     `json:"new_status"`
	Total       decimal.Decimal `json:"total"`
	ChangedAt   Timestamp       `json:"changed_at"`
}

type statusChangeJSON struct {
	OrderID     string      `json:"order_id"`
	TableNumber int         `json:"table_number"`
	ServerName  string      `json:"server_name"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	Total       json.Number `json:"total"`
	ChangedAt   Timestamp   `json:"changed_at"`
}

// MarshalJSON writes Total as a bare number.
func (c StatusChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusChangeJSON{
		OrderID:     c.OrderID,
		TableNumber: c.TableNumber,
		ServerName:  c.ServerName,
		OldStatus:   c.OldStatus,
		NewStatus:   c.NewStatus,
		Total:       JSONNumber(c.Total),
		ChangedAt:   c.ChangedAt,
	})
}

// Archived reports whether the change moved the order to the completed set.
func (c StatusChange) Archived() bool { return c.NewStatus == StatusPaid }
