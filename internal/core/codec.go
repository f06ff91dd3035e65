package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"restaurantcore/pkg/domain"
)

// encodeState renders the state as a document. Object sections list their
// entries in insertion order.
func encodeState(s restaurantState) (domain.Document, error) {
	var doc domain.Document
	var err error
	if doc.RestaurantName, err = json.Marshal(s.name); err != nil {
		return domain.Document{}, err
	}
	if doc.MenuItems, err = encodeOrdered(s.menu); err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", domain.SectionMenuItems, err)
	}
	if doc.ActiveOrders, err = encodeOrdered(s.active); err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", domain.SectionActiveOrders, err)
	}
	if doc.CompletedOrders, err = encodeOrdered(s.completed); err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", domain.SectionCompletedOrders, err)
	}
	if doc.DailyRevenue, err = json.Marshal(domain.JSONNumber(s.revenue)); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func encodeOrdered[T any](m orderedMap[T]) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	first := true
	m.each(func(key string, value T) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var k, v []byte
		if k, err = json.Marshal(key); err != nil {
			return
		}
		if v, err = json.Marshal(value); err != nil {
			return
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Records mirror the persisted shapes with pointer fields so missing
// required fields can be told apart from zero values.

type menuItemRecord struct {
	ID           *string          `json:"id"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Category     *string          `json:"category"`
	Availability *bool            `json:"availability"`
}

func (r menuItemRecord) build() (domain.MenuItem, error) {
	if err := requireFields(
		field{"id", r.ID != nil},
		field{"name", r.Name != nil},
		field{"description", r.Description != nil},
		field{"price", r.Price != nil},
		field{"category", r.Category != nil},
	); err != nil {
		return domain.MenuItem{}, err
	}
	item := domain.MenuItem{
		ID:           *r.ID,
		Name:         *r.Name,
		Description:  *r.Description,
		Price:        *r.Price,
		Category:     *r.Category,
		Availability: true,
	}
	if r.Availability != nil {
		item.Availability = *r.Availability
	}
	return item, nil
}

type orderLineRecord struct {
	MenuItem            *menuItemRecord `json:"menu_item"`
	Quantity            *int            `json:"quantity"`
	SpecialInstructions *string         `json:"special_instructions"`
}

func (r orderLineRecord) build() (domain.OrderLine, error) {
	if err := requireFields(
		field{"menu_item", r.MenuItem != nil},
		field{"quantity", r.Quantity != nil},
	); err != nil {
		return domain.OrderLine{}, err
	}
	item, err := r.MenuItem.build()
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("menu_item: %w", err)
	}
	line := domain.OrderLine{MenuItem: item, Quantity: *r.Quantity}
	if r.SpecialInstructions != nil {
		line.SpecialInstructions = *r.SpecialInstructions
	}
	return line, nil
}

type orderRecord struct {
	ID          *string           `json:"id"`
	TableNumber *int              `json:"table_number"`
	ServerName  *string           `json:"server_name"`
	Items       []orderLineRecord `json:"items"`
	Status      *string           `json:"status"`
	CreatedAt   *string           `json:"created_at"`
	UpdatedAt   *string           `json:"updated_at"`
}

func (r orderRecord) build(now domain.Timestamp) (domain.Order, error) {
	if err := requireFields(
		field{"id", r.ID != nil},
		field{"table_number", r.TableNumber != nil},
		field{"server_name", r.ServerName != nil},
	); err != nil {
		return domain.Order{}, err
	}
	order := domain.Order{
		ID:          *r.ID,
		TableNumber: *r.TableNumber,
		ServerName:  *r.ServerName,
		Items:       make([]domain.OrderLine, 0, len(r.Items)),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, lr := range r.Items {
		line, err := lr.build()
		if err != nil {
			return domain.Order{}, fmt.Errorf("items[%d]: %w", i, err)
		}
		order.Items = append(order.Items, line)
	}
	if r.Status != nil {
		order.Status = domain.OrderStatus(*r.Status)
	}
	if r.CreatedAt != nil {
		order.CreatedAt = domain.Timestamp(*r.CreatedAt)
	}
	if r.UpdatedAt != nil {
		order.UpdatedAt = domain.Timestamp(*r.UpdatedAt)
	}
	return order, nil
}

type field struct {
	name    string
	present bool
}

// requireFields reports the first missing field.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if !f.present {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}
	return nil
}

// decodeStrict decodes one JSON value into dst, rejecting unknown fields and
// trailing data.
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after value")
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// eachEntry walks a JSON object in document order, handing each key and raw
// value to fn. It stops at the first error from the walk or from fn.
func eachEntry(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	if isNull(raw) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, found %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, found %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}
