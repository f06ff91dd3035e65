package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"restaurantcore/pkg/domain"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"seed":             seedCmd,
	"menu":             menuCmd,
	"add-item":         addItemCmd,
	"set-availability": setAvailabilityCmd,
	"create-order":     createOrderCmd,
	"add-line":         addLineCmd,
	"status":           statusCmd,
	"orders":           ordersCmd,
	"revenue":          revenueCmd,
}

var commandOrder = []string{"seed", "menu", "add-item", "set-availability", "create-order", "add-line", "status", "orders", "revenue"}

var commandHelp = map[string]string{
	"seed":             "add the sample menu when the catalog is empty",
	"menu":             "print the menu by category",
	"add-item":         "add a menu item",
	"set-availability": "mark a menu item available or unavailable",
	"create-order":     "open an order for a table",
	"add-line":         "add a menu item to an active order",
	"status":           "set an order's status (paid archives it)",
	"orders":           "list active or completed orders",
	"revenue":          "print the daily revenue",
}

type sampleItem struct {
	name, description, price, category string
}

var sampleMenu = []sampleItem{
	{"Margherita Pizza", "Classic tomato and mozzarella pizza", "12.99", "Pizza"},
	{"Pepperoni Pizza", "Pizza with pepperoni and cheese", "14.99", "Pizza"},
	{"Caesar Salad", "Romaine lettuce with Caesar dressing and croutons", "8.99", "Salad"},
	{"Spaghetti Bolognese", "Spaghetti with meat sauce", "15.99", "Pasta"},
	{"Chocolate Cake", "Rich chocolate cake with ganache", "7.99", "Dessert"},
	{"Tiramisu", "Classic Italian coffee-flavored dessert", "8.99", "Dessert"},
	{"Soft Drink", "Various sodas", "2.99", "Beverage"},
	{"Coffee", "Freshly brewed coffee", "3.99", "Beverage"},
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse maps flag errors other than -h to errUsage.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: -%s is required", errUsage, name)
	}
	return nil
}

func seedCmd(ctx context.Context, a *app, args []string) error {
	if err := parse(newFlags("seed"), args); err != nil {
		return err
	}
	if n := len(a.store.MenuItems()); n > 0 {
		_, _ = fmt.Fprintf(a.stdout, "Menu already has %d items.\n", n)
		return nil
	}
	for _, s := range sampleMenu {
		if _, err := a.store.AddMenuItem(ctx, s.name, s.description, decimal.RequireFromString(s.price), s.category); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(a.stdout, "Added %d sample menu items.\n", len(sampleMenu))
	return nil
}

func menuCmd(_ context.Context, a *app, args []string) error {
	fs := newFlags("menu")
	all := fs.Bool("all", false, "include unavailable items")
	if err := parse(fs, args); err != nil {
		return err
	}
	sections := a.store.MenuSections()
	if *all {
		sections = a.store.AllMenuSections()
	}
	printMenu(a.stdout, a.store.RestaurantName(), sections)
	return nil
}

func addItemCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add-item")
	name := fs.String("name", "", "item name")
	description := fs.String("description", "", "item description")
	priceText := fs.String("price", "", "unit price, e.g. 12.99")
	category := fs.String("category", "", "menu category")
	if err := parse(fs, args); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{{"name", *name}, {"price", *priceText}, {"category", *category}} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	price, err := decimal.NewFromString(*priceText)
	if err != nil || price.IsNegative() {
		return fmt.Errorf("%w: invalid price %q", errUsage, *priceText)
	}
	item, err := a.store.AddMenuItem(ctx, *name, *description, price, *category)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Menu item added: %s\n", item.ID)
	return nil
}

func setAvailabilityCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("set-availability")
	id := fs.String("item", "", "menu item ID")
	available := fs.Bool("available", true, "whether the item can be ordered")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("item", *id); err != nil {
		return err
	}
	item, err := a.store.UpdateMenuItem(ctx, *id, domain.MenuItemPatch{Availability: available})
	if err != nil {
		return err
	}
	state := "available"
	if !item.Availability {
		state = "unavailable"
	}
	_, _ = fmt.Fprintf(a.stdout, "%s is now %s.\n", item.Name, state)
	return nil
}

func createOrderCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("create-order")
	table := fs.Int("table", 0, "table number")
	server := fs.String("server", "", "server name")
	if err := parse(fs, args); err != nil {
		return err
	}
	order, err := a.store.CreateOrder(ctx, *table, *server)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Order created successfully! Order ID: %s\n", order.ID)
	return nil
}

func addLineCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add-line")
	orderID := fs.String("order", "", "order ID")
	itemID := fs.String("item", "", "menu item ID")
	quantity := fs.Int("quantity", 1, "number of portions")
	note := fs.String("note", "", "special instructions")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("order", *orderID); err != nil {
		return err
	}
	if err := required("item", *itemID); err != nil {
		return err
	}
	if *quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", errUsage)
	}
	if err := a.store.AddItemToOrder(ctx, *orderID, *itemID, *quantity, *note); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.stdout, "Item added to order successfully!")
	return nil
}

func statusCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("status")
	orderID := fs.String("order", "", "order ID")
	status := fs.String("status", "", "new status: "+strings.Join(statusNames(), ", "))
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("order", *orderID); err != nil {
		return err
	}
	if err := required("status", *status); err != nil {
		return err
	}
	if err := a.store.UpdateOrderStatus(ctx, *orderID, domain.OrderStatus(*status)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Order status updated to %s\n", *status)
	return nil
}

func ordersCmd(_ context.Context, a *app, args []string) error {
	fs := newFlags("orders")
	completed := fs.Bool("completed", false, "list paid orders instead of active ones")
	status := fs.String("status", "", "only active orders with this status")
	table := fs.Int("table", -1, "only active orders for this table")
	if err := parse(fs, args); err != nil {
		return err
	}
	var orders []domain.Order
	switch {
	case *completed:
		orders = a.store.CompletedOrders()
	case *status != "":
		orders = a.store.OrdersByStatus(domain.OrderStatus(*status))
	case *table >= 0:
		orders = a.store.OrdersByTable(*table)
	default:
		orders = a.store.ActiveOrders()
	}
	printOrders(a.stdout, orders, *completed)
	return nil
}

func revenueCmd(_ context.Context, a *app, args []string) error {
	if err := parse(newFlags("revenue"), args); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Daily Revenue: $%s\n", a.store.DailyRevenue().StringFixed(2))
	return nil
}

func statusNames() []string {
	names := make([]string, len(domain.KnownStatuses))
	for i, s := range domain.KnownStatuses {
		names[i] = string(s)
	}
	return names
}
