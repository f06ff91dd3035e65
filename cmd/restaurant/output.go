package main

import (
	"fmt"
	"io"

	"restaurantcore/pkg/domain"
)

func printMenu(w io.Writer, restaurant string, sections []domain.MenuSection) {
	_, _ = fmt.Fprintf(w, "===== %s MENU =====\n", restaurant)
	if len(sections) == 0 {
		_, _ = fmt.Fprintln(w, "The menu is empty.")
		return
	}
	for _, section := range sections {
		_, _ = fmt.Fprintf(w, "\n--- %s ---\n", section.Category)
		for _, item := range section.Items {
			suffix := ""
			if !item.Availability {
				suffix = " (unavailable)"
			}
			_, _ = fmt.Fprintf(w, "%s: %s - $%s%s\n", item.ID, item.Name, item.Price.StringFixed(2), suffix)
			_, _ = fmt.Fprintf(w, "   %s\n", item.Description)
		}
	}
}

func printOrders(w io.Writer, orders []domain.Order, completed bool) {
	if len(orders) == 0 {
		if completed {
			_, _ = fmt.Fprintln(w, "No completed orders.")
		} else {
			_, _ = fmt.Fprintln(w, "No active orders.")
		}
		return
	}
	for _, order := range orders {
		_, _ = fmt.Fprintf(w, "\nOrder ID: %s\n", order.ID)
		_, _ = fmt.Fprintf(w, "Table: %d | Server: %s\n", order.TableNumber, order.ServerName)
		_, _ = fmt.Fprintf(w, "Status: %s | Created: %s\n", order.Status, order.CreatedAt)
		_, _ = fmt.Fprintln(w, "Items:")
		for _, line := range order.Items {
			_, _ = fmt.Fprintf(w, "  - %dx %s ($%s each)\n", line.Quantity, line.MenuItem.Name, line.MenuItem.Price.StringFixed(2))
			if line.SpecialInstructions != "" {
				_, _ = fmt.Fprintf(w, "    Special instructions: %s\n", line.SpecialInstructions)
			}
		}
		_, _ = fmt.Fprintf(w, "Total: $%s\n", order.Total().StringFixed(2))
	}
}
