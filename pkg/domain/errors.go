package domain

import "fmt"

// ErrNotFound is returned when a referenced record does not exist in the
// collection an operation works on.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrUnavailable is returned when a menu item exists but is marked unavailable.
type ErrUnavailable struct {
	ID string
}

func (e ErrUnavailable) Error() string {
	return fmt.Sprintf("menu item %s is unavailable", e.ID)
}
