package core

import (
	"context"

	"restaurantcore/pkg/domain"
)

// StatusNotifier is told about every order status change after it has been
// persisted. Errors are logged by the store and never undo the change.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, change domain.StatusChange) error
}

// StatusNotifierFunc adapts a function to StatusNotifier.
type StatusNotifierFunc func(ctx context.Context, change domain.StatusChange) error

// NotifyStatusChange calls f.
func (f StatusNotifierFunc) NotifyStatusChange(ctx context.Context, change domain.StatusChange) error {
	return f(ctx, change)
}

type noopNotifier struct{}

func (noopNotifier) NotifyStatusChange(context.Context, domain.StatusChange) error { return nil }
