// Package memory implements a DocumentBackend that keeps the last saved
// document in process memory.
package memory

import (
	"context"
	"sync"

	"restaurantcore/pkg/domain"
)

var _ domain.DocumentBackend = (*Backend)(nil)

// Backend holds a copy of the last saved document. SaveErr and LoadErr let
// tests inject failures.
type Backend struct {
	mu      sync.Mutex
	doc     domain.Document
	found   bool
	saves   int
	SaveErr error
	LoadErr error
}

// New returns an empty backend.
func New() *Backend { return &Backend{} }

// NewWithDocument returns a backend preloaded with doc.
func NewWithDocument(doc domain.Document) *Backend {
	return &Backend{doc: doc.Clone(), found: true}
}

func (b *Backend) Save(_ context.Context, doc domain.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.doc = doc.Clone()
	b.found = true
	b.saves++
	return nil
}

func (b *Backend) Load(_ context.Context) (domain.Document, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return domain.Document{}, false, b.LoadErr
	}
	return b.doc.Clone(), b.found, nil
}

// Document returns the last saved document.
func (b *Backend) Document() (domain.Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Clone(), b.found
}

// Saves counts successful saves.
func (b *Backend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// Close is a no-op.
func (b *Backend) Close() error { return nil }
