// Package document persists restaurant documents as one pretty-printed JSON
// object in a blob store.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"restaurantcore/internal/blob"
	"restaurantcore/pkg/domain"
)

var _ domain.DocumentBackend = (*Backend)(nil)

const contentType = "application/json"

// Backend stores the document under a single key.
type Backend struct {
	store blob.Store
	key   string
}

// New returns a backend writing to key in store.
func New(store blob.Store, key string) *Backend {
	return &Backend{store: store, key: key}
}

// Key returns the blob key of the document.
func (b *Backend) Key() string { return b.key }

// Save replaces the stored document in one overwriting put, so the previous
// version stays readable until the new one is in place.
func (b *Backend) Save(ctx context.Context, doc domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	opts := blob.PutOptions{ContentType: contentType, Overwrite: true}
	if _, err := b.store.Put(ctx, b.key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("write %s: %w", b.key, err)
	}
	return nil
}

// Load reads the document. A missing key reports found=false.
func (b *Backend) Load(ctx context.Context) (domain.Document, bool, error) {
	_, rc, err := b.store.Get(ctx, b.key)
	if blob.IsNotFound(err) {
		return domain.Document{}, false, nil
	}
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("read %s: %w", b.key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("read %s: %w", b.key, err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, false, fmt.Errorf("decode %s: %w", b.key, err)
	}
	return doc, true, nil
}

// Close is a no-op; the blob store owns no connections worth closing.
func (b *Backend) Close() error { return nil }
