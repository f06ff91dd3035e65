package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"restaurantcore/internal/blob"
	"restaurantcore/internal/infra/persistence/document"
	"restaurantcore/internal/infra/persistence/memory"
	"restaurantcore/internal/infra/persistence/postgres"
	"restaurantcore/internal/infra/persistence/sqlite"
	"restaurantcore/pkg/domain"
)

// StorageDriver identifies a document backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // process memory only (tests / ephemeral)
	StorageFile     StorageDriver = "file"     // pretty JSON file in the data directory
	StorageS3       StorageDriver = "s3"       // pretty JSON object in an S3 bucket
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageDrivers lists the supported drivers.
var StorageDrivers = []StorageDriver{StorageMemory, StorageFile, StorageS3, StorageSQLite, StoragePostgres}

// Backend is a DocumentBackend holding resources that must be released.
type Backend interface {
	domain.DocumentBackend
	Close() error
}

// StorageOptions configures OpenBackend.
type StorageOptions struct {
	Driver         StorageDriver
	RestaurantName string
	// DataDir holds the JSON document (file driver) and the default sqlite
	// database.
	DataDir     string
	SQLitePath  string
	PostgresDSN string
	S3          blob.S3Config
	// S3Prefix is prepended to the document key in the bucket.
	S3Prefix string
}

// OpenBackend builds the backend named by opts.Driver (file when empty).
func OpenBackend(ctx context.Context, opts StorageOptions) (Backend, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	key := domain.DataFileName(opts.RestaurantName)
	switch opts.Driver {
	case StorageMemory:
		return memory.New(), nil
	case "", StorageFile:
		store, err := blob.Open(ctx, blob.Config{Driver: blob.DriverFilesystem, FSRoot: dataDir})
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		return document.New(store, key), nil
	case StorageS3:
		store, err := blob.Open(ctx, blob.Config{Driver: blob.DriverS3, S3: opts.S3})
		if err != nil {
			return nil, fmt.Errorf("open s3: %w", err)
		}
		if p := strings.Trim(opts.S3Prefix, "/"); p != "" {
			key = p + "/" + key
		}
		return document.New(store, key), nil
	case StorageSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(dataDir, strings.TrimSuffix(key, ".json")+".db")
		}
		b, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case StoragePostgres:
		b, err := postgres.Open(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", opts.Driver)
	}
}
