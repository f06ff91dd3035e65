// Package blob is the entry point to blob storage. Callers depend on Store and
// the constructors here, never on the driver packages.
package blob

import (
	"restaurantcore/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = core.ErrUnsupported

// NotFound returns the error drivers use for a missing key.
func NotFound(key string) error { return core.NotFound(key) }

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool { return core.IsNotFound(err) }
