package blob

import (
	"context"

	infraS3 "restaurantcore/internal/infra/blob/s3"
)

// S3Config configures the S3 driver.
type S3Config = infraS3.Config

// NewS3 returns an S3-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// NewMockS3ForTests returns an S3 Store over an in-memory fake transport for
// cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
