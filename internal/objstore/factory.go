package objstore

import (
	"context"
	"fmt"

	"shakefetch/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the store
// config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "s3", "":
		return NewS3Store(ctx, S3Options{
			Bucket:            cfg.Bucket,
			Region:            cfg.Region,
			AccessKeyID:       cfg.AccessKeyID,
			SecretAccessKey:   cfg.SecretAccessKey,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
