package store

import (
	"context"
	"fmt"
	"path/filepath"

	"tabtime/internal/config"
	"tabtime/internal/database"
)

// NewStoreFromConfig creates a Store implementation based on the store config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig, hostID string) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("filesystem store requires data_dir to be set")
		}
		s, err := NewFileSystemStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		s, err := database.NewSQLiteStore(filepath.Join(cfg.DataDir, hostID+".db"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

// Compile-time check that SQLiteStore implements Store
var _ Store = (*database.SQLiteStore)(nil)
