package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/foodineye/config"
)

// Open builds the named driver from config. "local" roots at IMAGES_DIR,
// "s3" reads the S3_* keys.
func Open(ctx context.Context, driver string) (Disk, error) {
	switch driver {
	case "", "local":
		return NewLocalDisk(config.ImagesDir(), "/images")
	case "s3":
		return OpenS3(ctx)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

// OpenS3 builds the S3 driver from the S3_* config keys.
func OpenS3(ctx context.Context) (*S3Disk, error) {
	return NewS3Disk(ctx, S3Config{
		Bucket:   config.StorageS3Bucket(),
		Region:   config.StorageS3Region(),
		Key:      config.StorageS3Key(),
		Secret:   config.StorageS3Secret(),
		Endpoint: config.StorageS3Endpoint(),
		URL:      config.StorageS3URL(),
	})
}
