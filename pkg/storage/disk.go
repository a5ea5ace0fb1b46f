// Package storage is the filesystem abstraction behind food images and the
// object-storage listing endpoints.
//
// Two drivers are available: "local", a directory on the local filesystem
// (default), and "s3", any S3-compatible object storage (AWS S3, MinIO, R2).
//
//	disk, err := storage.Open(ctx, "local")
//	files := storage.NewFileStore(disk, logger)
//	err = files.Write(ctx, "3f2c….jpg", data)
package storage

import (
	"context"
	"io/fs"
)

// ErrNotExist is wrapped by every driver when a path is absent.
var ErrNotExist = fs.ErrNotExist

// Disk is the driver interface. Paths are slash-separated and relative to
// the disk root (or bucket).
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Absent files yield an error wrapping ErrNotExist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string

	// Keys lists every file below prefix, recursively. A non-empty
	// extension (".json") keeps only matching keys.
	Keys(ctx context.Context, prefix, extension string) ([]string, error)
}
