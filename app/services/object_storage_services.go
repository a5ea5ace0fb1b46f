package services

import (
	"context"
	"path"
	"strings"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/storage"
)

// ObjectStorageService browses the object bucket.
type ObjectStorageService struct {
	files *storage.FileStore
}

func NewObjectStorageService(files *storage.FileStore) *ObjectStorageService {
	return &ObjectStorageService{files: files}
}

// Keys lists object keys below prefix, optionally filtered by extension.
func (s *ObjectStorageService) Keys(ctx context.Context, prefix, extension string) ([]string, error) {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return s.files.Keys(ctx, prefix, extension)
}

// Gaze fetches a JSON object. key may be relative to prefix or already
// carry it.
func (s *ObjectStorageService) Gaze(ctx context.Context, prefix, key string) (any, error) {
	if key == "" {
		return nil, apperr.Validation("The key query parameter is required.")
	}
	name := key
	if prefix != "" && !strings.HasPrefix(key, strings.TrimSuffix(prefix, "/")+"/") {
		name = path.Join(prefix, key)
	}
	return s.files.GetJSON(ctx, name)
}
