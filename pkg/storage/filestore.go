package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

// FileStore names files on a Disk and translates driver failures into
// application errors.
type FileStore struct {
	disk Disk
	log  *slog.Logger
}

// NewFileStore wraps disk. A nil logger falls back to slog.Default.
func NewFileStore(disk Disk, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{disk: disk, log: log}
}

func (s *FileStore) Write(ctx context.Context, name string, data []byte) error {
	if err := s.disk.Put(ctx, name, data); err != nil {
		return apperr.E(apperr.KindIO, "could not store file", err)
	}
	return nil
}

// Delete removes name. A missing file is logged and otherwise ignored.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	err := s.disk.Delete(ctx, name)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotExist) {
		s.log.WarnContext(ctx, "file to delete does not exist", "file", name)
		return nil
	}
	return apperr.E(apperr.KindIO, "could not delete file", err)
}

func (s *FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.disk.Get(ctx, name)
	if errors.Is(err, ErrNotExist) {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, apperr.E(apperr.KindIO, "could not read file", err)
	}
	return data, nil
}

// URL returns the public locator of a stored file; NotFoundError when the
// file is absent.
func (s *FileStore) URL(ctx context.Context, name string) (string, error) {
	ok, err := s.disk.Exists(ctx, name)
	if err != nil {
		return "", apperr.E(apperr.KindIO, "could not stat file", err)
	}
	if !ok {
		return "", apperr.NotFound("file not found")
	}
	return s.disk.URL(name), nil
}

// Keys lists stored keys below prefix, filtered by extension.
func (s *FileStore) Keys(ctx context.Context, prefix, extension string) ([]string, error) {
	keys, err := s.disk.Keys(ctx, prefix, extension)
	if errors.Is(err, ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, apperr.E(apperr.KindIO, "could not list keys", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// GetJSON fetches name and decodes it as a JSON document.
func (s *FileStore) GetJSON(ctx context.Context, name string) (any, error) {
	data, err := s.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.E(apperr.KindDecode, "object is not valid JSON", err)
	}
	return doc, nil
}
