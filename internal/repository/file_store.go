package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	appErrors "github.com/noah-isme/student-roster/pkg/errors"
	"github.com/noah-isme/student-roster/pkg/storage"
)

// FileStore keeps each key in its own JSON file on local disk.
type FileStore struct {
	files *storage.LocalStorage
}

// NewFileStore constructs a FileStore over the given local storage.
func NewFileStore(files *storage.LocalStorage) *FileStore {
	return &FileStore{files: files}
}

// Get reads <key>.json.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := fileName(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.files.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("file store get %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces <key>.json.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	name, err := fileName(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.files.Save(name, value); err != nil {
		return fmt.Errorf("file store set %s: %w", key, err)
	}
	return nil
}

func fileName(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid record key %q", key)
	}
	return key + ".json", nil
}
