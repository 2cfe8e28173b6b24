package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists uploaded evidence files and returns the stored path
type FileStore interface {
	Save(filename string, data []byte) (string, error)
}

// LocalStore writes files under a base directory with collision-free names
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a local file store rooted at baseDir
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes the file under a UUID-prefixed name and returns its path
func (s *LocalStore) Save(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(filename))
	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
