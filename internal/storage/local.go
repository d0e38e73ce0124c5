package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local is a filesystem implementation of the Storage interface. Blobs live
// as files under a root directory.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir, creating it if necessary.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{root: dir}, nil
}

// Save writes the blob under the given name.
func (l *Local) Save(_ context.Context, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(l.root, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Load reads the blob stored under the given name.
func (l *Local) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Remove deletes the blob stored under the given name.
func (l *Local) Remove(_ context.Context, name string) error {
	if err := os.Remove(filepath.Join(l.root, name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
