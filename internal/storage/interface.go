package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned when a named blob is not present in the store.
var ErrNotExist = errors.New("state does not exist")

// Storage is an interface for persisting model state blobs by name.
type Storage interface {
	// Save writes the blob under the given name, replacing any previous one.
	Save(ctx context.Context, name string, data []byte) error
	// Load reads the blob stored under the given name.
	Load(ctx context.Context, name string) ([]byte, error)
	// Remove deletes the blob stored under the given name.
	Remove(ctx context.Context, name string) error
}
