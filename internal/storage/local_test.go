package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, "model.json", []byte(`{"texts":["a","b"]}`))
		assert.NoError(t, err)

		data, err := store.Load(ctx, "model.json")
		assert.NoError(t, err)
		assert.Equal(t, []byte(`{"texts":["a","b"]}`), data)
	})

	t.Run("Save replaces previous blob", func(t *testing.T) {
		err := store.Save(ctx, "model.json", []byte(`{"texts":["x"]}`))
		assert.NoError(t, err)

		data, err := store.Load(ctx, "model.json")
		assert.NoError(t, err)
		assert.Equal(t, []byte(`{"texts":["x"]}`), data)
	})

	t.Run("Remove", func(t *testing.T) {
		err := store.Remove(ctx, "model.json")
		assert.NoError(t, err)

		_, err = store.Load(ctx, "model.json")
		assert.ErrorIs(t, err, ErrNotExist)
	})

	t.Run("Missing blob", func(t *testing.T) {
		_, err := store.Load(ctx, "absent.json")
		assert.ErrorIs(t, err, ErrNotExist)

		err = store.Remove(ctx, "absent.json")
		assert.ErrorIs(t, err, ErrNotExist)
	})
}
