// Package storagetest holds behaviour checks shared by every storage backend.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbags/storefront/internal/storage"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, storage.KeyCart)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, storage.Entry{Key: storage.KeyToken, Value: []byte("abc.def.ghi")}))

		got, err := s.Get(ctx, storage.KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", string(got))
	})

	t.Run("batch writes every entry", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx,
			storage.Entry{Key: storage.KeyUser, Value: []byte(`{"id":1}`)},
			storage.Entry{Key: storage.KeyToken, Value: []byte("tok")},
		))

		user, err := s.Get(ctx, storage.KeyUser)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":1}`, string(user))
		tok, err := s.Get(ctx, storage.KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "tok", string(tok))
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, storage.Entry{Key: storage.KeyCart, Value: []byte(`[]`)}))
		require.NoError(t, s.Set(ctx, storage.Entry{Key: storage.KeyCart, Value: []byte(`[{"id":1}]`)}))

		got, err := s.Get(ctx, storage.KeyCart)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1}]`, string(got))
	})

	t.Run("delete removes only named keys", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx,
			storage.Entry{Key: storage.KeyUser, Value: []byte(`{}`)},
			storage.Entry{Key: storage.KeyToken, Value: []byte("t")},
			storage.Entry{Key: storage.KeyAdminToken, Value: []byte("a")},
		))
		require.NoError(t, s.Delete(ctx, storage.KeyUser, storage.KeyToken, "never-set"))

		_, err := s.Get(ctx, storage.KeyUser)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = s.Get(ctx, storage.KeyToken)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		admin, err := s.Get(ctx, storage.KeyAdminToken)
		require.NoError(t, err)
		assert.Equal(t, "a", string(admin))
	})

	t.Run("json helpers", func(t *testing.T) {
		s := newStore(t)
		entry, err := storage.JSONEntry(storage.KeyUser, map[string]any{"id": 3, "name": "Ayesha"})
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, entry))

		var got struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		require.NoError(t, storage.GetJSON(ctx, s, storage.KeyUser, &got))
		assert.Equal(t, 3, got.ID)
		assert.Equal(t, "Ayesha", got.Name)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
