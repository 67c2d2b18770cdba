package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbags/storefront/internal/storage"
	"github.com/ssbags/storefront/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

func TestStore_FailWrites(t *testing.T) {
	s := New()
	s.FailWrites = errors.New("disk full")

	err := s.Set(context.Background(), storage.Entry{Key: storage.KeyCart, Value: []byte("[]")})
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Error(t, s.Delete(context.Background(), storage.KeyCart))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Set(context.Background(), storage.Entry{Key: "k", Value: []byte("abc")}))

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
