package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys under which the client keeps its state.
const (
	KeyCart       = "cart"
	KeyUser       = "user"
	KeyToken      = "token"
	KeyAdminToken = "admin_token"
)

// Entry is one key/value pair of a batched write.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a durable string-keyed document store.
type Store interface {
	// Get returns the stored value or an error wrapping errors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes all entries or none of them.
	Set(ctx context.Context, entries ...Entry) error

	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Ping reports whether the store is reachable and writable.
	Ping(ctx context.Context) error

	Close() error
}

// JSONEntry marshals v into an Entry for key.
func JSONEntry(key string, v any) (Entry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal %s: %w", key, err)
	}
	return Entry{Key: key, Value: data}, nil
}

// GetJSON reads key and unmarshals it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
