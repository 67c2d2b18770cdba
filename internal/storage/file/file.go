// Package file stores all client state in one JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ssbags/storefront/internal/storage"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// FileName is the document name inside the state directory.
const FileName = "state.json"

// BadSuffix is appended to a document that could not be decoded.
const BadSuffix = ".bad"

// Store keeps a map of key to string value in <dir>/state.json. The file is
// re-read on every call so separate processes see each other's writes; the
// last writer wins. A document that cannot be decoded is moved aside to
// state.json.bad and the store starts over empty.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// New creates the state directory if needed and returns a store rooted in it.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, apperrors.InvalidInput("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: filepath.Join(dir, FileName), logger: logger}, nil
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, apperrors.NotFound("storage key", key)
	}
	return []byte(v), nil
}

func (s *Store) Set(_ context.Context, entries ...storage.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for _, e := range entries {
		doc[e.Key] = string(e.Value)
	}
	return s.write(doc)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := doc[k]; ok {
			delete(doc, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(doc)
}

// Ping checks that the state directory accepts writes.
func (s *Store) Ping(context.Context) error {
	f, err := os.CreateTemp(filepath.Dir(s.path), ".ping-*")
	if err != nil {
		return fmt.Errorf("state dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (s *Store) Close() error { return nil }

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	doc := make(map[string]string)
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return s.quarantine(err)
	}
	return doc, nil
}

// quarantine moves an undecodable document out of the way so the user keeps
// a working cart and session. The old bytes stay in <path>.bad.
func (s *Store) quarantine(decodeErr error) (map[string]string, error) {
	bad := s.path + BadSuffix
	if err := os.Rename(s.path, bad); err != nil {
		return nil, fmt.Errorf("move aside corrupt %s: %w", s.path, err)
	}
	s.logger.Warn("discarded corrupt state file",
		slog.String("path", s.path),
		slog.String("moved_to", bad),
		slog.String("error", decodeErr.Error()),
	)
	return make(map[string]string), nil
}

// write replaces the document through a temp file and rename.
func (s *Store) write(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
