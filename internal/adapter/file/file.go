// Package file implements the key-value store as a single JSON document on
// disk, optionally sealed with a symmetric key.
package file

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"storefront/internal/domain"
)

const nonceSize = 24

// ErrSealed is returned when a sealed file cannot be opened with the given key.
var ErrSealed = errors.New("store file is sealed with a different key")

// Store keeps all values in memory and rewrites the whole file on every change.
type Store struct {
	mu     sync.Mutex
	path   string
	key    *[32]byte
	values map[string]string
}

var _ domain.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithKey seals the file with a 32-byte key given as 64 hex characters.
// Open fails when the key is malformed.
func WithKey(hexKey string) Option {
	return func(s *Store) error {
		b, err := hex.DecodeString(hexKey)
		if err != nil {
			return fmt.Errorf("store key: %w", err)
		}
		if len(b) != 32 {
			return fmt.Errorf("store key: want 32 bytes, got %d", len(b))
		}
		var k [32]byte
		copy(k[:], b)
		s.key = &k
		return nil
	}
}

// Open loads path if it exists. A missing file is an empty store.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return s, nil
	}

	if s.key != nil {
		if len(data) < nonceSize {
			return nil, ErrSealed
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, s.key)
		if !ok {
			return nil, ErrSealed
		}
		data = plain
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key and flushes the file.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Remove deletes keys and flushes the file.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flush()
}

// flush writes to a temp file in the same directory and renames it over the
// target, so a crash never leaves a half-written store.
func (s *Store) flush() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return err
	}

	if s.key != nil {
		var nonce [nonceSize]byte
		if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
			return err
		}
		data = secretbox.Seal(nonce[:], data, &nonce, s.key)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".storefront-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
