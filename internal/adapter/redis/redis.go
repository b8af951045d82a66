// Package redis implements the key-value store on Redis.
package redis

import (
	"context"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

// Store keeps every key under "<prefix>:<key>" with no expiry.
type Store struct {
	client *goredis.Client
	prefix string
}

var _ domain.Store = (*Store)(nil)

// Option configures the client built by Open.
type Option func(*goredis.Options)

// WithPassword sets the AUTH password.
func WithPassword(password string) Option {
	return func(o *goredis.Options) {
		o.Password = password
	}
}

// WithDB selects the logical database.
func WithDB(db int) Option {
	return func(o *goredis.Options) {
		o.DB = db
	}
}

// Open connects to the Redis server at address and pings it.
func Open(ctx context.Context, address, prefix string, options ...Option) (*Store, error) {
	opts := &goredis.Options{Addr: address}
	for _, option := range options {
		option(opts)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(client, prefix), nil
}

// New wraps an existing client.
func New(client *goredis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	var b strings.Builder
	b.Grow(len(s.prefix) + 1 + len(k))
	b.WriteString(s.prefix)
	b.WriteString(":")
	b.WriteString(k)
	return b.String()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Remove deletes keys.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}
