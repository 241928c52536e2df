// Package redis is a credstore.Store backed by Redis, for operators who share
// one credential namespace across several machines.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "kingpanel"

type Store struct {
	client *redis.Client
	prefix string
}

var _ credstore.Store = (*Store)(nil)

// Options configures a Redis-backed store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key prefix, defaults to DefaultPrefix
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client. The store takes ownership and
// closes it on Close.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(role credstore.Role, key credstore.Key) string {
	return fmt.Sprintf("%s:cred:%s:%s", s.prefix, role, key)
}

func (s *Store) Get(ctx context.Context, role credstore.Role, key credstore.Key) (string, error) {
	if !role.Valid() {
		return "", credstore.ErrInvalidRole
	}

	v, err := s.client.Get(ctx, s.key(role, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", credstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s/%s: %w", role, key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, role credstore.Role, key credstore.Key, value string) error {
	if !role.Valid() {
		return credstore.ErrInvalidRole
	}

	if err := s.client.Set(ctx, s.key(role, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", role, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, role credstore.Role, keys ...credstore.Key) error {
	if !role.Valid() {
		return credstore.ErrInvalidRole
	}
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, s.key(role, k))
	}

	if err := s.client.Del(ctx, names...).Err(); err != nil {
		return fmt.Errorf("failed to delete %s credentials: %w", role, err)
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }
