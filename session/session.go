// Package session persists chat threads between requests.
//
// Only the most recent messages of a thread are kept; older history is dropped when the
// thread is saved. Loading an unknown session returns a fresh empty thread.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FrostGod/EventDash/internal/registry"
	"github.com/FrostGod/EventDash/provider"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL         = 24 * time.Hour
	DefaultMaxMessages = 20
	keyPrefix          = "session:"
)

type Store interface {
	Load(ctx context.Context, id string) (*provider.Thread, error)
	Save(ctx context.Context, thread *provider.Thread) error
	Delete(ctx context.Context, id string) error
}

type MemoryStore struct {
	threads     registry.Registry[*provider.Thread]
	maxMessages int
}

func NewMemoryStore(maxMessages int) *MemoryStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &MemoryStore{threads: registry.New[*provider.Thread](), maxMessages: maxMessages}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*provider.Thread, error) {
	if t, ok := s.threads.Get(id); ok {
		return t.Window(-1), nil
	}
	return provider.NewThread(id), nil
}

func (s *MemoryStore) Save(_ context.Context, thread *provider.Thread) error {
	s.threads.Add(thread.ID(), thread.Window(s.maxMessages))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.threads.Del(id)
	return nil
}

// RedisStore keeps each thread as JSON under session:<id>. Every save refreshes the TTL.
type RedisStore struct {
	rdb         *redis.Client
	ttl         time.Duration
	maxMessages int
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, maxMessages int) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &RedisStore{rdb: rdb, ttl: ttl, maxMessages: maxMessages}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*provider.Thread, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return provider.NewThread(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	thread := provider.NewThread(id)
	if err := json.Unmarshal(data, thread); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return thread, nil
}

func (s *RedisStore) Save(ctx context.Context, thread *provider.Thread) error {
	data, err := json.Marshal(thread.Window(s.maxMessages))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+thread.ID(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
