package telephony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FrostGod/EventDash/internal/registry"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ErrConfigNotFound is returned when no agent configuration is stored for a conversation.
var ErrConfigNotFound = errors.New("call configuration not found")

const (
	configKeyPrefix  = "callconfig:"
	defaultConfigTTL = time.Hour
)

// AgentConfig is what the telephony server reads to drive the voice agent of a call.
type AgentConfig struct {
	ConversationID string          `json:"conversation_id"`
	To             string          `json:"to"`
	From           string          `json:"from"`
	PromptPreamble string          `json:"prompt_preamble"`
	InitialMessage string          `json:"initial_message"`
	CreatedAt      strfmt.DateTime `json:"created_at"`
}

type ConfigStore interface {
	Save(ctx context.Context, cfg AgentConfig) error
	Load(ctx context.Context, conversationID string) (AgentConfig, error)
	Delete(ctx context.Context, conversationID string) error
}

// MemoryConfigStore keeps configurations in process. Useful when the telephony server
// shares the process, and in tests.
type MemoryConfigStore struct {
	configs registry.Registry[AgentConfig]
}

func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{configs: registry.New[AgentConfig]()}
}

func (s *MemoryConfigStore) Save(_ context.Context, cfg AgentConfig) error {
	s.configs.Add(cfg.ConversationID, cfg)
	return nil
}

func (s *MemoryConfigStore) Load(_ context.Context, conversationID string) (AgentConfig, error) {
	cfg, ok := s.configs.Get(conversationID)
	if !ok {
		return AgentConfig{}, ErrConfigNotFound
	}
	return cfg, nil
}

func (s *MemoryConfigStore) Delete(_ context.Context, conversationID string) error {
	s.configs.Del(conversationID)
	return nil
}

// RedisConfigStore stores configurations as JSON under callconfig:<id> with a TTL, so an
// abandoned call does not leave its configuration behind forever.
type RedisConfigStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisConfigStore(rdb *redis.Client, ttl time.Duration) *RedisConfigStore {
	if ttl <= 0 {
		ttl = defaultConfigTTL
	}
	return &RedisConfigStore{rdb: rdb, ttl: ttl}
}

func (s *RedisConfigStore) Save(ctx context.Context, cfg AgentConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal call config: %w", err)
	}
	if err := s.rdb.Set(ctx, configKeyPrefix+cfg.ConversationID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save call config: %w", err)
	}
	return nil
}

func (s *RedisConfigStore) Load(ctx context.Context, conversationID string) (AgentConfig, error) {
	data, err := s.rdb.Get(ctx, configKeyPrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return AgentConfig{}, ErrConfigNotFound
	}
	if err != nil {
		return AgentConfig{}, fmt.Errorf("failed to load call config: %w", err)
	}
	var cfg AgentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return AgentConfig{}, fmt.Errorf("failed to unmarshal call config: %w", err)
	}
	return cfg, nil
}

func (s *RedisConfigStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.rdb.Del(ctx, configKeyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("failed to delete call config: %w", err)
	}
	return nil
}
