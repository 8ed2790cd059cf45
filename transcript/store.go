package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/types"
	"github.com/redis/go-redis/v9"
)

// Store persists transcripts by conversation id.
type Store interface {
	Append(ctx context.Context, conversationID, text string) error
	// Get returns types.ErrTranscriptNotFound when nothing is stored.
	Get(ctx context.Context, conversationID string) (string, error)
	// Delete reports whether a transcript existed. A missing transcript is not an error.
	Delete(ctx context.Context, conversationID string) (bool, error)
}

var errInvalidConversationID = errors.New("invalid conversation id")

// FileStore keeps one <id>.txt file per conversation under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(conversationID string) (string, error) {
	if conversationID == "" || conversationID != filepath.Base(conversationID) || strings.HasPrefix(conversationID, ".") {
		return "", fmt.Errorf("%w: %q", errInvalidConversationID, conversationID)
	}
	return filepath.Join(s.dir, conversationID+".txt"), nil
}

func (s *FileStore) Append(_ context.Context, conversationID, text string) error {
	p, err := s.path(conversationID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create transcript dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return f.Close()
}

func (s *FileStore) Get(_ context.Context, conversationID string) (string, error) {
	p, err := s.path(conversationID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", types.ErrTranscriptNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}

func (s *FileStore) Delete(_ context.Context, conversationID string) (bool, error) {
	p, err := s.path(conversationID)
	if err != nil {
		return false, err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete transcript: %w", err)
	}
	return true, nil
}

const (
	transcriptKeyPrefix  = "transcript:"
	defaultTranscriptTTL = 24 * time.Hour
)

// RedisStore keeps transcripts under transcript:<id>, refreshing the TTL on every append.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Append(ctx context.Context, conversationID, text string) error {
	key := transcriptKeyPrefix + conversationID
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Append(ctx, key, text)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append transcript: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (string, error) {
	text, err := s.rdb.Get(ctx, transcriptKeyPrefix+conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return "", types.ErrTranscriptNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return text, nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) (bool, error) {
	n, err := s.rdb.Del(ctx, transcriptKeyPrefix+conversationID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete transcript: %w", err)
	}
	return n > 0, nil
}
