// ABOUTME: Redis-backed Store implementation using go-redis
// ABOUTME: Each session is a JSON blob under a namespaced key with optional TTL

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys in a shared Redis instance.
const DefaultKeyPrefix = "scry:sessions:"

// RedisConfig holds connection settings for the Redis session store.
type RedisConfig struct {
	// URL is a redis:// connection URL.
	URL string
	// KeyPrefix namespaces session keys. Defaults to DefaultKeyPrefix.
	KeyPrefix string
	// TTL, when positive, expires sessions after the given idle duration.
	// Zero means sessions never expire.
	TTL time.Duration
}

// RedisStore persists each session as a self-describing JSON blob under a
// single key. Writes are atomic at key granularity (a plain SET), so a
// reader never observes a partial conversation.
type RedisStore struct {
	rdb       *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewRedisStore connects to Redis and validates the connection with a ping.
func NewRedisStore(cfg RedisConfig, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	logger.Info("redis session store initialized", "key_prefix", prefix, "ttl", cfg.TTL)
	return &RedisStore{
		rdb:       rdb,
		keyPrefix: prefix,
		ttl:       cfg.TTL,
		logger:    logger.With("component", "store"),
	}, nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

// NewSession creates an empty session and returns its generated id.
func (s *RedisStore) NewSession(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if err := s.SetConversation(ctx, id, Conversation{}); err != nil {
		return "", err
	}
	return id, nil
}

// GetConversation loads and decodes a session blob. Missing keys and corrupt
// blobs degrade to an empty conversation; only connectivity failures error.
func (s *RedisStore) GetConversation(ctx context.Context, id string) (Conversation, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return Conversation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, s.key(id), err)
	}

	conv, ok := decodeConversation([]byte(raw))
	if !ok {
		s.logger.Warn("discarding malformed session blob", "session_id", id)
		return Conversation{}, nil
	}
	return conv, nil
}

// SetConversation overwrites the session blob in a single SET, refreshing
// the TTL when one is configured.
func (s *RedisStore) SetConversation(ctx context.Context, id string, conv Conversation) error {
	payload, err := encodeConversation(conv)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, s.key(id), err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// encodeConversation serializes a conversation into the shared JSON blob form.
func encodeConversation(conv Conversation) ([]byte, error) {
	if conv == nil {
		conv = Conversation{}
	}
	return json.Marshal(sessionBlob{Messages: conv})
}

// decodeConversation parses a session blob. The second return value is false
// when the blob is not valid JSON of the expected shape.
func decodeConversation(raw []byte) (Conversation, bool) {
	var blob sessionBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, false
	}
	if blob.Messages == nil {
		return Conversation{}, true
	}
	return Conversation(blob.Messages), true
}
