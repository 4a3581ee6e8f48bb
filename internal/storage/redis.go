package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gentherapist/pkg"
	"gentherapist/src/logger"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultSessionTTL applies when no TTL is configured
	DefaultSessionTTL = 60 * time.Minute
	keyPrefix         = "conversation:"
	maxTxRetries      = 3
)

// conversationHistory is the JSON value stored under each session key
type conversationHistory struct {
	Messages []*schema.Message `json:"messages"`
}

// RedisSessionManager keeps conversation history in Redis with a sliding TTL
type RedisSessionManager struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
	log      zerolog.Logger
}

// NewRedisSessionManager connects to redisURL and verifies the connection
func NewRedisSessionManager(ctx context.Context, redisURL string, ttl time.Duration, maxTurns int) (*RedisSessionManager, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisSessionManager(client, ttl, maxTurns), nil
}

func newRedisSessionManager(client *redis.Client, ttl time.Duration, maxTurns int) *RedisSessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionManager{client: client, ttl: ttl, maxTurns: maxTurns, log: logger.Component("storage")}
}

func (r *RedisSessionManager) key(sessionID string) string {
	return keyPrefix + sessionID
}

// GetHistory returns the stored turns; a missing key is an empty history
func (r *RedisSessionManager) GetHistory(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error) {
	history, err := r.load(ctx, r.client, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return []pkg.ConversationTurn{}, nil
	}
	if err != nil {
		return nil, err
	}
	return fromMessages(history.Messages), nil
}

// AppendTurns appends under WATCH so concurrent writers to one session do not
// drop each other's turns, then trims and refreshes the TTL.
func (r *RedisSessionManager) AppendTurns(ctx context.Context, sessionID string, turns ...pkg.ConversationTurn) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	key := r.key(sessionID)

	txf := func(tx *redis.Tx) error {
		history, err := r.load(ctx, tx, sessionID)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
		if history == nil {
			history = &conversationHistory{}
		}
		history.Messages = trimTail(append(history.Messages, toMessages(turns)...), r.maxTurns)

		data, err := sonic.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("failed to save history: %w", err)
		}
		r.log.Debug().Str("session_id", sessionID).Int("attempt", attempt+1).Msg("History write conflicted, retrying")
	}

	return fmt.Errorf("failed to save history: %w", redis.TxFailedErr)
}

// Clear deletes the session key
func (r *RedisSessionManager) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Ping tests the Redis connection
func (r *RedisSessionManager) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisSessionManager) Close() error {
	return r.client.Close()
}

// getter is the part of *redis.Client and *redis.Tx that load needs
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisSessionManager) load(ctx context.Context, c getter, sessionID string) (*conversationHistory, error) {
	data, err := c.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var history conversationHistory
	if err := sonic.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return &history, nil
}
