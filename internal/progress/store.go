// Package progress persists per-user exposure and missed counters in Redis.
package progress

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/techquiz/internal/question"
)

const (
	fieldExposure = "exposure"
	fieldMissed   = "missed"
)

// Store keeps two hashes per user, exposure and missed, with question keys
// ("{category}:{techName}:{id}") as fields.
type Store struct {
	redis  *redis.Client
	prefix string
	logger zerolog.Logger
}

var _ question.CounterStore = (*Store)(nil)

func NewStore(client *redis.Client, prefix string, logger zerolog.Logger) *Store {
	if prefix == "" {
		prefix = "progress"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		logger: logger.With().Str("component", "progress_store").Logger(),
	}
}

func (s *Store) hashKey(userID, field string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, userID, field)
}

// Load returns recorded counters for keys. Keys without history are absent.
func (s *Store) Load(ctx context.Context, userID string, keys []string) (map[string]question.Counters, error) {
	out := make(map[string]question.Counters, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	pipe := s.redis.Pipeline()
	exposure := pipe.HMGet(ctx, s.hashKey(userID, fieldExposure), keys...)
	missed := pipe.HMGet(ctx, s.hashKey(userID, fieldMissed), keys...)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}

	exposureVals, missedVals := exposure.Val(), missed.Val()
	for i, key := range keys {
		var c question.Counters
		var present bool
		if i < len(exposureVals) {
			if n, ok := s.parse(key, exposureVals[i]); ok {
				c.Exposure, c.Recorded, present = n, true, true
			}
		}
		if i < len(missedVals) {
			if n, ok := s.parse(key, missedVals[i]); ok {
				c.Missed, present = n, true
			}
		}
		if present {
			out[key] = c
		}
	}
	return out, nil
}

// RecordShown increments the exposure count of key and returns the new value.
func (s *Store) RecordShown(ctx context.Context, userID, key string) (int, error) {
	n, err := s.redis.HIncrBy(ctx, s.hashKey(userID, fieldExposure), key, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("record shown: %w", err)
	}
	return int(n), nil
}

// RecordMissed increments the missed count of every key in one round trip.
func (s *Store) RecordMissed(ctx context.Context, userID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	hash := s.hashKey(userID, fieldMissed)
	pipe := s.redis.TxPipeline()
	for _, key := range keys {
		pipe.HIncrBy(ctx, hash, key, 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record missed: %w", err)
	}
	return nil
}

// Reset forgets all history for userID.
func (s *Store) Reset(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.hashKey(userID, fieldExposure), s.hashKey(userID, fieldMissed)).Err(); err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	return nil
}

func (s *Store) parse(key string, v any) (int, bool) {
	return parseCounter(v, func(raw any) {
		s.logger.Warn().Str("key", key).Interface("value", raw).Msg("ignoring malformed counter")
	})
}

// parseCounter accepts the string values HMGET returns. Negative or
// non-numeric values are reported and treated as absent.
func parseCounter(v any, onMalformed func(any)) (int, bool) {
	if v == nil {
		return 0, false
	}
	str, ok := v.(string)
	if !ok {
		onMalformed(v)
		return 0, false
	}
	n, err := strconv.Atoi(str)
	if err != nil || n < 0 {
		onMalformed(v)
		return 0, false
	}
	return n, true
}
