package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultSessionTTL = 2 * time.Hour
	lockTTL           = 10 * time.Second
)

// unlockScript deletes the lock only if we still own it.
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// StateManager keeps quiz sessions in Redis with per-session locks.
type StateManager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ SessionStore = (*StateManager)(nil)

func NewStateManager(redis *redis.Client, ttl time.Duration, logger zerolog.Logger) *StateManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &StateManager{
		redis:  redis,
		ttl:    ttl,
		logger: logger.With().Str("component", "quiz_state").Logger(),
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("quiz:session:%s", id.String())
}

func lockKey(id uuid.UUID) string {
	return fmt.Sprintf("quiz:lock:%s", id.String())
}

// Lock acquires the session lock. Returns ErrSessionBusy if another caller holds it.
func (s *StateManager) Lock(ctx context.Context, id uuid.UUID) (func() error, error) {
	key := lockKey(id)
	token := uuid.NewString()

	acquired, err := s.redis.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrSessionBusy
	}

	unlock := func() error {
		return unlockScript.Run(context.Background(), s.redis, []string{key}, token).Err()
	}
	return unlock, nil
}

// Save writes the session and refreshes its TTL.
func (s *StateManager) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

// Load returns nil, nil when the session does not exist or has expired.
func (s *StateManager) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *StateManager) Delete(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}
