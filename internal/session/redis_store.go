package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/studentportal/webapp/internal/models"
)

const (
	redisKeyPrefix     = "session:"
	redisUserKeyPrefix = "user_sessions:"
)

// RedisStore keeps sessions in Redis as JSON values.
// Each key carries a TTL matching the session expiry, so Redis removes them itself.
// A per-user set indexes the session ids of each user; it may hold ids whose keys already expired.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisStore creates a session store backed by the given Redis client
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func redisUserKey(userID int) string {
	return redisUserKeyPrefix + strconv.Itoa(userID)
}

// Save stores a session with a TTL equal to its remaining lifetime
func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userKey := redisUserKey(sess.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(sess.ID), data, ttl)
		pipe.SAdd(ctx, userKey, sess.ID)
		// every session has the same lifetime, so the newest one outlives the rest
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the session with the given id
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, models.ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session of the user together with the user's index set
func (s *RedisStore) DeleteByUser(ctx context.Context, userID int) error {
	userKey := redisUserKey(userID)

	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions of user %d: %w", userID, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, redisKey(id))
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete sessions of user %d: %w", userID, err)
	}
	return nil
}
