package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/studentportal/webapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisStore connects to the Redis server named by TEST_REDIS_ADDR or skips the test
func setupRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping redis test in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	return NewRedisStore(client), client
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	store, client := setupRedisStore(t)
	ctx := context.Background()

	sess := newTestSession(uuid.NewString(), time.Now().Add(time.Minute).Truncate(time.Second))
	require.NoError(t, store.Save(ctx, sess))

	ttl, err := client.TTL(ctx, redisKey(sess.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Username, got.Username)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRedisStore_DeleteByUser(t *testing.T) {
	store, client := setupRedisStore(t)
	ctx := context.Background()
	userID := int(time.Now().UnixNano() % 1_000_000_000)
	expires := time.Now().Add(time.Minute)

	first := newTestSession(uuid.NewString(), expires)
	first.UserID = userID
	second := newTestSession(uuid.NewString(), expires)
	second.UserID = userID
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	members, err := client.SMembers(ctx, redisUserKey(userID)).Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, members)

	require.NoError(t, store.DeleteByUser(ctx, userID))

	_, err = store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = store.Get(ctx, second.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	exists, err := client.Exists(ctx, redisUserKey(userID)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisStore_SaveExpired(t *testing.T) {
	store, _ := setupRedisStore(t)

	err := store.Save(context.Background(), newTestSession(uuid.NewString(), time.Now().Add(-time.Second)))

	assert.Error(t, err)
}

func TestRedisStore_SaveExpiredWithoutServer(t *testing.T) {
	// an expired session is rejected before any network call
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))

	err := store.Save(context.Background(), newTestSession("s1", time.Now().Add(-time.Second)))

	assert.ErrorContains(t, err, "already expired")
}
