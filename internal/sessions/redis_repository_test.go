package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ourstory/scrapbook/internal/identity"
)

func TestRedisRepository_CreateGetDelete(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:")

	ctx := context.Background()
	s := &Session{ID: "s1", Role: identity.User2, Name: "Boyfriend"}
	require.NoError(t, repo.Create(ctx, s))
	require.True(t, m.Exists("test:session:s1"))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, identity.User2, got.Role)
	require.False(t, got.CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "s1"))
	got2, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, got2)
}

// sessions have no TTL
func TestRedisRepository_NoExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &Session{ID: "s2", Role: identity.User1}))

	m.FastForward(365 * 24 * time.Hour)

	got, err := repo.Get(ctx, "s2")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, time.Duration(0), m.TTL("session:s2"))
}
