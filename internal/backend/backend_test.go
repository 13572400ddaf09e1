package backend

import (
	"context"
	"net"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourstory/scrapbook/internal/config"
	"github.com/ourstory/scrapbook/internal/realtime"
	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/internal/storage"
)

func TestOpenInMemory(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	b, err := Open(context.Background(), cfg, "http://localhost:5001/media")
	require.NoError(t, err)
	defer b.Close(context.Background())

	assert.Nil(t, b.Redis)
	assert.IsType(t, &realtime.MemoryBroker{}, b.Broker)
	assert.IsType(t, &sessions.MemoryRepository{}, b.Sessions)
	assert.IsType(t, &storage.MemoryBlobs{}, b.Blobs)
	assert.Equal(t, "http://localhost:5001/media/a.png", b.Blobs.PublicURL("a.png"))
	assert.Equal(t, map[string]bool{"store": true, "redis": true}, b.Ready(context.Background()))
}

func TestOpenWithRedis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	host, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	cfg.Redis.Host, cfg.Redis.Port = host, port

	b, err := Open(context.Background(), cfg, "http://localhost:5001/media")
	require.NoError(t, err)
	defer b.Close(context.Background())

	require.NotNil(t, b.Redis)
	assert.IsType(t, &realtime.RedisBroker{}, b.Broker)
	assert.IsType(t, &sessions.RedisRepository{}, b.Sessions)
	assert.True(t, b.Ready(context.Background())["redis"])

	m.Close()
	assert.False(t, b.Ready(context.Background())["redis"])
}

func TestOpenFailsWhenRedisDown(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	cfg.Redis.Host, cfg.Redis.Port = "127.0.0.1", "1"

	_, err = Open(context.Background(), cfg, "http://localhost:5001/media")
	require.Error(t, err)
}
