// Package backend connects the configured collaborators: the table store, blob
// storage, push broker and session repository. Each one falls back to an
// in-process implementation when its service is not configured.
package backend

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ourstory/scrapbook/internal/config"
	"github.com/ourstory/scrapbook/internal/database"
	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/realtime"
	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/internal/storage"
	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("backend")

const mongoAttempts = 5

// Blobs is blob storage that can also stream objects back.
type Blobs interface {
	storage.Blobs
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// Backend holds the connected collaborators.
type Backend struct {
	Tables   store.Tables
	Blobs    Blobs
	Broker   realtime.Broker
	Sessions sessions.Repository
	// Redis is nil when no Redis host is configured.
	Redis *redis.Client

	mongo *mongo.Client
}

// Open connects everything cfg names. mediaURL is the public prefix for
// in-memory blobs when MinIO is not configured.
func Open(ctx context.Context, cfg *config.Config, mediaURL string) (*Backend, error) {
	b := &Backend{}

	if cfg.Redis.Enabled() {
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		b.Redis = client
		b.Broker = realtime.NewRedisBroker(client)
		b.Sessions = sessions.NewRedisRepository(client, "session:")
		log.Infof("using Redis at %s for push and sessions", cfg.Redis.Addr())
	} else {
		b.Broker = realtime.NewMemoryBroker()
		log.Infof("Redis not configured; push and sessions are in-process")
	}

	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoAttempts)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.mongo = client
		db := client.Database(cfg.MongoDB.Database)
		m := store.NewMongo(db)
		if err := m.EnsureIndexes(ctx, entity.Indexes()); err != nil {
			log.Warnf("ensure indexes: %v", err)
		}
		b.Tables = store.NewInstrumented(m)
		if b.Sessions == nil {
			b.Sessions = sessions.NewMongoRepository(db.Collection("sessions"))
		}
		log.Infof("using MongoDB database %q", cfg.MongoDB.Database)
	} else {
		b.Tables = store.NewInstrumented(store.NewMemory())
		log.Warnf("MONGODB_URI not set; data is kept in memory and lost on exit")
	}
	if b.Sessions == nil {
		b.Sessions = sessions.NewMemoryRepository()
	}

	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, &cfg.MinIO)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.Blobs = s
		log.Infof("using MinIO bucket %q at %s", cfg.MinIO.Bucket, cfg.MinIO.Endpoint)
	} else {
		b.Blobs = storage.NewMemoryBlobs(mediaURL)
		log.Warnf("MINIO_ENDPOINT not set; images are kept in memory")
	}
	return b, nil
}

// Ready reports per-dependency health.
func (b *Backend) Ready(ctx context.Context) map[string]bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	deps := map[string]bool{"store": true, "redis": true}
	if b.mongo != nil {
		deps["store"] = b.mongo.Ping(ctx, nil) == nil
	}
	if b.Redis != nil {
		deps["redis"] = b.Redis.Ping(ctx).Err() == nil
	}
	return deps
}

// Close disconnects the remote clients.
func (b *Backend) Close(ctx context.Context) {
	if b.mongo != nil {
		if err := b.mongo.Disconnect(ctx); err != nil {
			log.Warnf("mongo disconnect: %v", err)
		}
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}
