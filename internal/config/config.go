package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/storage"
	"github.com/ourstory/scrapbook/pkg/logger"
)

// Config holds application configuration. It is read once at startup and
// not changed afterwards.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     storage.MinIOConfig
	Users     UsersConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr is the listen address.
func (s ServerConfig) Addr() string { return s.Host + ":" + s.Port }

type LogConfig struct {
	Level string
}

// MongoDBConfig is optional: an empty URI selects the in-memory table store.
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// RedisConfig is optional: an empty host selects the in-process broker and
// a Mongo or in-memory session store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

// UsersConfig holds the two login triples.
type UsersConfig struct {
	User1 identity.Account
	User2 identity.Account
}

// Directory builds the account directory.
func (u UsersConfig) Directory() (*identity.Directory, error) {
	return identity.NewDirectory(u.User1, u.User2)
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

// SessionConfig locates the CLI's persisted identity.
type SessionConfig struct {
	File string
}

// LoadConfig loads configuration from environment variables and an optional
// .env file in the working directory.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return Load(viper.New())
}

// Load reads configuration from v with AutomaticEnv and the defaults below.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_DATABASE", "scrapbook")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MINIO_BUCKET", "images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("USER1_USERNAME", "me")
	v.SetDefault("USER1_PASSWORD", "love123")
	v.SetDefault("USER1_NAME", "Me")
	v.SetDefault("USER2_USERNAME", "boyfriend")
	v.SetDefault("USER2_PASSWORD", "love123")
	v.SetDefault("USER2_NAME", "Boyfriend")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("SESSION_FILE", defaultSessionFile())

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: v.GetString("LOG_LEVEL")},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MinIO: storage.MinIOConfig{
			Endpoint:      v.GetString("MINIO_ENDPOINT"),
			AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:     v.GetString("MINIO_SECRET_KEY"),
			UseSSL:        v.GetBool("MINIO_USE_SSL"),
			Bucket:        v.GetString("MINIO_BUCKET"),
			PublicBaseURL: v.GetString("MINIO_PUBLIC_URL"),
		},
		Users: UsersConfig{
			User1: identity.Account{
				Role:     identity.User1,
				Username: v.GetString("USER1_USERNAME"),
				Password: v.GetString("USER1_PASSWORD"),
				Name:     v.GetString("USER1_NAME"),
			},
			User2: identity.Account{
				Role:     identity.User2,
				Username: v.GetString("USER2_USERNAME"),
				Password: v.GetString("USER2_PASSWORD"),
				Name:     v.GetString("USER2_NAME"),
			},
		},
		JWT: JWTConfig{Secret: v.GetString("JWT_SECRET")},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Session: SessionConfig{File: v.GetString("SESSION_FILE")},
	}

	if _, err := cfg.Users.Directory(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; set a secure value in production")
	}
	return cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scrapbook-session.json"
	}
	return filepath.Join(home, ".scrapbook", "session.json")
}
