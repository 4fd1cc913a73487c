package eventide

import (
	"context"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		Store      StoreConfig
		LogMode    string `env:"LOG_MODE"`
		MaxRetries int    `env:"MAX_RETRIES"`
	}

	StoreConfig struct {
		Backend string `env:"STORE"`
		Redis   RedisConfig
		Bolt    BoltConfig
	}

	RedisConfig struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		Prefix   string `env:"REDIS_PREFIX"`
		DB       int    `env:"REDIS_DB"`
	}

	BoltConfig struct {
		Path string `env:"BOLT_PATH"`
	}

	// ClosableStore is an EventStore holding external resources
	ClosableStore interface {
		EventStore
		io.Closer
	}
)

// Store backends understood by OpenStore
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

const (
	EnvPrefix = "EVENTIDE_"

	DefaultLogMode       = "development"
	DefaultMaxRetries    = 16
	DefaultStoreBackend  = BackendMemory
	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "eventide"
	DefaultRedisDB       = 0
	DefaultBoltPath      = "eventide.db"
)

func DefaultConfig() Config {
	return Config{
		Store:      DefaultStoreConfig(),
		LogMode:    DefaultLogMode,
		MaxRetries: DefaultMaxRetries,
	}
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend: DefaultStoreBackend,
		Redis: RedisConfig{
			Addr:   DefaultRedisEndpoint,
			Prefix: DefaultRedisPrefix,
			DB:     DefaultRedisDB,
		},
		Bolt: BoltConfig{
			Path: DefaultBoltPath,
		},
	}
}

// LoadConfig overlays EVENTIDE_* environment variables onto DefaultConfig
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// OpenStore creates the EventStore selected by cfg.Backend
func OpenStore(
	ctx context.Context, cfg StoreConfig, pub EventPublisher, opts ...Option,
) (ClosableStore, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return nopCloser{NewMemoryStore(pub, opts...)}, nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis, pub, opts...)
	case BackendBolt:
		return NewBoltStore(cfg.Bolt, pub, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

type nopCloser struct {
	EventStore
}

func (nopCloser) Close() error {
	return nil
}
