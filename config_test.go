package eventide_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/eventide"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := eventide.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, eventide.DefaultConfig(), cfg)
	assert.Equal(t, eventide.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, eventide.DefaultMaxRetries, cfg.MaxRetries)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("EVENTIDE_STORE", "redis")
	t.Setenv("EVENTIDE_REDIS_ADDR", "cache:6380")
	t.Setenv("EVENTIDE_REDIS_PREFIX", "inv")
	t.Setenv("EVENTIDE_REDIS_DB", "3")
	t.Setenv("EVENTIDE_BOLT_PATH", "/tmp/inv.db")
	t.Setenv("EVENTIDE_LOG_MODE", "production")
	t.Setenv("EVENTIDE_MAX_RETRIES", "4")

	cfg, err := eventide.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, eventide.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, "inv", cfg.Store.Redis.Prefix)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, "/tmp/inv.db", cfg.Store.Bolt.Path)
	assert.Equal(t, "production", cfg.LogMode)
	assert.Equal(t, 4, cfg.MaxRetries)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("EVENTIDE_MAX_RETRIES", "lots")
	_, err := eventide.LoadConfig()
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)

	configs := map[string]eventide.StoreConfig{
		"memory": {Backend: eventide.BackendMemory},
		"default": {},
		"redis": {
			Backend: eventide.BackendRedis,
			Redis:   eventide.RedisConfig{Addr: server.Addr(), Prefix: "t"},
		},
		"bolt": {
			Backend: eventide.BackendBolt,
			Bolt: eventide.BoltConfig{
				Path: filepath.Join(t.TempDir(), "events.db"),
			},
		},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			pub := eventide.NewPublisher()
			pub.Subscribe(EventIncremented, rec.handle)

			store, err := eventide.OpenStore(ctx, cfg, pub)
			require.NoError(t, err)
			defer func() { assert.NoError(t, store.Close()) }()

			id := eventide.NewAggregateID()
			require.NoError(t, store.Append(ctx, id, 0, makeEvents(id, 0, 1)))
			evs, err := store.Load(ctx, id)
			require.NoError(t, err)
			assert.Len(t, evs, 1)
			assert.Equal(t, []int64{1}, rec.versions())
		})
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := eventide.OpenStore(context.Background(),
		eventide.StoreConfig{Backend: "cassandra"}, nil,
	)
	assert.ErrorIs(t, err, eventide.ErrUnknownBackend)
	assert.ErrorIs(t, err, eventide.ErrConfiguration)
}

func TestNewLogger(t *testing.T) {
	for _, mode := range []string{"development", "production", "PROD", ""} {
		logger, err := eventide.NewLogger(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, logger)
	}

	logger, err := eventide.NewLogger("production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = eventide.NewLogger("development")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}

func TestParseAggregateID(t *testing.T) {
	id := eventide.NewAggregateID()
	parsed, err := eventide.ParseAggregateID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	parsed, err = eventide.ParseAggregateID(
		"{6BA7B810-9DAD-11D1-80B4-00C04FD430C8}",
	)
	require.NoError(t, err)
	assert.Equal(t,
		eventide.AggregateID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), parsed,
	)

	_, err = eventide.ParseAggregateID("not-an-id")
	assert.ErrorIs(t, err, eventide.ErrValidation)
}

func TestIsRecoverable(t *testing.T) {
	assert.False(t, eventide.IsRecoverable(nil))
	assert.True(t, eventide.IsRecoverable(eventide.ErrRuleViolation))
	assert.True(t, eventide.IsRecoverable(eventide.Validationf("bad %d", 1)))
	assert.False(t, eventide.IsRecoverable(eventide.ErrHandlerRegistered))
}
