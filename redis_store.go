package eventide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps each aggregate's stream in a Redis list and appends
// through a Lua script, so the version check and the push are one atomic
// step even across processes
type RedisStore struct {
	*options
	client          *redis.Client
	publisher       EventPublisher
	locks           *keyedMutex
	appendEventsLua *redis.Script
	prefix          string
}

const (
	RedisConnectTimeout = 5 * time.Second

	eventsSuffix = ":events"
)

// ErrUnexpectedLuaResult is returned when the append script replies with
// something other than {status, version}
var ErrUnexpectedLuaResult = errors.New("unexpected result from Lua script")

var _ EventStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and returns a store that publishes
// appended events to pub
func NewRedisStore(
	ctx context.Context, cfg RedisConfig, pub EventPublisher, opts ...Option,
) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, RedisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{
		options:         makeOptions("redis_store", opts),
		client:          client,
		publisher:       pub,
		locks:           newKeyedMutex(),
		appendEventsLua: redis.NewScript(luaAppendEvents),
		prefix:          cfg.Prefix,
	}, nil
}

// Close releases the Redis connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Append implements EventStore
func (s *RedisStore) Append(
	ctx context.Context, id AggregateID, expectedVersion int64, evs []*Event,
) error {
	if err := checkAppend(id, expectedVersion, evs); err != nil {
		return err
	}

	args := make([]any, 0, len(evs)+1)
	args = append(args, expectedVersion)
	for _, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		args = append(args, string(data))
	}

	// local subscribers observe appends to one aggregate in commit order
	unlock := s.locks.lock(id)
	defer unlock()

	keys := []string{s.buildKey(id)}
	result, err := s.appendEventsLua.Run(ctx, s.client, keys, args...).Result()
	if err != nil {
		return err
	}

	ok, version, err := parseAppendResult(result)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.conflict()
		s.logger.Warn("version conflict",
			zap.String("aggregate_id", id.String()),
			zap.Int64("expected_version", expectedVersion),
			zap.Int64("actual_version", version),
		)
		return &VersionConflictError{
			AggregateID:     id,
			ExpectedVersion: expectedVersion,
			ActualVersion:   version,
		}
	}
	if len(evs) == 0 {
		return nil
	}

	committed := cloneEvents(evs)
	s.metrics.appended(committed)
	s.logger.Debug("events appended",
		zap.String("aggregate_id", id.String()),
		zap.Int64("version", version),
		zap.Int("count", len(committed)),
	)
	return publishAll(ctx, s.publisher, committed)
}

// Load implements EventStore
func (s *RedisStore) Load(
	ctx context.Context, id AggregateID,
) ([]*Event, error) {
	items, err := s.client.LRange(ctx, s.buildKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*Event, 0, len(items))
	for _, item := range items {
		ev := &Event{}
		if err := json.Unmarshal([]byte(item), ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *RedisStore) buildKey(id AggregateID) string {
	return fmt.Sprintf("%s:%s%s", s.prefix, id, eventsSuffix)
}

func parseAppendResult(result any) (bool, int64, error) {
	res, ok := result.([]any)
	if !ok || len(res) != 2 {
		return false, 0, ErrUnexpectedLuaResult
	}
	status, ok := res[0].(int64)
	if !ok {
		return false, 0, ErrUnexpectedLuaResult
	}
	version, ok := res[1].(int64)
	if !ok {
		return false, 0, ErrUnexpectedLuaResult
	}
	return status == 1, version, nil
}
