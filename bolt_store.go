package eventide

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// BoltStore keeps event streams in a single bbolt file. Each aggregate has
// a nested bucket keyed by big-endian version
type BoltStore struct {
	*options
	db        *bolt.DB
	publisher EventPublisher
	locks     *keyedMutex
}

const BoltOpenTimeout = time.Second

var (
	streamsBucket = []byte("streams")

	_ EventStore = (*BoltStore)(nil)
)

// NewBoltStore opens (or creates) the database file at cfg.Path
func NewBoltStore(
	cfg BoltConfig, pub EventPublisher, opts ...Option,
) (*BoltStore, error) {
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{
		Timeout: BoltOpenTimeout,
	})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(streamsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{
		options:   makeOptions("bolt_store", opts),
		db:        db,
		publisher: pub,
		locks:     newKeyedMutex(),
	}, nil
}

// Close closes the database file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Append implements EventStore
func (s *BoltStore) Append(
	ctx context.Context, id AggregateID, expectedVersion int64, evs []*Event,
) error {
	if err := checkAppend(id, expectedVersion, evs); err != nil {
		return err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(streamsBucket).CreateBucketIfNotExists([]byte(id))
		if err != nil {
			return err
		}

		current := int64(0)
		if k, _ := b.Cursor().Last(); k != nil {
			current = int64(binary.BigEndian.Uint64(k))
		}
		if current != expectedVersion {
			return &VersionConflictError{
				AggregateID:     id,
				ExpectedVersion: expectedVersion,
				ActualVersion:   current,
			}
		}

		for _, ev := range evs {
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if err := b.Put(versionKey(ev.Version), data); err != nil {
				return err
			}
		}
		return nil
	})

	var conflict *VersionConflictError
	if errors.As(err, &conflict) {
		s.metrics.conflict()
		s.logger.Warn("version conflict",
			zap.String("aggregate_id", id.String()),
			zap.Int64("expected_version", conflict.ExpectedVersion),
			zap.Int64("actual_version", conflict.ActualVersion),
		)
		return conflict
	}
	if err != nil || len(evs) == 0 {
		return err
	}

	committed := cloneEvents(evs)
	s.metrics.appended(committed)
	s.logger.Debug("events appended",
		zap.String("aggregate_id", id.String()),
		zap.Int64("from_version", expectedVersion+1),
		zap.Int("count", len(committed)),
	)
	return publishAll(ctx, s.publisher, committed)
}

// Load implements EventStore
func (s *BoltStore) Load(
	_ context.Context, id AggregateID,
) ([]*Event, error) {
	events := []*Event{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(streamsBucket).Bucket([]byte(id))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			ev := &Event{}
			if err := json.Unmarshal(v, ev); err != nil {
				return err
			}
			events = append(events, ev)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func versionKey(v int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(v))
	return key
}
