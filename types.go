package eventide

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type (
	// AggregateID identifies an aggregate and every event it produced
	AggregateID string

	// EventType tags an event with the concrete kind of fact it records
	EventType string

	// Event is a fact raised by an aggregate. Version is positive, gapless
	// and monotonic within a single aggregate
	Event struct {
		Timestamp   time.Time       `json:"timestamp"`
		AggregateID AggregateID     `json:"aggregate_id"`
		Type        EventType       `json:"type"`
		Data        json.RawMessage `json:"data"`
		Version     int64           `json:"version"`
	}
)

// NewAggregateID returns a fresh random AggregateID
func NewAggregateID() AggregateID {
	return AggregateID(uuid.NewString())
}

// ParseAggregateID validates and normalizes an AggregateID string
func ParseAggregateID(str string) (AggregateID, error) {
	id, err := uuid.Parse(str)
	if err != nil {
		return "", fmt.Errorf("%w: aggregate id %q: %w", ErrValidation, str, err)
	}
	return AggregateID(id.String()), nil
}

// String returns the raw identifier
func (id AggregateID) String() string {
	return string(id)
}

// Decode unmarshals the event payload into a value of type T
func Decode[T any](ev *Event) (T, error) {
	var data T
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return data, fmt.Errorf("decode %s payload: %w", ev.Type, err)
	}
	return data, nil
}

func (ev *Event) clone() *Event {
	res := *ev
	res.Data = slices.Clone(ev.Data)
	return &res
}

func cloneEvents(evs []*Event) []*Event {
	res := make([]*Event, len(evs))
	for i, ev := range evs {
		res[i] = ev.clone()
	}
	return res
}
