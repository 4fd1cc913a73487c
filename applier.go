package eventide

type (
	// Applier folds a single event into aggregate state
	Applier[T any] func(T, *Event) (T, error)

	// Appliers is the closed table binding each event type an aggregate
	// supports to its state mutation. Build it once per aggregate type
	Appliers[T any] map[EventType]Applier[T]
)

// MakeApplier decodes the event payload before handing it to fn
func MakeApplier[T, Data any](fn func(T, *Event, Data) T) Applier[T] {
	return func(val T, ev *Event) (T, error) {
		data, err := Decode[Data](ev)
		if err != nil {
			return val, err
		}
		return fn(val, ev, data), nil
	}
}

// MakeSignal builds an Applier for events that carry no payload
func MakeSignal[T any](fn func(T, *Event) T) Applier[T] {
	return func(val T, ev *Event) (T, error) {
		return fn(val, ev), nil
	}
}
