package eventide

import "context"

// Handler reacts to a committed event
type Handler func(context.Context, *Event) error

// MakeHandler decodes the event payload before handing it to fn
func MakeHandler[T any](fn func(context.Context, *Event, T) error) Handler {
	return func(ctx context.Context, ev *Event) error {
		data, err := Decode[T](ev)
		if err != nil {
			return err
		}
		return fn(ctx, ev, data)
	}
}
