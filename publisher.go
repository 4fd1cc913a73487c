package eventide

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type (
	// EventPublisher fans a committed event out to interested parties.
	// Stores call it synchronously before an append returns
	EventPublisher interface {
		Publish(context.Context, *Event) error
	}

	// Publisher routes events to the handlers subscribed to their type, in
	// registration order. Events of a type nobody subscribed to are ignored.
	// Stores publish while holding the appended aggregate's lock, so a
	// handler must not save the aggregate whose event it is handling
	Publisher struct {
		*options
		handlers map[EventType][]Handler
		mu       sync.RWMutex
	}
)

// NewPublisher creates an empty Publisher
func NewPublisher(opts ...Option) *Publisher {
	return &Publisher{
		options:  makeOptions("publisher", opts),
		handlers: map[EventType][]Handler{},
	}
}

// Subscribe appends a handler for the given event type. Subscriptions are
// meant to be made while wiring, before events start flowing. The handler
// runs before the append that raised the event returns, with that
// aggregate still locked; saving the same aggregate from it deadlocks
func (p *Publisher) Subscribe(typ EventType, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[typ] = append(p.handlers[typ], h)
}

// HasSubscribers reports whether any handler is registered for the type
func (p *Publisher) HasSubscribers(typ EventType) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers[typ]) > 0
}

// Publish invokes every handler registered for the event's type. All
// handlers run even if some fail; their errors are joined
func (p *Publisher) Publish(ctx context.Context, ev *Event) error {
	p.mu.RLock()
	handlers := p.handlers[ev.Type]
	p.mu.RUnlock()

	if len(handlers) == 0 {
		p.logger.Debug("no subscribers",
			zap.String("event_type", string(ev.Type)),
			zap.String("aggregate_id", ev.AggregateID.String()),
		)
		return nil
	}

	var errs []error
	for i, h := range handlers {
		err := h(ctx, ev)
		p.metrics.published(ev.Type, err)
		if err != nil {
			p.logger.Error("event handler failed",
				zap.String("event_type", string(ev.Type)),
				zap.String("aggregate_id", ev.AggregateID.String()),
				zap.Int64("version", ev.Version),
				zap.Int("handler", i),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func publishAll(
	ctx context.Context, pub EventPublisher, evs []*Event,
) error {
	if pub == nil {
		return nil
	}
	var errs []error
	for _, ev := range evs {
		if err := pub.Publish(ctx, ev.clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPublishFailed, errors.Join(errs...))
}
