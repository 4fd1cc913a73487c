package eventide

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

type (
	// Dispatcher routes each command to the single handler registered for
	// its concrete type. Handlers are registered while wiring; registering
	// during live dispatch is not supported
	Dispatcher struct {
		*options
		handlers map[reflect.Type]*route
		mu       sync.RWMutex
	}

	route struct {
		name   string
		handle func(context.Context, Command) error
	}
)

// NewDispatcher creates a Dispatcher with no registered handlers
func NewDispatcher(opts ...Option) *Dispatcher {
	return &Dispatcher{
		options:  makeOptions("dispatcher", opts),
		handlers: map[reflect.Type]*route{},
	}
}

// Register binds h to the command type C, which must be concrete. A second
// registration for the same type is rejected with ErrHandlerRegistered
func Register[C Command](
	d *Dispatcher, h func(context.Context, C) error,
) error {
	typ := reflect.TypeFor[C]()
	if typ.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %s is not a concrete command type",
			ErrConfiguration, typ,
		)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrConfiguration, typ)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[typ]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerRegistered, typ)
	}
	d.handlers[typ] = &route{
		name: typ.String(),
		handle: func(ctx context.Context, cmd Command) error {
			return h(ctx, cmd.(C))
		},
	}
	return nil
}

// Handles reports whether a handler is registered for the command's type
func (d *Dispatcher) Handles(cmd Command) bool {
	_, ok := d.lookup(cmd)
	return ok
}

// Dispatch invokes the handler registered for the command's concrete type
// and returns its error unaltered. With retries enabled, a handler that
// fails with a concurrency conflict is re-run so it can reload and retry
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	r, ok := d.lookup(cmd)
	if !ok {
		name := fmt.Sprintf("%T", cmd)
		d.metrics.dispatched(name, OutcomeUnsupported, 0)
		d.logger.Error("unsupported command", zap.String("command", name))
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, name)
	}

	start := time.Now()
	err := d.run(ctx, r, cmd)
	d.metrics.dispatched(r.name, outcome(err), time.Since(start).Seconds())
	if err != nil {
		d.logger.Debug("command failed",
			zap.String("command", r.name),
			zap.String("command_id", string(cmd.CommandID())),
			zap.String("aggregate_id", cmd.AggregateID().String()),
			zap.Error(err),
		)
		return err
	}

	d.logger.Debug("command handled",
		zap.String("command", r.name),
		zap.String("command_id", string(cmd.CommandID())),
		zap.String("aggregate_id", cmd.AggregateID().String()),
	)
	return nil
}

func (d *Dispatcher) run(
	ctx context.Context, r *route, cmd Command,
) error {
	for attempt := 0; ; attempt++ {
		err := r.handle(ctx, cmd)
		if d.retries == 0 || !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		if attempt >= d.retries {
			return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		d.logger.Debug("retrying after conflict",
			zap.String("command", r.name),
			zap.Int("attempt", attempt+1),
		)
	}
}

func (d *Dispatcher) lookup(cmd Command) (*route, bool) {
	if cmd == nil {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.handlers[reflect.TypeOf(cmd)]
	return r, ok
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrConcurrencyConflict):
		return OutcomeConflict
	default:
		return OutcomeRejected
	}
}
