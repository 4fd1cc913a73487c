package eventide

import "go.uber.org/zap"

type (
	// Option configures stores, repositories, dispatchers and publishers
	Option func(*options)

	options struct {
		logger  *zap.Logger
		metrics *Metrics
		retries int
	}
)

// WithLogger attaches a zap logger. Components log nothing by default
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics attaches Prometheus instrumentation
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRetries makes a Dispatcher re-run a handler up to n more times when it
// fails with a concurrency conflict
func WithRetries(n int) Option {
	return func(o *options) {
		o.retries = max(n, 0)
	}
}

func makeOptions(component string, opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", component))
	return o
}
