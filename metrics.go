package eventide

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments stores, dispatchers and publishers. A nil *Metrics is
// valid and records nothing
type Metrics struct {
	eventsAppended   *prometheus.CounterVec
	conflicts        prometheus.Counter
	eventsPublished  *prometheus.CounterVec
	publishFailures  *prometheus.CounterVec
	commands         *prometheus.CounterVec
	commandDurations *prometheus.HistogramVec
}

const metricsNamespace = "eventide"

// Dispatch outcomes recorded by the commands counter
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeConflict    = "conflict"
	OutcomeUnsupported = "unsupported"
)

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_appended_total",
			Help:      "Total number of events appended to the store",
		}, []string{"event_type"}),

		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "concurrency_conflicts_total",
			Help:      "Total number of rejected appends due to version mismatch",
		}),

		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_published_total",
			Help:      "Total number of handler invocations per event type",
		}, []string{"event_type"}),

		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "publish_failures_total",
			Help:      "Total number of failed handler invocations",
		}, []string{"event_type"}),

		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_dispatched_total",
			Help:      "Total number of dispatched commands by outcome",
		}, []string{"command", "outcome"}),

		commandDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "command_duration_seconds",
			Help:      "Command handling latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	reg.MustRegister(
		m.eventsAppended, m.conflicts, m.eventsPublished,
		m.publishFailures, m.commands, m.commandDurations,
	)
	return m
}

func (m *Metrics) appended(evs []*Event) {
	if m == nil {
		return
	}
	for _, ev := range evs {
		m.eventsAppended.WithLabelValues(string(ev.Type)).Inc()
	}
}

func (m *Metrics) conflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) published(typ EventType, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.publishFailures.WithLabelValues(string(typ)).Inc()
		return
	}
	m.eventsPublished.WithLabelValues(string(typ)).Inc()
}

func (m *Metrics) dispatched(command, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
	m.commandDurations.WithLabelValues(command).Observe(seconds)
}
