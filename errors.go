package eventide

import (
	"errors"
	"fmt"
)

// VersionConflictError is returned when an append's expected version does not
// match the last committed version of the aggregate. It matches
// ErrConcurrencyConflict under errors.Is
type VersionConflictError struct {
	AggregateID     AggregateID
	ExpectedVersion int64
	ActualVersion   int64
}

var (
	// ErrValidation marks malformed input rejected before any event exists
	ErrValidation = errors.New("validation failed")

	// ErrRuleViolation marks a domain rule that refused the requested change
	ErrRuleViolation = errors.New("business rule violation")

	// ErrConcurrencyConflict marks a lost optimistic concurrency race. The
	// caller may reload the aggregate and retry
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrAggregateNotFound indicates an aggregate with no committed events
	ErrAggregateNotFound = errors.New("aggregate not found")

	// ErrPublishFailed indicates events were appended but at least one
	// subscriber returned an error
	ErrPublishFailed = errors.New("event publication failed")

	// ErrConfiguration marks a wiring defect rather than a domain failure
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedCommand is returned when no handler is registered for a
	// command's concrete type
	ErrUnsupportedCommand = fmt.Errorf("%w: unsupported command", ErrConfiguration)

	// ErrHandlerRegistered is returned when a second handler is registered
	// for the same command type
	ErrHandlerRegistered = fmt.Errorf(
		"%w: command handler already registered", ErrConfiguration,
	)

	// ErrUnboundEventType is returned when an aggregate raises or replays an
	// event type it has no applier for
	ErrUnboundEventType = fmt.Errorf("%w: unbound event type", ErrConfiguration)

	// ErrNotBlank is returned when history is loaded into an aggregate that
	// already applied events
	ErrNotBlank = fmt.Errorf("%w: aggregate is not blank", ErrConfiguration)

	// ErrVersionGap is returned when replayed history is not contiguous
	ErrVersionGap = fmt.Errorf("%w: event version gap", ErrConfiguration)

	// ErrUnknownBackend is returned for an unrecognized store backend name
	ErrUnknownBackend = fmt.Errorf("%w: unknown store backend", ErrConfiguration)

	// ErrMaxRetriesExceeded is returned when a dispatch kept conflicting
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf(
		"version conflict on %s: expected version %d, but at %d",
		e.AggregateID, e.ExpectedVersion, e.ActualVersion,
	)
}

// Is makes VersionConflictError match ErrConcurrencyConflict
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}

// Validationf returns an error wrapping ErrValidation
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsRecoverable reports whether err can be handled at the boundary of a
// single dispatch. Configuration errors are wiring defects and are not
func IsRecoverable(err error) bool {
	return err != nil && !errors.Is(err, ErrConfiguration)
}
