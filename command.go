package eventide

import "github.com/google/uuid"

type (
	// CommandID uniquely identifies a dispatched command
	CommandID string

	// Command is an intent addressed to a single aggregate. Each concrete
	// command type maps to exactly one handler on a Dispatcher
	Command interface {
		CommandID() CommandID
		AggregateID() AggregateID
	}

	// CommandHeader carries the identity fields every command shares. Embed
	// it in concrete command types and build them with NewCommandHeader
	CommandHeader struct {
		id     CommandID
		target AggregateID
	}
)

// NewCommandHeader stamps a fresh CommandID for a command aimed at target
func NewCommandHeader(target AggregateID) (CommandHeader, error) {
	if target == "" {
		return CommandHeader{}, Validationf("command target is required")
	}
	return CommandHeader{
		id:     CommandID(uuid.NewString()),
		target: target,
	}, nil
}

// CommandID implements Command
func (h CommandHeader) CommandID() CommandID {
	return h.id
}

// AggregateID implements Command
func (h CommandHeader) AggregateID() AggregateID {
	return h.target
}
