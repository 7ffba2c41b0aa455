package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Behavior/task layer. Everything here is local to one task or one
	// agent behavior; nothing is fatal to the simulation.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrTaskNotFound = "E_TASK_NOT_FOUND"
	ErrNoResource   = "E_NO_RESOURCE"
	ErrOutOfBounds  = "E_OUT_OF_BOUNDS"
	ErrBlocked      = "E_BLOCKED"
	ErrBudget       = "E_BUDGET"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrTaskNotFound:    {},
	ErrNoResource:      {},
	ErrOutOfBounds:     {},
	ErrBlocked:         {},
	ErrBudget:          {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
