package service

import (
	"errors"
	"fmt"

	"xdrive-logistics-api-server/internal/jobs"
)

// Request-level failures. Handlers map these onto HTTP status codes;
// everything else is treated as an internal error.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// InvalidTransitionError rejects a fulfillment move that is not in the
// transition table. It carries the legal targets so a client can
// self-correct without guessing.
type InvalidTransitionError struct {
	From    jobs.FulfillmentStatus
	To      jobs.FulfillmentStatus
	Allowed []jobs.FulfillmentStatus
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot transition from terminal status '%s'", e.From)
	}
	return fmt.Sprintf("invalid transition from '%s' to '%s'; valid transitions: %v", e.From, e.To, e.Allowed)
}
