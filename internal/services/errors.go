package services

import (
	"errors"
	"fmt"
)

// ErrRefreshInFlight is returned when a refresh is requested while another
// one is still running. At most one fetch may be in flight at a time, since
// a fetch racing a mutation can publish a stale or contradictory summary.
var ErrRefreshInFlight = errors.New("integration refresh already in flight")

// ValidationError reports malformed or missing required input. It is always
// raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that a target integration record is absent from the
// latest remote read. The remote set may have changed out-of-band.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("integration %s not found on the gateway", e.ID)
}
