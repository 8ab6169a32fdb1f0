package okta

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the user or group does not exist at Okta.
var ErrNotFound = errors.New("okta: not found")

// TransportError reports a call that failed before Okta produced a usable answer:
// network failures, undecodable bodies, and unexpected statuses on reads.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("okta %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("okta %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Outcome is the result of a membership mutation that reached Okta.
type Outcome int

const (
	// OutcomeNotApplied means Okta answered with something other than 204 No Content.
	OutcomeNotApplied Outcome = iota
	// OutcomeApplied means Okta answered 204 No Content.
	OutcomeApplied
)

func (o Outcome) String() string {
	if o == OutcomeApplied {
		return "applied"
	}
	return "not_applied"
}
