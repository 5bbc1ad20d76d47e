package halo

import (
	"fmt"

	"halo-life/pkg/grid"
)

// ProtocolError reports an exchange that broke the halo protocol: a neighbor
// went away before its strip arrived, or a strip had the wrong size.
type ProtocolError struct {
	Participant int
	Generation  int
	Direction   grid.Direction
	Reason      string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: participant %d generation %d %s: %s",
		e.Participant, e.Generation, e.Direction, e.Reason)
}

// TransportFailure wraps an error from the underlying send or receive
// primitive. It is never retried.
type TransportFailure struct {
	Participant int
	Generation  int
	Direction   grid.Direction
	Op          string
	Err         error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport: participant %d generation %d %s %s: %v",
		e.Participant, e.Generation, e.Op, e.Direction, e.Err)
}

func (e *TransportFailure) Unwrap() error { return e.Err }
