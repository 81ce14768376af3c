package task

import "errors"

// Operation names for OpError. Every engine failure is scoped to the
// operation that caused it and is recoverable by retrying at the UI layer.
const (
	OpFetch  = "fetch"
	OpCreate = "create"
	OpSync   = "sync"
	OpDelete = "delete"
)

// OpError wraps a failed engine operation
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + " tasks: " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsOp reports whether err is an OpError for the given operation
func IsOp(err error, op string) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Op == op
}
