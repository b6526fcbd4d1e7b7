package apperr

import "fmt"

// ValidationError reports malformed or missing input. The message is safe to
// surface to the caller verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports an actor that is authenticated but not allowed to
// act on the record.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func Forbiddenf(format string, args ...any) error {
	return &ForbiddenError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown record id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// GatewayError reports a failure talking to an external transport (SMS,
// email). During fan-out it is recorded per recipient and never aborts the
// batch.
type GatewayError struct {
	To  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway send to %s failed: %v", e.To, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError reports a store failure. Operations that hit one fail
// closed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
