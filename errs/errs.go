// Package errs defines the sentinel error taxonomy shared by the codec,
// session, table writer, and subscriber packages.
//
// Callers should test for a kind with errors.Is against the sentinel
// values below; detail is attached by wrapping the sentinel with
// fmt.Errorf("...: %w", ErrX) or by returning one of the typed detail
// errors, which themselves unwrap to a sentinel.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds, one per failure class of the protocol.
var (
	// ErrIO marks a socket failure. The owning Session or Subscriber
	// transitions to Closed.
	ErrIO = errors.New("dolphindb: io error")

	// ErrUnsupported marks a (form, type) tag pair the codec does not
	// recognize or cannot encode/decode.
	ErrUnsupported = errors.New("dolphindb: unsupported form/type")

	// ErrInvalidData marks a wire-format violation: a bad width, an
	// invalid index_width, or a corrupt length prefix.
	ErrInvalidData = errors.New("dolphindb: invalid data")

	// ErrServer marks a server-reported execution error. The Session
	// remains Ready.
	ErrServer = errors.New("dolphindb: server error")

	// ErrAuth marks a rejected login. The Session becomes Closed.
	ErrAuth = errors.New("dolphindb: authentication failed")

	// ErrBusy marks a concurrent request attempted on a Session that
	// already has one in flight. No state change occurs.
	ErrBusy = errors.New("dolphindb: session busy")

	// ErrSchemaMismatch marks a row that does not conform to a Table
	// Writer's established column schema. The buffer is cleared.
	ErrSchemaMismatch = errors.New("dolphindb: schema mismatch")

	// ErrCancelled marks a Subscriber whose consumer requested
	// termination.
	ErrCancelled = errors.New("dolphindb: cancelled")

	// ErrInvalidName marks an empty or malformed variable-upload name.
	ErrInvalidName = errors.New("dolphindb: invalid variable name")

	// ErrArity marks a function-invocation argument count mismatch.
	ErrArity = errors.New("dolphindb: argument count mismatch")

	// ErrClosed marks an operation attempted on a Session or Subscriber
	// that has already transitioned to Closed.
	ErrClosed = errors.New("dolphindb: connection closed")
)

// UnsupportedError carries the offending (form, type) tag pair.
type UnsupportedError struct {
	Form byte
	Type byte
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("dolphindb: unsupported form=0x%02x type=0x%02x", e.Form, e.Type)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// InvalidDataError carries the expected-vs-actual description of a wire
// format violation.
type InvalidDataError struct {
	Expected string
	Actual   string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("dolphindb: invalid data: expected %s, got %s", e.Expected, e.Actual)
}

func (e *InvalidDataError) Unwrap() error { return ErrInvalidData }

// ServerError carries the raw message text the server sent back in the
// reply status line.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("dolphindb: server error: %s", e.Message)
}

func (e *ServerError) Unwrap() error { return ErrServer }

// SchemaMismatchError carries which column of a Table Writer row failed
// to conform to the established schema.
type SchemaMismatchError struct {
	Column   string
	Expected string
	Got      string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("dolphindb: schema mismatch on column %q: expected %s, got %s", e.Column, e.Expected, e.Got)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// ArityError carries the expected and actual argument counts for a
// function invocation.
type ArityError struct {
	Name     string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("dolphindb: function %q expects %d argument(s), got %d", e.Name, e.Expected, e.Got)
}

func (e *ArityError) Unwrap() error { return ErrArity }
