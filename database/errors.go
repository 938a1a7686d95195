package database

import (
	"errors"
	"fmt"

	"github.com/dbsimple/dbsimple-go/internal/debug"
)

// ErrorKind classifies adapter failures.
type ErrorKind int

const (
	// KindConfiguration means a required native capability is missing.
	KindConfiguration ErrorKind = iota + 1
	// KindConnection means the transport was unreachable or the login was rejected.
	KindConnection
	// KindDescriptor means the descriptor names no usable transport.
	KindDescriptor
	// KindStatement means a submitted statement failed.
	KindStatement
	// KindTransaction means begin, commit or rollback failed.
	KindTransaction
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrDescriptor    = errors.New("descriptor error")
	ErrStatement     = errors.New("statement error")
	ErrTransaction   = errors.New("transaction error")
)

var (
	// ErrNotApplicable is returned by Transform when a query cannot take part
	// in the requested pagination phase.
	ErrNotApplicable = errors.New("transform not applicable")

	// ErrNotConnected is returned by adapters without a live connection.
	ErrNotConnected = errors.New("database not connected")

	// ErrPaginationOrder is returned when a total is requested without a
	// prepared query having just run on the same connection.
	ErrPaginationOrder = errors.New("total requested without a directly preceding prepared query")

	// ErrConcurrentUse is returned when an adapter is entered while another
	// call is still running on it.
	ErrConcurrentUse = errors.New("adapter used concurrently")

	// ErrTransactionActive is returned by Begin when a transaction is open.
	ErrTransactionActive = errors.New("there is already an active transaction")

	// ErrNoTransaction is returned by Commit and Rollback without an open transaction.
	ErrNoTransaction = errors.New("there is no active transaction")
)

// NoCode is the native code used when the engine did not supply one.
const NoCode = -1

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindDescriptor:
		return "descriptor"
	case KindStatement:
		return "statement"
	case KindTransaction:
		return "transaction"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindConnection:
		return ErrConnection
	case KindDescriptor:
		return ErrDescriptor
	case KindStatement:
		return ErrStatement
	case KindTransaction:
		return ErrTransaction
	}
	return nil
}

// Error is the (code, message, context) record of one failed operation.
type Error struct {
	Kind ErrorKind
	// Code is the native error number, or NoCode.
	Code int
	// Message is the native error message.
	Message string
	// Context is the failing query text, or a fixed label for non-query
	// operations such as "new connection".
	Context string
	// Err is the underlying cause.
	Err error
}

// NewError creates an Error. The message defaults to cause's text.
func NewError(kind ErrorKind, code int, message, context string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Context: context,
		Err:     cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s error %d: %s (in %q)", e.Kind, e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error %d: %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ErrorRecorder receives every failure an adapter records.
type ErrorRecorder interface {
	RecordError(code int, message, context string)
}

// RecorderFunc adapts a function to ErrorRecorder.
type RecorderFunc func(code int, message, context string)

// RecordError calls f.
func (f RecorderFunc) RecordError(code int, message, context string) {
	f(code, message, context)
}

// ErrorState is the single last-error slot of an adapter.
type ErrorState struct {
	last     *Error
	recorder ErrorRecorder
}

// NewErrorState creates an ErrorState forwarding to recorder, which may be nil.
func NewErrorState(recorder ErrorRecorder) ErrorState {
	return ErrorState{recorder: recorder}
}

// Record stores e as the last error and returns it.
func (s *ErrorState) Record(e *Error) *Error {
	s.last = e
	if s.recorder != nil {
		s.recorder.RecordError(e.Code, e.Message, e.Context)
	}
	debug.Debug("adapter error recorded", "kind", e.Kind.String(), "code", e.Code, "message", e.Message, "context", e.Context)
	return e
}

// Reset clears the slot after a successful operation.
func (s *ErrorState) Reset() {
	s.last = nil
}

// LastError returns the last recorded error.
func (s *ErrorState) LastError() *Error {
	return s.last
}
