// File: gwerrors/errors.go
// Author: momentics <momentics@gmail.com>
//
// Structured error type shared across the gateway's components,
// adapted from the teacher's api/errors.go (*Error{Code, Message,
// Context}, WithContext chaining) — the sentinel error vars are
// replaced with codes relevant to a gateway rather than a WebSocket
// library (upstream/routing/protocol failures instead of transport/
// buffer-pool lifecycle failures).
package gwerrors

import "fmt"

// Code identifies the class of failure a gateway component raised.
type Code int

const (
	CodeUnknown Code = iota
	CodeNoRouteMatch
	CodeUpstreamUnreachable
	CodeUpstreamReset
	CodeProtocolViolation
	CodeMiddlewareRejected
	CodeTimeout
)

// Error is a structured error with a code and optional context,
// carried by upstream/router/h1/h2 call sites that need to attach a
// machine-checkable code alongside a human message.
type Error struct {
	Code    Code
	Message string
	Context map[string]any
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// New creates a structured Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithContext attaches a key/value pair and returns the same Error for
// chaining at the call site.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
