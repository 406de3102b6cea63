package api

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to check against these; the typed errors
// below carry the kind, field or operation involved.
var (
	ErrNotFound             = errors.New("attribute not found")
	ErrMethodNotFound       = errors.New("method not found")
	ErrInvalidField         = errors.New("invalid field")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrMissingScope         = errors.New("missing scope")
	ErrUnknownKind          = errors.New("unknown resource kind")
	ErrTransport            = errors.New("transport error")
)

// FieldError reports an attribute or field problem on a kind.
type FieldError struct {
	Kind  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("shopify: %s: %s %q", e.Kind, e.Err, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MethodError reports a dispatched call that matches no accessor.
type MethodError struct {
	Kind   string
	Method string
	Reason string
}

func (e *MethodError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("shopify: call to undefined method %s::%s (%s)", e.Kind, e.Method, e.Reason)
	}
	return fmt.Sprintf("shopify: call to undefined method %s::%s", e.Kind, e.Method)
}

func (e *MethodError) Is(target error) bool { return target == ErrMethodNotFound }

// OperationError reports an operation the kind or the record's state does
// not allow. It always matches ErrUnsupportedOperation; Err holds the
// underlying cause, such as ErrMissingScope.
type OperationError struct {
	Op     string
	Kind   string
	Reason string
	Err    error
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("shopify: cannot %s %s", e.Op, e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && e.Err != ErrUnsupportedOperation {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e *OperationError) Is(target error) bool { return target == ErrUnsupportedOperation }

func (e *OperationError) Unwrap() error { return e.Err }

// UnknownKindError is returned by Registry.Resolve for names it does not know.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("shopify: unknown resource kind %q", e.Name)
}

func (e *UnknownKindError) Is(target error) bool { return target == ErrUnknownKind }

// TransportError is a network or HTTP failure. StatusCode is zero when the
// request never produced a response.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("shopify api error: %s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Body != "" {
		msg += " body=" + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

func unsupported(op, kind, reason string) *OperationError {
	return &OperationError{Op: op, Kind: kind, Reason: reason, Err: ErrUnsupportedOperation}
}

func missingScope(op, kind, reason string) *OperationError {
	return &OperationError{Op: op, Kind: kind, Reason: reason, Err: ErrMissingScope}
}
