package serrors

import "fmt"

// Kind is the machine-readable error category surfaced to callers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindDependency Kind = "dependency"
	KindInternal   Kind = "internal"
)

type BaseError struct {
	Code    string
	Kind    Kind
	Message string
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindInternal, Message: message}
}

func Validation(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindValidation, Message: message}
}

func Conflict(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindConflict, Message: message}
}

func NotFound(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindNotFound, Message: message}
}

func Permission(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindPermission, Message: message}
}

func Dependency(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindDependency, Message: message}
}

func Internal(code, message string) *BaseError {
	return &BaseError{Code: code, Kind: KindInternal, Message: message}
}

func (e *BaseError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail returns a copy with the message extended by formatted detail.
// The original stays usable as an errors.Is target.
func (e *BaseError) WithDetail(format string, args ...any) *BaseError {
	clone := *e
	clone.Message = fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...))
	return &clone
}

func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// KindOf reports the Kind carried by err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if be, ok := err.(*BaseError); ok {
		return be.Kind
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return KindOf(u.Unwrap())
	}
	return KindInternal
}
