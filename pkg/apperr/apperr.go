package apperr

import "fmt"

type Type string

const (
	Validation Type = "VALIDATION_ERROR"
	NotFound   Type = "NOT_FOUND"
	Forbidden  Type = "FORBIDDEN"
	Internal   Type = "INTERNAL_ERROR"
)

// Error is a typed application error; Err stays internal and is never
// serialized to callers.
type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(msg string) *Error {
	return &Error{Type: Validation, Message: msg}
}

func NewNotFound(msg string) *Error {
	return &Error{Type: NotFound, Message: msg}
}

func NewForbidden(msg string) *Error {
	return &Error{Type: Forbidden, Message: msg}
}

func NewInternal(msg string, err error) *Error {
	return &Error{Type: Internal, Message: msg, Err: err}
}

func IsType(err error, target Type) bool {
	if appErr, ok := err.(*Error); ok {
		return appErr.Type == target
	}
	return false
}
