package store

import (
	"fmt"
	"net/http"
)

// Error is returned by repositories. Code is the HTTP status a handler should
// answer with when the error reaches the API unchanged.
type Error struct {
	Code    int
	Message string
	Err     error
}

// Repository failures shared by the sqlite and postgres backends.
var (
	ErrNotFound      = &Error{Code: http.StatusNotFound, Message: "resource not found"}
	ErrAlreadyExists = &Error{Code: http.StatusConflict, Message: "resource already exists"}
	ErrInvalidInput  = &Error{Code: http.StatusBadRequest, Message: "invalid input"}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code alone. Each sentinel owns a distinct status, so copies
// made by WithMessage or WithCause still match the sentinel they came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func (e *Error) HTTPCode() int { return e.Code }

// WithMessage copies e with msg in place of its message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithCause copies e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.Err = err
	return &c
}
