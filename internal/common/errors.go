package common

import "net/http"

// Error is an expected failure carrying the HTTP status, machine code and
// message rendered in the response envelope.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(status, code int, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

var (
	ErrBadRequest   = NewError(http.StatusBadRequest, 10001, "invalid request")
	ErrUnauthorized = NewError(http.StatusUnauthorized, 40101, "unauthorized")
	ErrInternal     = NewError(http.StatusInternalServerError, 50001, "internal error")
)
