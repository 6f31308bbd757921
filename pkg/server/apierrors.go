package server

import (
	"fmt"
	"net/http"
)

// DefinedError is a stable API error: a machine code, the HTTP status it maps
// to, and the message shown to the member.
type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// WithMessage returns a copy carrying a formatted message.
func (e DefinedError) WithMessage(format string, args ...any) DefinedError {
	e.Err = fmt.Sprintf(format, args...)
	return e
}

var (
	// 1xxx - identity
	ErrTokenRequired = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "access token is required"}
	ErrTokenInvalid  = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "invalid token"}

	// 2xxx - form availability
	ErrFormNotFound     = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "form not found"}
	ErrFormNotAvailable = DefinedError{Code: 2002, StatusCode: http.StatusForbidden, Err: "form is not available"}

	// 3xxx - submission
	ErrValidationFailed = DefinedError{Code: 3001, StatusCode: http.StatusUnprocessableEntity, Err: "validation failed"}
	ErrAlreadySubmitted = DefinedError{Code: 3002, StatusCode: http.StatusConflict, Err: "this form does not accept more than one submission"}
	ErrBadPayload       = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "malformed submission payload"}

	// 5xxx - infrastructure
	ErrStoreUnavailable = DefinedError{Code: 5001, StatusCode: http.StatusServiceUnavailable, Err: "storage is unavailable"}
)
