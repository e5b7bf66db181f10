// Package apperr holds the errors the API reports to clients on purpose.
// Each carries an HTTP status and a user-facing message; anything else that
// reaches the transport is treated as unexpected.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/ansel1/merry"
)

var (
	ErrValidation   = merry.New("validation failed").WithHTTPCode(http.StatusBadRequest)
	ErrBusinessRule = merry.New("business rule violated").WithHTTPCode(http.StatusBadRequest)
	ErrNotFound     = merry.New("not found").WithHTTPCode(http.StatusNotFound)
)

func Validation(msg string) error {
	return merry.Here(ErrValidation).WithUserMessage(msg).WithMessage(msg)
}

func BusinessRule(msg string) error {
	return merry.Here(ErrBusinessRule).WithUserMessage(msg).WithMessage(msg)
}

func BusinessRulef(format string, args ...any) error {
	return BusinessRule(fmt.Sprintf(format, args...))
}

func NotFound(msg string) error {
	return merry.Here(ErrNotFound).WithUserMessage(msg).WithMessage(msg)
}

// Status reports the HTTP status for err and whether err is a known domain error.
func Status(err error) (int, bool) {
	if err == nil {
		return http.StatusOK, true
	}
	if merry.Is(err, ErrValidation) || merry.Is(err, ErrBusinessRule) || merry.Is(err, ErrNotFound) {
		return merry.HTTPCode(err), true
	}
	return http.StatusInternalServerError, false
}

func Message(err error) string {
	if msg := merry.UserMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

// Stack renders the stack recorded for err, if any.
func Stack(err error) string {
	return merry.Stacktrace(err)
}

// Wrap attaches a stack trace to an unexpected error without changing its identity.
func Wrap(err error) error {
	return merry.Wrap(err)
}
