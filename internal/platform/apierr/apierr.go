// Package apierr tags service errors with the HTTP status and stable code the
// API reports for them.
package apierr

import (
	"errors"
	"net/http"
	"strconv"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	}
	return "api error " + strconv.Itoa(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error { return New(http.StatusBadRequest, code, err) }
func Forbidden(code string, err error) *Error  { return New(http.StatusForbidden, code, err) }
func NotFound(code string, err error) *Error   { return New(http.StatusNotFound, code, err) }
func Conflict(code string, err error) *Error   { return New(http.StatusConflict, code, err) }

// As finds the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae) && ae != nil
	return ae, ok
}

// StatusOf is the status err maps to; untagged errors are 500.
func StatusOf(err error) int {
	if ae, ok := As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}
