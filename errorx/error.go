package errorx

import (
	"errors"
	"fmt"
)

// Unknown hides persistence failures from callers; the cause is logged where it happens.
var Unknown = Error{Code: Internal, Message: "Request failed"}

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is matches any Error carrying the same code, so errors.Is(err, errorx.Error{Code: NotFound})
// works regardless of the message.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Is reports whether err is an Error with the given code.
func Is(err error, code Code) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the code of err, or Internal for anything that is not an Error.
func CodeOf(err error) Code {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}
