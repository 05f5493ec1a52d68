package response

import (
	"errors"
)

// Error is a domain error that already knows its HTTP status. Code is the
// machine readable identifier clients switch on.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Code == t.Code
}

// Detail is the operator facing message; falls back to the error text.
func (e *Error) Detail() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Err.Error()
}

// WithDetails returns a copy carrying details. The copy still matches the
// original under errors.Is.
func (e *Error) WithDetails(details string) *Error {
	return &Error{
		Status:  e.Status,
		Code:    e.Code,
		Err:     e.Err,
		Details: details,
	}
}

func NewError(status int, code string, err string) error {
	return &Error{Status: status, Code: code, Err: errors.New(err)}
}
