package config

import (
	"errors"
	"fmt"
)

// ErrInvalidInteger is wrapped by every Error caused by a value that is not a
// base-10 integer.
var ErrInvalidInteger = errors.New("not a valid base-10 integer")

// Error reports a variable whose value could not be parsed. FromDefault tells
// a broken built-in default apart from a malformed value supplied by the
// environment.
type Error struct {
	Var         string
	Value       string
	FromDefault bool
	Err         error
}

// Error implements the error interface.
func (e *Error) Error() string {
	origin := "environment"
	if e.FromDefault {
		origin = "default"
	}
	return fmt.Sprintf("config: %s: invalid value %q (from %s): %v", e.Var, e.Value, origin, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *Error) Unwrap() error {
	return e.Err
}
