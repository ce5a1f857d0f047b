// Copyright 2026, Square, Inc.

// Package errors provides errors reported by the config subsystem. Callers
// can switch on the concrete types to tell an unreadable config file apart
// from a bad value, while the messages stay terse enough to print as-is.
package errors

import (
	"fmt"
	"os"
)

var _ error = ConfigLoadError{}

// ConfigLoadError is returned when a configuration file cannot be opened or
// read. The message keeps the OS-level reason, and Unwrap returns the underlying
// error so errors.Is(err, fs.ErrNotExist) still works.
type ConfigLoadError struct {
	Path string
	Err  error
}

func NewConfigLoadError(path string, err error) ConfigLoadError {
	return ConfigLoadError{Path: path, Err: err}
}

func (e ConfigLoadError) Error() string {
	return fmt.Sprintf("Unable to load configuration file (%s)", e.Reason())
}

// Reason returns the underlying failure without the path, e.g.
// "no such file or directory".
func (e ConfigLoadError) Reason() string {
	if e.Err == nil {
		return "unknown error"
	}
	if pe, ok := e.Err.(*os.PathError); ok {
		return pe.Err.Error()
	}
	return e.Err.Error()
}

func (e ConfigLoadError) Unwrap() error {
	return e.Err
}

// --------------------------------------------------------------------------

var _ error = InvalidWorkers{}

// InvalidWorkers is returned when a fleet-assignment expression contains a
// token that is neither "queue" nor "N*queue" with N a positive integer.
type InvalidWorkers struct {
	Expr  string
	Token string
}

func (e InvalidWorkers) Error() string {
	return fmt.Sprintf("invalid token %q in workers expression %q", e.Token, e.Expr)
}

// --------------------------------------------------------------------------

var _ error = InvalidSetting{}

// InvalidSetting is returned when a setting that is needed holds a value of
// the wrong type, e.g. RABBIT_PORT = "abc".
type InvalidSetting struct {
	Name  string
	Kind  string
	Value interface{}
}

func (e InvalidSetting) Error() string {
	return fmt.Sprintf("setting %s = %#v is not a valid %s", e.Name, e.Value, e.Kind)
}
