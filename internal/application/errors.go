package application

import (
	"errors"
	"fmt"
)

var (
	ErrNoArguments   = errors.New("no arguments supplied")
	ErrEmptyArgument = errors.New("argument must not be empty")
	ErrMissingReport = errors.New("coverage report path is required")
	ErrMissingTarget = errors.New("coverage target is required")
	ErrGateFailed    = errors.New("coverage gate failed")
)

// ArgumentError reports insufficient or malformed command-line input.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments: %v", e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ParseError reports a report or config file that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
