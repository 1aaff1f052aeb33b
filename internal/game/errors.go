package game

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid chess tag")
	ErrParse      = errors.New("unreadable move text")
	ErrNotFound   = errors.New("chess game not found")
	ErrConflict   = errors.New("chess game identifier already in use")
	ErrAddress    = errors.New("invalid board position")
)

// ValidationError reports malformed tag arguments or an unusable identifier.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ParseError reports the first move token the parser rejected.
// Index is the 0-based ply the token would have produced.
type ParseError struct {
	Reason string
	Token  string
	Index  int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q (ply %d)", ErrParse, e.Reason, e.Token, e.Index+1)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: %q", ErrNotFound, e.ID) }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError means the identifier already names a different game defined on another page.
type ConflictError struct {
	ID         string
	OriginPage string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q is defined on page %q", ErrConflict, e.ID, e.OriginPage)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

type AddressError struct {
	Input  string
	Reason string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrAddress, e.Input, e.Reason)
}

func (e *AddressError) Unwrap() error { return ErrAddress }

// Kind classifies err into a stable token used by message templates and DTOs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAddress):
		return "address"
	default:
		return "internal"
	}
}
