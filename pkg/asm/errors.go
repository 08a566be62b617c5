package asm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKeyword   = errors.New("unknown keyword")
	ErrUnknownType      = errors.New("unknown element type")
	ErrMalformedLiteral = errors.New("malformed literal")
	ErrUndefinedName    = errors.New("undefined name")
	ErrUnexpectedEOF    = errors.New("unexpected end of input")
	ErrUnexpectedEnd    = errors.New("unexpected end")
	ErrMissingTop       = errors.New("top is not bound")
)

// ParseError reports the first problem found in the source. Err is one of
// the sentinel errors above.
type ParseError struct {
	Err    error
	Detail string
	Pos    Pos
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("asm: %v at %s", e.Err, e.Pos)
	}
	return fmt.Sprintf("asm: %v: %s at %s", e.Err, e.Detail, e.Pos)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func errorAt(err error, pos Pos, format string, args ...any) *ParseError {
	return &ParseError{Err: err, Detail: fmt.Sprintf(format, args...), Pos: pos}
}
