package api

import (
	"errors"

	"github.com/samcharles93/tmf/pkg/asm"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	// ErrNotFound is returned by a Store for an unknown id.
	ErrNotFound = errors.New("container not found")
	// ErrAlreadyExists is returned by a Store when an id is reused.
	ErrAlreadyExists = errors.New("container already exists")
)

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

var parseErrorCodes = []struct {
	err  error
	code string
}{
	{asm.ErrUnknownKeyword, "unknown_keyword"},
	{asm.ErrUnknownType, "unknown_type"},
	{asm.ErrMalformedLiteral, "malformed_literal"},
	{asm.ErrUndefinedName, "undefined_name"},
	{asm.ErrUnexpectedEOF, "unexpected_eof"},
	{asm.ErrUnexpectedEnd, "unexpected_end"},
	{asm.ErrMissingTop, "missing_top"},
}

func parseErrorCode(err error) string {
	for _, pc := range parseErrorCodes {
		if errors.Is(err, pc.err) {
			return pc.code
		}
	}
	return "parse_error"
}
