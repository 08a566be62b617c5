package tmf

import "errors"

var (
	ErrNotContainer    = errors.New("tmf: not a tagged model container")
	ErrBadMagic        = errors.New("tmf: invalid header magic")
	ErrFlipped         = errors.New("tmf: container byte order does not match")
	ErrTruncated       = errors.New("tmf: truncated container")
	ErrOutOfBounds     = errors.New("tmf: offset out of bounds")
	ErrNullOffset      = errors.New("tmf: null offset")
	ErrTagMismatch     = errors.New("tmf: block tag mismatch")
	ErrMisaligned      = errors.New("tmf: block size does not divide into elements")
	ErrCorruptBlock    = errors.New("tmf: corrupt block")
	ErrIndexOutOfRange = errors.New("tmf: element index out of range")
	ErrBufferTooLarge  = errors.New("tmf: buffer exceeds maximum size")
	ErrHeaderPlacement = errors.New("tmf: header must be the first block")
	ErrUnknownTag      = errors.New("tmf: unknown block tag")
)
