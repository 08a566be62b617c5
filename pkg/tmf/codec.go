package tmf

import (
	"bytes"
	"encoding/binary"
	"math"
)

var le = binary.LittleEndian

// FixedString is a NUL padded name stored inline in a record.
type FixedString [FixedStringSize]byte

// NewFixedString copies s into a FixedString, truncating at FixedStringSize bytes.
func NewFixedString(s string) FixedString {
	var f FixedString
	copy(f[:], s)
	return f
}

// String returns the name up to the first NUL byte.
func (f FixedString) String() string {
	if i := bytes.IndexByte(f[:], 0); i >= 0 {
		return string(f[:i])
	}
	return string(f[:])
}

// MarshalText encodes the name as a plain string.
func (f FixedString) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Matches reports whether the stored name equals name.
func (f FixedString) Matches(name string) bool {
	return f.String() == name
}

// Matrix is a 4x4 float matrix in the order it appears in the source text.
type Matrix [16]float32

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

const matrixSize = 16 * 4

func getF32(b []byte, off int) float32 {
	return math.Float32frombits(le.Uint32(b[off:]))
}

func putF32(b []byte, off int, v float32) {
	le.PutUint32(b[off:], math.Float32bits(v))
}

func getF32s(dst []float32, b []byte, off int) {
	for i := range dst {
		dst[i] = getF32(b, off+i*4)
	}
}

func putF32s(b []byte, off int, src []float32) {
	for i, v := range src {
		putF32(b, off+i*4, v)
	}
}

func getMatrix(b []byte, off int) Matrix {
	var m Matrix
	getF32s(m[:], b, off)
	return m
}

func putMatrix(b []byte, off int, m Matrix) {
	putF32s(b, off, m[:])
}

func getOffset(b []byte, off int) Offset {
	return Offset(le.Uint64(b[off:]))
}

func putOffset(b []byte, off int, v Offset) {
	le.PutUint64(b[off:], uint64(v))
}

func getFixedString(b []byte, off int) FixedString {
	var f FixedString
	copy(f[:], b[off:off+FixedStringSize])
	return f
}

func putFixedString(b []byte, off int, f FixedString) {
	copy(b[off:off+FixedStringSize], f[:])
}

// alignUp rounds n up to the next multiple of Alignment.
func alignUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}
