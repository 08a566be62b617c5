//go:build !linux

package logger

import "io"

// IsTerminal reports false off linux, so output is never colored there.
func IsTerminal(io.Writer) bool {
	return false
}
