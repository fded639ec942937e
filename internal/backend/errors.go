package backend

import (
	"errors"
	"strconv"
)

var (
	errOutOfRange = errors.New("backend: index out of range")
	errNoEditor   = errors.New("backend: plugin has no editor")

	// ErrBankDataWriteNotImplemented is returned for V3 bank-data writes
	// (spec.md §9 Open Question (b): "a stub in the source; specify as
	// not-implemented rather than guess semantics").
	ErrBankDataWriteNotImplemented = errors.New("backend: v3 bank data write is not implemented")
)

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 3, 32)
}
