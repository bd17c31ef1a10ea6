package codec

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrTruncated = errors.New("unexpected end of data")
	ErrIO        = errors.New("i/o failure")
)

// TruncationError reports a field that ran past the end of the source.
type TruncationError struct {
	Offset int64 // Offset of the first byte of the field
	Need   int   // Bytes the field requires
	Got    int   // Bytes actually available
}

// Error implements the error interface.
func (e *TruncationError) Error() string {
	return fmt.Sprintf("unexpected end of data at offset %d: need %d bytes, got %d", e.Offset, e.Need, e.Got)
}

// Is reports whether target is ErrTruncated.
func (e *TruncationError) Is(target error) bool {
	return target == ErrTruncated
}

// IOError wraps a failure of the underlying reader or writer.
type IOError struct {
	Op     string // "read" or "write"
	Offset int64  // Offset of the field being transferred
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s failed at offset %d: %v", e.Op, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
