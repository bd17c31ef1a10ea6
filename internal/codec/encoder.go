package codec

import (
	"encoding/binary"
	"io"
)

// Encoder writes canonical primitives to an io.Writer.
//
// An Encoder does not buffer and does not own w; callers that write to a file
// should wrap it in a bufio.Writer and flush when done.
type Encoder struct {
	w      io.Writer
	host   binary.ByteOrder
	offset int64
	buf    [SizeF64]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return newEncoder(w, hostOrder)
}

func newEncoder(w io.Writer, host binary.ByteOrder) *Encoder {
	return &Encoder{w: w, host: host}
}

// Offset returns the number of bytes written so far.
func (e *Encoder) Offset() int64 {
	return e.offset
}

// WriteU32 writes v as 4 little-endian bytes.
func (e *Encoder) WriteU32(v uint32) error {
	putU32(e.buf[:SizeU32], v, e.host)
	return e.write(e.buf[:SizeU32])
}

// WriteF64 writes the IEEE 754 binary64 pattern of v as 8 little-endian bytes.
func (e *Encoder) WriteF64(v float64) error {
	putF64(e.buf[:SizeF64], v, e.host)
	return e.write(e.buf[:SizeF64])
}

// WriteBytes writes p verbatim.
func (e *Encoder) WriteBytes(p []byte) error {
	return e.write(p)
}

func (e *Encoder) write(p []byte) error {
	n, err := e.w.Write(p)
	start := e.offset
	e.offset += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &IOError{Op: "write", Offset: start, Err: err}
	}
	return nil
}
