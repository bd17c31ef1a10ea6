package codec

import (
	"encoding/binary"
	"errors"
	"io"
)

// Decoder reads canonical primitives from an io.Reader.
//
// Every read consumes exactly the width of its field. A source that ends
// inside a field yields a *TruncationError, never a short value.
type Decoder struct {
	r      io.Reader
	host   binary.ByteOrder
	offset int64
	buf    [SizeF64]byte
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return newDecoder(r, hostOrder)
}

func newDecoder(r io.Reader, host binary.ByteOrder) *Decoder {
	return &Decoder{r: r, host: host}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// ReadU32 reads 4 little-endian bytes.
func (d *Decoder) ReadU32() (uint32, error) {
	if err := d.fill(d.buf[:SizeU32]); err != nil {
		return 0, err
	}
	return u32(d.buf[:SizeU32], d.host), nil
}

// ReadF64 reads 8 little-endian bytes as an IEEE 754 binary64 value.
func (d *Decoder) ReadF64() (float64, error) {
	if err := d.fill(d.buf[:SizeF64]); err != nil {
		return 0, err
	}
	return f64(d.buf[:SizeF64], d.host), nil
}

// ReadBytes fills p completely.
func (d *Decoder) ReadBytes(p []byte) error {
	return d.fill(p)
}

func (d *Decoder) fill(p []byte) error {
	start := d.offset
	n, err := io.ReadFull(d.r, p)
	d.offset += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &TruncationError{Offset: start, Need: len(p), Got: n}
	default:
		return &IOError{Op: "read", Offset: start, Err: err}
	}
}
