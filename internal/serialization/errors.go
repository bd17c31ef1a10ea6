package serialization

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/mlp/internal/codec"
)

// Common errors. Every *Error matches exactly one of the first six via
// errors.Is, according to its Kind.
var (
	ErrIO                = codec.ErrIO
	ErrTruncated         = codec.ErrTruncated
	ErrStructureMismatch = errors.New("structure mismatch")
	ErrFormat            = errors.New("unrecognized weight file")
	ErrRange             = errors.New("count exceeds 32-bit range")
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")

	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrTrailingData       = errors.New("unexpected data after model")
	ErrUnsupportedFormat  = errors.New("unsupported format")
)

// Kind classifies a serialization failure.
type Kind uint8

// Failure kinds.
const (
	KindIO         Kind = iota + 1 // Underlying read or write failed
	KindTruncated                  // Source ended inside a field
	KindMismatch                   // Decoded count disagrees with the target network
	KindFormat                     // Magic, version or framing not recognized
	KindRange                      // Count does not fit in 32 bits
	KindCorrupt                    // Checksum footer does not match
)

// String returns a short description of the kind, aimed at the person who
// has to act on it.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "i/o error"
	case KindTruncated:
		return "truncated or corrupt file"
	case KindMismatch:
		return "structure mismatch (wrong topology)"
	case KindFormat:
		return "not a BMLP weight file"
	case KindRange:
		return "range error"
	case KindCorrupt:
		return "corrupt file (checksum mismatch)"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindTruncated:
		return ErrTruncated
	case KindMismatch:
		return ErrStructureMismatch
	case KindFormat:
		return ErrFormat
	case KindRange:
		return ErrRange
	case KindCorrupt:
		return ErrChecksumMismatch
	default:
		return nil
	}
}

// Error describes a failed save, load or inspect.
//
// Layer and Neuron are -1 when the failure is not inside a layer or neuron.
// For KindMismatch, Got is the count found in the file and Want the count
// in the target network.
type Error struct {
	Kind   Kind
	Op     string // "save", "load" or "inspect"
	Layer  int
	Neuron int
	Field  string // e.g. "neuron count", "weight[3]", "bias", "magic"
	Offset int64  // Byte offset of the field
	Want   uint64
	Got    uint64
	Err    error // Underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Layer >= 0 {
		fmt.Fprintf(&b, ": layer %d", e.Layer)
		if e.Neuron >= 0 {
			fmt.Fprintf(&b, " neuron %d", e.Neuron)
		}
	}
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	switch e.Kind {
	case KindMismatch:
		fmt.Fprintf(&b, ": file has %d, network has %d", e.Got, e.Want)
	case KindRange:
		fmt.Fprintf(&b, ": %d exceeds %d", e.Got, e.Want)
	}
	if e.Err != nil {
		// Codec errors already carry the offset.
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// position tracks where in the stream a codec is working.
type position struct {
	op     string
	layer  int
	neuron int
}

func at(op string) position {
	return position{op: op, layer: -1, neuron: -1}
}

func (p position) inLayer(i int) position {
	p.layer = i
	p.neuron = -1
	return p
}

func (p position) inNeuron(i int) position {
	p.neuron = i
	return p
}

func (p position) fail(kind Kind, field string, offset int64, cause error) *Error {
	return &Error{
		Kind:   kind,
		Op:     p.op,
		Layer:  p.layer,
		Neuron: p.neuron,
		Field:  field,
		Offset: offset,
		Err:    cause,
	}
}

// wrap classifies an error from the primitive codec.
func (p position) wrap(field string, err error) *Error {
	kind := KindIO
	offset := int64(-1)

	var te *codec.TruncationError
	var ie *codec.IOError
	switch {
	case errors.As(err, &te):
		kind = KindTruncated
		offset = te.Offset
	case errors.As(err, &ie):
		offset = ie.Offset
	}
	return p.fail(kind, field, offset, err)
}

func (p position) mismatch(field string, offset int64, got uint32, want int) *Error {
	e := p.fail(KindMismatch, field, offset, nil)
	e.Got = uint64(got)
	e.Want = uint64(want)
	return e
}

func weightField(i int) string {
	return fmt.Sprintf("weight[%d]", i)
}
