package serialization

import "fmt"

// Format constants.
const (
	MagicBytes   = "BMLP"
	MagicSize    = 4
	ChecksumSize = 32 // SHA-256 footer size (version 2)
)

// Format selects the on-disk layout.
type Format uint32

// Supported layouts. The numeric value of FormatV1 and FormatV2 is the
// version tag written after the magic.
const (
	FormatRaw Format = 0 // No magic, no version: layer data only
	FormatV1  Format = 1 // Magic + version 1
	FormatV2  Format = 2 // Magic + version 2 + SHA-256 footer
)

// DefaultFormat is used by Save when no format option is given.
const DefaultFormat = FormatV1

// String returns the command-line name of the format.
func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatV1:
		return "v1"
	case FormatV2:
		return "v2"
	default:
		return fmt.Sprintf("format(%d)", uint32(f))
	}
}

// ParseFormat converts "raw", "v1" or "v2" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "raw":
		return FormatRaw, nil
	case "v1", "1", "":
		return FormatV1, nil
	case "v2", "2":
		return FormatV2, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want raw, v1 or v2)", s)
	}
}

func (f Format) hasHeader() bool {
	return f != FormatRaw
}

func (f Format) hasChecksum() bool {
	return f == FormatV2
}

func supportedVersion(v uint32) bool {
	return v == uint32(FormatV1) || v == uint32(FormatV2)
}

type options struct {
	format Format
}

// Option configures Save, Load and Inspect.
type Option func(*options)

// WithFormat selects the layout.
//
// For Save it picks exactly what is written. For Load and Inspect,
// FormatRaw expects a headerless stream; any other value expects a header
// and accepts every supported version.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

func buildOptions(opts []Option) options {
	o := options{format: DefaultFormat}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
