package serialization

import (
	"fmt"
	"io"
	"math"

	"github.com/born-ml/mlp/internal/codec"
	"github.com/born-ml/mlp/internal/nn"
)

// Save writes the parameters of net to w.
//
// Save only reads net. Output is deterministic: saving an unmodified network
// twice produces identical bytes. w is not closed or flushed.
func Save(w io.Writer, net *nn.Network, opts ...Option) error {
	o := buildOptions(opts)
	pos := at("save")
	if o.format > FormatV2 {
		return pos.fail(KindFormat, "version", 0, fmt.Errorf("%w: %d", ErrUnsupportedFormat, uint32(o.format)))
	}

	d := newDigest(o.format.hasChecksum())
	enc := codec.NewEncoder(d.writer(w))

	if o.format.hasHeader() {
		if err := enc.WriteBytes([]byte(MagicBytes)); err != nil {
			return pos.wrap("magic", err)
		}
		if err := enc.WriteU32(uint32(o.format)); err != nil {
			return pos.wrap("version", err)
		}
	}

	if err := writeLayers(enc, net, pos); err != nil {
		return err
	}

	if d != nil {
		sum := d.sum()
		if err := enc.WriteBytes(sum[:]); err != nil {
			return pos.wrap("checksum", err)
		}
	}
	return nil
}

func writeLayers(enc *codec.Encoder, net *nn.Network, pos position) error {
	count, ok := countU32(len(net.Layers))
	if !ok {
		e := pos.fail(KindRange, "layer count", enc.Offset(), nil)
		e.Got = uint64(len(net.Layers))
		e.Want = math.MaxUint32
		return e
	}
	if err := enc.WriteU32(count); err != nil {
		return pos.wrap("layer count", err)
	}
	for i, l := range net.Layers {
		if err := writeLayer(enc, l, pos.inLayer(i)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads parameters from r into net, which must already have the
// topology the file was saved from.
//
// Every count in the file is checked against net before any value it
// governs is read; a disagreement is reported as ErrStructureMismatch and
// net is never resized. Load consumes exactly the bytes of one model and
// leaves r positioned after it.
//
// On failure, parameters read before the error stay overwritten. Use
// LoadFile, or load into net.Clone(), when the target must stay intact.
func Load(r io.Reader, net *nn.Network, opts ...Option) error {
	_, err := load(r, net, buildOptions(opts), at("load"))
	return err
}

// load returns the decoder so callers can inspect what follows the model.
func load(r io.Reader, net *nn.Network, o options, pos position) (*codec.Decoder, error) {
	// The version is not known yet, so hash from the first byte.
	d := newDigest(o.format.hasHeader())
	dec := codec.NewDecoder(d.reader(r))

	format, err := readHeader(dec, o.format, pos)
	if err != nil {
		return dec, err
	}

	if err := readLayers(dec, net, pos); err != nil {
		return dec, err
	}

	if format.hasChecksum() {
		if err := readChecksum(dec, d, pos); err != nil {
			return dec, err
		}
	}
	return dec, nil
}

// readHeader checks magic and version, returning the format of the stream.
func readHeader(dec *codec.Decoder, want Format, pos position) (Format, error) {
	if !want.hasHeader() {
		return FormatRaw, nil
	}

	magic := make([]byte, MagicSize)
	if err := dec.ReadBytes(magic); err != nil {
		return 0, pos.wrap("magic", err)
	}
	if string(magic) != MagicBytes {
		return 0, pos.fail(KindFormat, "magic", 0,
			fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, magic, MagicBytes))
	}

	offset := dec.Offset()
	version, err := dec.ReadU32()
	if err != nil {
		return 0, pos.wrap("version", err)
	}
	if !supportedVersion(version) {
		return 0, pos.fail(KindFormat, "version", offset,
			fmt.Errorf("%w: got %d, expected %d or %d", ErrUnsupportedVersion, version, FormatV1, FormatV2))
	}
	return Format(version), nil
}

func readLayers(dec *codec.Decoder, net *nn.Network, pos position) error {
	offset := dec.Offset()
	count, err := dec.ReadU32()
	if err != nil {
		return pos.wrap("layer count", err)
	}
	if uint64(count) != uint64(len(net.Layers)) {
		return pos.mismatch("layer count", offset, count, len(net.Layers))
	}
	for i, l := range net.Layers {
		if err := readLayer(dec, l, pos.inLayer(i)); err != nil {
			return err
		}
	}
	return nil
}

// readChecksum compares the footer with the hash of everything before it.
func readChecksum(dec *codec.Decoder, d *digest, pos position) error {
	var stored [ChecksumSize]byte
	computed := d.sum()

	offset := dec.Offset()
	if err := dec.ReadBytes(stored[:]); err != nil {
		return pos.wrap("checksum", err)
	}
	if err := ValidateChecksum(computed, stored); err != nil {
		return pos.fail(KindCorrupt, "checksum", offset, nil)
	}
	return nil
}
