package serialization

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/mlp/internal/codec"
	"github.com/born-ml/mlp/internal/nn"
)

// LoadFile loads the model at path into net.
//
// Unlike Load, LoadFile is atomic with respect to net: the file is decoded
// into a copy of net and the values are copied over only when the whole
// file, including its checksum and the absence of trailing bytes, checks
// out. On error net is unchanged.
func LoadFile(path string, net *nn.Network, opts ...Option) error {
	pos := at("load")

	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	defer f.Close()

	scratch := net.Clone()
	br := bufio.NewReader(f)
	dec, err := load(br, scratch, buildOptions(opts), pos)
	if err != nil {
		return err
	}
	if err := expectEOF(br, dec.Offset(), pos); err != nil {
		return err
	}
	return net.CopyParams(scratch)
}

// expectEOF fails when anything follows the model.
func expectEOF(br *bufio.Reader, offset int64, pos position) error {
	_, err := br.ReadByte()
	switch {
	case err == nil:
		return pos.fail(KindFormat, "", offset, ErrTrailingData)
	case errors.Is(err, io.EOF):
		return nil
	default:
		return pos.fail(KindIO, "", offset, err)
	}
}

// LayerSummary describes one layer found in a weight file.
type LayerSummary struct {
	Neurons int  // Neuron count
	Inputs  int  // Weight count of the first neuron
	Uniform bool // Every neuron has Inputs weights
}

// Summary describes a weight file without reference to a target network.
type Summary struct {
	Format   Format
	Layers   []LayerSummary
	Params   int    // Total weights and biases
	Size     int64  // Bytes occupied by the model
	Checksum string // Hex SHA-256 footer (version 2 only, verified)
}

// Topology reconstructs the shape recorded in the file.
//
// Weight files do not store activations, so every layer gets Identity;
// callers must supply activations from configuration.
func (s *Summary) Topology() (nn.Topology, error) {
	if len(s.Layers) == 0 {
		return nn.Topology{}, fmt.Errorf("%w: file has no layers", nn.ErrShape)
	}
	topo := nn.Topology{
		Inputs: s.Layers[0].Inputs,
		Layers: make([]nn.LayerSpec, len(s.Layers)),
	}
	width := topo.Inputs
	for i, l := range s.Layers {
		if !l.Uniform {
			return nn.Topology{}, fmt.Errorf("%w: layer %d has neurons of different widths", nn.ErrShape, i)
		}
		if l.Neurons > 0 && l.Inputs != width {
			return nn.Topology{}, fmt.Errorf("%w: layer %d takes %d inputs, previous layer has %d outputs",
				nn.ErrShape, i, l.Inputs, width)
		}
		topo.Layers[i] = nn.LayerSpec{Neurons: l.Neurons, Activation: nn.Identity}
		width = l.Neurons
	}
	return topo, nil
}

// Inspect decodes the structure of a weight file from r without loading it
// into a network.
//
// Values are read and discarded, so a truncated file still fails with
// ErrTruncated. Nothing is allocated in proportion to counts found in the
// file until the corresponding bytes have been read.
func Inspect(r io.Reader, opts ...Option) (*Summary, error) {
	o := buildOptions(opts)
	pos := at("inspect")

	d := newDigest(o.format.hasHeader())
	dec := codec.NewDecoder(d.reader(r))

	format, err := readHeader(dec, o.format, pos)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Format: format}

	layers, err := dec.ReadU32()
	if err != nil {
		return nil, pos.wrap("layer count", err)
	}
	for i := uint32(0); i < layers; i++ {
		ls, params, err := inspectLayer(dec, pos.inLayer(int(i)))
		if err != nil {
			return nil, err
		}
		summary.Layers = append(summary.Layers, ls)
		summary.Params += params
	}

	if format.hasChecksum() {
		sum := d.sum()
		if err := readChecksum(dec, d, pos); err != nil {
			return nil, err
		}
		summary.Checksum = hex.EncodeToString(sum[:])
	}
	summary.Size = dec.Offset()
	return summary, nil
}

func inspectLayer(dec *codec.Decoder, pos position) (LayerSummary, int, error) {
	neurons, err := dec.ReadU32()
	if err != nil {
		return LayerSummary{}, 0, pos.wrap("neuron count", err)
	}

	ls := LayerSummary{Uniform: true}
	params := 0
	for j := uint32(0); j < neurons; j++ {
		npos := pos.inNeuron(int(j))
		weights, err := dec.ReadU32()
		if err != nil {
			return LayerSummary{}, 0, npos.wrap("weight count", err)
		}
		for k := uint32(0); k < weights; k++ {
			if _, err := dec.ReadF64(); err != nil {
				return LayerSummary{}, 0, npos.wrap(weightField(int(k)), err)
			}
		}
		if _, err := dec.ReadF64(); err != nil {
			return LayerSummary{}, 0, npos.wrap("bias", err)
		}

		if j == 0 {
			ls.Inputs = int(weights)
		} else if int(weights) != ls.Inputs {
			ls.Uniform = false
		}
		ls.Neurons++
		params += int(weights) + 1
	}
	return ls, params, nil
}

// InspectFile is Inspect on the file at path. Bytes after the model are
// reported as ErrTrailingData.
func InspectFile(path string, opts ...Option) (*Summary, error) {
	pos := at("inspect")

	//nolint:gosec // G304: File path comes from user input, which is expected for model inspection
	f, err := os.Open(path)
	if err != nil {
		return nil, pos.fail(KindIO, "", -1, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	summary, err := Inspect(br, opts...)
	if err != nil {
		return nil, err
	}
	if err := expectEOF(br, summary.Size, pos); err != nil {
		return nil, err
	}
	return summary, nil
}
