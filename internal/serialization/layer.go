package serialization

import (
	"math"

	"github.com/born-ml/mlp/internal/codec"
	"github.com/born-ml/mlp/internal/nn"
)

// writeLayer writes the neuron count followed by each neuron.
func writeLayer(enc *codec.Encoder, l *nn.Layer, pos position) error {
	count, ok := countU32(len(l.Neurons))
	if !ok {
		e := pos.fail(KindRange, "neuron count", enc.Offset(), nil)
		e.Got = uint64(len(l.Neurons))
		e.Want = math.MaxUint32
		return e
	}
	if err := enc.WriteU32(count); err != nil {
		return pos.wrap("neuron count", err)
	}
	for i, n := range l.Neurons {
		if err := writeNeuron(enc, n, pos.inNeuron(i)); err != nil {
			return err
		}
	}
	return nil
}

// readLayer fills every neuron of l in order, stopping at the first failure.
func readLayer(dec *codec.Decoder, l *nn.Layer, pos position) error {
	offset := dec.Offset()
	count, err := dec.ReadU32()
	if err != nil {
		return pos.wrap("neuron count", err)
	}
	if uint64(count) != uint64(len(l.Neurons)) {
		return pos.mismatch("neuron count", offset, count, len(l.Neurons))
	}
	for i, n := range l.Neurons {
		if err := readNeuron(dec, n, pos.inNeuron(i)); err != nil {
			return err
		}
	}
	return nil
}
