package serialization

import (
	"math"

	"github.com/born-ml/mlp/internal/codec"
	"github.com/born-ml/mlp/internal/nn"
)

// countU32 converts a slice length to the on-disk count type.
func countU32(n int) (uint32, bool) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// writeNeuron writes weight count, weights in order, then bias.
func writeNeuron(enc *codec.Encoder, n *nn.Neuron, pos position) error {
	count, ok := countU32(len(n.Weights))
	if !ok {
		e := pos.fail(KindRange, "weight count", enc.Offset(), nil)
		e.Got = uint64(len(n.Weights))
		e.Want = math.MaxUint32
		return e
	}
	if err := enc.WriteU32(count); err != nil {
		return pos.wrap("weight count", err)
	}
	for i, w := range n.Weights {
		if err := enc.WriteF64(w); err != nil {
			return pos.wrap(weightField(i), err)
		}
	}
	if err := enc.WriteF64(n.Bias); err != nil {
		return pos.wrap("bias", err)
	}
	return nil
}

// readNeuron fills n from the stream.
//
// The weight count must equal len(n.Weights); nothing else is read otherwise.
// On a failure after the count, weights already read stay overwritten.
func readNeuron(dec *codec.Decoder, n *nn.Neuron, pos position) error {
	offset := dec.Offset()
	count, err := dec.ReadU32()
	if err != nil {
		return pos.wrap("weight count", err)
	}
	if uint64(count) != uint64(len(n.Weights)) {
		return pos.mismatch("weight count", offset, count, len(n.Weights))
	}
	for i := range n.Weights {
		w, err := dec.ReadF64()
		if err != nil {
			return pos.wrap(weightField(i), err)
		}
		n.Weights[i] = w
	}
	bias, err := dec.ReadF64()
	if err != nil {
		return pos.wrap("bias", err)
	}
	n.Bias = bias
	return nil
}
