package nn

import (
	"fmt"

	"github.com/born-ml/mlp/internal/parallel"
)

// Network is a fully connected feed-forward network.
//
// The caller owns the Network. Its shape is established at construction and
// treated as ground truth by everything that reads or fills its parameters.
//
// A Network is not safe for concurrent mutation. Forward and PredictBatch
// only read it and may run concurrently with each other.
type Network struct {
	Inputs int
	Layers []*Layer
}

// NewNetwork allocates a zero-initialized network with the given topology.
func NewNetwork(topo Topology) (*Network, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	net := &Network{
		Inputs: topo.Inputs,
		Layers: make([]*Layer, len(topo.Layers)),
	}
	width := topo.Inputs
	for i, spec := range topo.Layers {
		net.Layers[i] = NewLayer(width, spec.Neurons, spec.Activation)
		width = spec.Neurons
	}
	return net, nil
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.Layers)
}

// Outputs returns the width of the last layer, or Inputs when there are no layers.
func (n *Network) Outputs() int {
	if len(n.Layers) == 0 {
		return n.Inputs
	}
	return n.Layers[len(n.Layers)-1].Len()
}

// Topology derives the topology of n. Layer widths come from neuron counts;
// use Validate to confirm that weight counts agree.
func (n *Network) Topology() Topology {
	topo := Topology{
		Inputs: n.Inputs,
		Layers: make([]LayerSpec, len(n.Layers)),
	}
	for i, l := range n.Layers {
		topo.Layers[i] = LayerSpec{Neurons: l.Len(), Activation: l.Activation}
	}
	return topo
}

// NumParams returns the total number of weights and biases.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.Layers {
		for _, neuron := range l.Neurons {
			total += len(neuron.Weights) + 1
		}
	}
	return total
}

// Validate checks that every neuron's weight count matches the width of the
// layer that feeds it.
func (n *Network) Validate() error {
	width := n.Inputs
	for i, l := range n.Layers {
		if l == nil {
			return fmt.Errorf("%w: layer %d is nil", ErrShape, i)
		}
		for j, neuron := range l.Neurons {
			if neuron == nil {
				return fmt.Errorf("%w: layer %d neuron %d is nil", ErrShape, i, j)
			}
			if len(neuron.Weights) != width {
				return fmt.Errorf("%w: layer %d neuron %d: expected %d weights, got %d",
					ErrShape, i, j, width, len(neuron.Weights))
			}
		}
		width = l.Len()
	}
	return nil
}

// Clone returns a deep copy of n.
func (n *Network) Clone() *Network {
	c := &Network{
		Inputs: n.Inputs,
		Layers: make([]*Layer, len(n.Layers)),
	}
	for i, l := range n.Layers {
		c.Layers[i] = l.Clone()
	}
	return c
}

// CopyParams overwrites the weights and biases of n with those of src.
//
// Both networks must have identical neuron and weight counts; n is left
// untouched otherwise.
func (n *Network) CopyParams(src *Network) error {
	if err := sameShape(n, src); err != nil {
		return err
	}
	for i, l := range n.Layers {
		for j, neuron := range l.Neurons {
			from := src.Layers[i].Neurons[j]
			copy(neuron.Weights, from.Weights)
			neuron.Bias = from.Bias
		}
	}
	return nil
}

func sameShape(a, b *Network) error {
	if len(a.Layers) != len(b.Layers) {
		return fmt.Errorf("%w: %d layers vs %d", ErrShape, len(a.Layers), len(b.Layers))
	}
	for i := range a.Layers {
		la, lb := a.Layers[i], b.Layers[i]
		if la.Len() != lb.Len() {
			return fmt.Errorf("%w: layer %d: %d neurons vs %d", ErrShape, i, la.Len(), lb.Len())
		}
		for j := range la.Neurons {
			if wa, wb := len(la.Neurons[j].Weights), len(lb.Neurons[j].Weights); wa != wb {
				return fmt.Errorf("%w: layer %d neuron %d: %d weights vs %d", ErrShape, i, j, wa, wb)
			}
		}
	}
	return nil
}

// Forward runs x through every layer and returns the output of the last one.
func (n *Network) Forward(x []float64) ([]float64, error) {
	if len(x) != n.Inputs {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", ErrShape, n.Inputs, len(x))
	}
	out := x
	for _, l := range n.Layers {
		out = l.Forward(out)
	}
	if len(n.Layers) == 0 {
		out = append([]float64(nil), x...)
	}
	return out, nil
}

// PredictBatch runs Forward on every row of xs, spreading rows across workers
// according to cfg.
func (n *Network) PredictBatch(xs [][]float64, cfg parallel.Config) ([][]float64, error) {
	out := make([][]float64, len(xs))
	err := parallel.Rows(len(xs), cfg, func(i int) error {
		y, err := n.Forward(xs[i])
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = y
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
