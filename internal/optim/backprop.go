package optim

import (
	"errors"
	"fmt"

	"github.com/born-ml/mlp/internal/nn"
)

// errNoLayers is returned when training a network without layers.
var errNoLayers = errors.New("network has no layers")

// backprop computes per-sample gradients of the MSE loss.
//
// Gradients are stored in grads, a network of the same shape as net: each
// neuron's Weights hold dLoss/dWeight and its Bias holds dLoss/dBias.
type backprop struct {
	net   *nn.Network
	grads *nn.Network

	z   [][]float64 // Pre-activations per layer
	out [][]float64 // Activated outputs per layer
	dz  [][]float64 // dLoss/dz per layer
	dy  [][]float64 // dLoss/dout per layer
}

func newBackprop(net *nn.Network) (*backprop, error) {
	if err := net.Validate(); err != nil {
		return nil, err
	}
	if net.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", nn.ErrShape, errNoLayers)
	}

	b := &backprop{
		net:   net,
		grads: net.Clone(),
		z:     make([][]float64, net.Len()),
		out:   make([][]float64, net.Len()),
		dz:    make([][]float64, net.Len()),
		dy:    make([][]float64, net.Len()),
	}
	nn.Fill(b.grads, 0)
	for i, l := range net.Layers {
		b.z[i] = make([]float64, l.Len())
		b.out[i] = make([]float64, l.Len())
		b.dz[i] = make([]float64, l.Len())
		b.dy[i] = make([]float64, l.Len())
	}
	return b, nil
}

// compute fills b.grads for sample (x, y) and returns the loss.
func (b *backprop) compute(x, y []float64) (float64, error) {
	if len(x) != b.net.Inputs {
		return 0, fmt.Errorf("%w: expected %d inputs, got %d", nn.ErrShape, b.net.Inputs, len(x))
	}
	if len(y) != b.net.Outputs() {
		return 0, fmt.Errorf("%w: expected %d targets, got %d", nn.ErrShape, b.net.Outputs(), len(y))
	}

	in := x
	for i, l := range b.net.Layers {
		l.Preactivate(b.z[i], in)
		l.Activation.Apply(b.out[i], b.z[i])
		in = b.out[i]
	}

	last := b.net.Len() - 1
	pred := b.out[last]
	loss, err := nn.MSE(pred, y)
	if err != nil {
		return 0, err
	}
	nn.MSEGrad(b.dy[last], pred, y)

	for i := last; i >= 0; i-- {
		l := b.net.Layers[i]
		l.Activation.Backward(b.dz[i], b.z[i], b.out[i], b.dy[i])

		input := x
		var dx []float64
		if i > 0 {
			input = b.out[i-1]
			dx = b.dy[i-1]
			clear(dx)
		}

		for j, n := range l.Neurons {
			g := b.grads.Layers[i].Neurons[j]
			d := b.dz[i][j]
			for k, w := range n.Weights {
				g.Weights[k] = d * input[k]
				if dx != nil {
					dx[k] += w * d
				}
			}
			g.Bias = d
		}
	}
	return loss, nil
}
