// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Gradients come from backpropagating the mean squared error of one sample
// through every layer. Optimizers update weights and biases in place and
// never change the topology, so a trained network saves and loads into the
// shape it was created with.
//
// Example usage:
//
//	net, _ := nn.NewNetwork(topo)
//	nn.XavierInit(net, rng)
//
//	optimizer, _ := optim.NewSGD(net, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//	for epoch := range epochs {
//	    loss, err := optimizer.Epoch(xs, ys)
//	    ...
//	}
package optim

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mlp/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update network parameters based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Step runs one forward and backward pass on a single sample and
	// applies the update. It returns the loss before the update.
	Step(x, y []float64) (float64, error)

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate, for scheduling.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// Progress is called after every epoch of Fit with the mean loss.
type Progress func(epoch int, loss float64)

// Epoch runs opt.Step over every sample in order and returns the mean loss.
func Epoch(opt Optimizer, xs, ys [][]float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: %d inputs vs %d targets", nn.ErrShape, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return 0, nil
	}
	var total float64
	for i := range xs {
		loss, err := opt.Step(xs[i], ys[i])
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += loss
	}
	return total / float64(len(xs)), nil
}

// Fit trains for the given number of epochs and returns the mean loss of the
// last one.
//
// When rng is not nil, samples are visited in a new random order every
// epoch. progress may be nil.
func Fit(opt Optimizer, xs, ys [][]float64, epochs int, rng *rand.Rand, progress Progress) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: %d inputs vs %d targets", nn.ErrShape, len(xs), len(ys))
	}

	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	sx := make([][]float64, len(xs))
	sy := make([][]float64, len(ys))

	var loss float64
	for epoch := 1; epoch <= epochs; epoch++ {
		if rng != nil {
			rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}
		for i, k := range order {
			sx[i], sy[i] = xs[k], ys[k]
		}

		var err error
		loss, err = Epoch(opt, sx, sy)
		if err != nil {
			return 0, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if progress != nil {
			progress(epoch, loss)
		}
	}
	return loss, nil
}

// params returns pointers to every weight and bias of net, neuron by neuron,
// weights before bias. The pointers stay valid as long as no weight slice of
// net is replaced.
func params(net *nn.Network) []*float64 {
	ps := make([]*float64, 0, net.NumParams())
	for _, l := range net.Layers {
		for _, n := range l.Neurons {
			for k := range n.Weights {
				ps = append(ps, &n.Weights[k])
			}
			ps = append(ps, &n.Bias)
		}
	}
	return ps
}
