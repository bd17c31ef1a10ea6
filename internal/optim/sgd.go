package optim

import (
	"github.com/born-ml/mlp/internal/nn"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer, err := optim.NewSGD(net, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//
//	for epoch := range epochs {
//	    loss, err := optimizer.Epoch(xs, ys)
//	}
type SGD struct {
	bp         *backprop
	params     []*float64
	grads      []*float64
	lr         float64
	momentum   float64
	velocities []float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer that trains net in place.
//
// net must have at least one layer and a consistent shape.
func NewSGD(net *nn.Network, config SGDConfig) (*SGD, error) {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	bp, err := newBackprop(net)
	if err != nil {
		return nil, err
	}
	s := &SGD{
		bp:       bp,
		params:   params(net),
		grads:    params(bp.grads),
		lr:       config.LR,
		momentum: config.Momentum,
	}
	if s.momentum != 0 {
		s.velocities = make([]float64, len(s.params))
	}
	return s, nil
}

// Step performs a single optimization step on sample (x, y).
func (s *SGD) Step(x, y []float64) (float64, error) {
	loss, err := s.bp.compute(x, y)
	if err != nil {
		return 0, err
	}

	if s.momentum == 0 {
		for i, p := range s.params {
			*p -= s.lr * *s.grads[i]
		}
		return loss, nil
	}

	for i, p := range s.params {
		s.velocities[i] = s.momentum*s.velocities[i] + *s.grads[i]
		*p -= s.lr * s.velocities[i]
	}
	return loss, nil
}

// Epoch runs Step over every sample in order and returns the mean loss.
func (s *SGD) Epoch(xs, ys [][]float64) (float64, error) {
	return Epoch(s, xs, ys)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
