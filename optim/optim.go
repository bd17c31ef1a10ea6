// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"math/rand"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// Progress is called after every epoch of Fit with the mean loss.
type Progress = optim.Progress

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer that trains net in place.
//
// Example:
//
//	optimizer, err := optim.NewSGD(net, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(net *nn.Network, config SGDConfig) (*SGD, error) {
	return optim.NewSGD(net, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(net *nn.Network, config AdamConfig) (*Adam, error) {
	return optim.NewAdam(net, config)
}

// Training loops

// Epoch runs opt.Step over every sample in order and returns the mean loss.
func Epoch(opt Optimizer, xs, ys [][]float64) (float64, error) {
	return optim.Epoch(opt, xs, ys)
}

// Fit trains for the given number of epochs and returns the mean loss of
// the last one. A non-nil rng shuffles the samples every epoch.
func Fit(opt Optimizer, xs, ys [][]float64, epochs int, rng *rand.Rand, progress Progress) (float64, error) {
	return optim.Fit(opt, xs, ys, epochs, rng, progress)
}
