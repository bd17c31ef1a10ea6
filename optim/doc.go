// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Fit: an epoch loop with optional shuffling and progress reporting
//
// Gradients of the mean squared error are computed by backpropagation over
// one sample per Step. Weights and biases are updated in place and the
// topology never changes.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mlp/nn"
//	    "github.com/born-ml/mlp/optim"
//	)
//
//	func main() {
//	    net, _ := nn.NewNetwork(topo)
//	    nn.XavierInit(net, rand.New(rand.NewSource(1)))
//
//	    optimizer, err := optim.NewSGD(net, optim.SGDConfig{
//	        LR:       0.1,
//	        Momentum: 0.9,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Training loop
//	    for epoch := range 100 {
//	        loss, err := optimizer.Epoch(xs, ys)
//	        ...
//	    }
//	}
//
// # Optimizers
//
// SGD (Stochastic Gradient Descent):
//
//	optimizer, err := optim.NewSGD(net, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//
// Adam (Adaptive Moment Estimation):
//
//	optimizer, err := optim.NewAdam(net, optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
package optim
