// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides fully connected feed-forward networks.
//
// # Overview
//
// This package contains:
//   - Network, Layer, Neuron: float64 weights and biases
//   - Topology: input width plus neuron count and activation per layer
//   - Activations: Identity, Sigmoid, Tanh, ReLU, LeakyReLU, Softmax
//   - Initialization: XavierInit, Fill
//   - Loss: MSE
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mlp/nn"
//	    "github.com/born-ml/mlp/serialization"
//	)
//
//	func main() {
//	    net, err := nn.NewNetwork(nn.Topology{
//	        Inputs: 2,
//	        Layers: []nn.LayerSpec{
//	            {Neurons: 4, Activation: nn.Tanh},
//	            {Neurons: 1, Activation: nn.Sigmoid},
//	        },
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Weights come from a file saved with the same topology.
//	    if err := serialization.LoadFile("xor.bmlp", net); err != nil {
//	        log.Fatal(err)
//	    }
//	    out, _ := net.Forward([]float64{0, 1})
//	}
//
// # Shape
//
// The shape of a Network is fixed when it is built. Loading a weight file
// overwrites values in place and never resizes a layer or a neuron.
package nn
