// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/parallel"
)

// ErrShape is returned when a network, topology or input has the wrong shape.
var ErrShape = nn.ErrShape

// Network is an ordered list of layers fed by a fixed number of inputs.
type Network = nn.Network

// Layer is an ordered list of neurons that share one activation.
type Layer = nn.Layer

// Neuron holds one weight per input and a bias.
type Neuron = nn.Neuron

// Topology is the shape of a network.
type Topology = nn.Topology

// LayerSpec describes one layer of a Topology.
type LayerSpec = nn.LayerSpec

// NewNetwork builds an all-zero network with the given topology.
//
// Example:
//
//	net, err := nn.NewNetwork(nn.Topology{
//	    Inputs: 784,
//	    Layers: []nn.LayerSpec{
//	        {Neurons: 128, Activation: nn.ReLU},
//	        {Neurons: 10, Activation: nn.Softmax},
//	    },
//	})
func NewNetwork(topo Topology) (*Network, error) {
	return nn.NewNetwork(topo)
}

// NewLayer creates a layer of neurons, each with inputs zero weights.
func NewLayer(inputs, neurons int, act Activation) *Layer {
	return nn.NewLayer(inputs, neurons, act)
}

// NewNeuron creates a neuron with inputs zero weights and a zero bias.
func NewNeuron(inputs int) *Neuron {
	return nn.NewNeuron(inputs)
}

// Activations

// Activation selects the function applied to a layer's pre-activations.
type Activation = nn.Activation

// Supported activations.
const (
	Identity  = nn.Identity
	Sigmoid   = nn.Sigmoid
	Tanh      = nn.Tanh
	ReLU      = nn.ReLU
	LeakyReLU = nn.LeakyReLU
	Softmax   = nn.Softmax
)

// ParseActivation converts a name such as "relu" or "leaky_relu" to an Activation.
func ParseActivation(s string) (Activation, error) {
	return nn.ParseActivation(s)
}

// Initialization

// XavierInit fills every weight of net from a Xavier uniform distribution
// and sets every bias to zero.
func XavierInit(net *Network, rng *rand.Rand) {
	nn.XavierInit(net, rng)
}

// Fill sets every weight and bias of net to v.
func Fill(net *Network, v float64) {
	nn.Fill(net, v)
}

// Loss functions

// MSE computes Mean Squared Error loss.
func MSE(predictions, targets []float64) (float64, error) {
	return nn.MSE(predictions, targets)
}

// Inference

// ParallelConfig controls how PredictBatch spreads rows across goroutines.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns defaults based on CPU count.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
