// Package nn implements the fully connected feed-forward networks whose
// parameters are stored in BMLP weight files.
//
// This package provides:
//   - Neuron: a weight vector plus bias
//   - Layer: an ordered list of neurons sharing one activation
//   - Network: an ordered list of layers fed by a fixed number of inputs
//   - Topology: the shape of a network, used to build one before loading
//   - Activations: Identity, Sigmoid, Tanh, ReLU, LeakyReLU, Softmax
//   - Xavier initialization and MSE loss
//
// The shape of a Network is fixed when it is built. Loading a weight file
// overwrites values in place and never changes neuron or weight counts.
//
// Example:
//
//	topo := nn.Topology{
//	    Inputs: 2,
//	    Layers: []nn.LayerSpec{
//	        {Neurons: 4, Activation: nn.Tanh},
//	        {Neurons: 1, Activation: nn.Sigmoid},
//	    },
//	}
//	net, err := nn.NewNetwork(topo)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	nn.XavierInit(net, rand.New(rand.NewSource(1)))
//	out, err := net.Forward([]float64{0, 1})
package nn
