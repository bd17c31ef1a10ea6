package nn

import (
	"math"
	"math/rand"
)

// XavierInit fills every weight of net from a Xavier (Glorot) uniform
// distribution and sets every bias to zero.
//
// Weights of a layer are drawn from:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
// where fan_in is the neuron's weight count and fan_out the layer's neuron count.
//
// Passing a seeded rng makes the result reproducible.
func XavierInit(net *Network, rng *rand.Rand) {
	for _, l := range net.Layers {
		fanOut := l.Len()
		for _, neuron := range l.Neurons {
			fanIn := len(neuron.Weights)
			if fanIn+fanOut == 0 {
				continue
			}
			bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
			for i := range neuron.Weights {
				neuron.Weights[i] = (rng.Float64()*2.0 - 1.0) * bound
			}
			neuron.Bias = 0
		}
	}
}

// Fill sets every weight and bias of net to v.
func Fill(net *Network, v float64) {
	for _, l := range net.Layers {
		for _, neuron := range l.Neurons {
			for i := range neuron.Weights {
				neuron.Weights[i] = v
			}
			neuron.Bias = v
		}
	}
}
