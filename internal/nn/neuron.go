package nn

// Neuron is a single unit of a fully connected layer.
//
// Weights[i] multiplies input i, so the order of Weights is significant.
// The length of Weights is fixed when the neuron is built.
type Neuron struct {
	Weights []float64
	Bias    float64
}

// NewNeuron creates a neuron with inputs zero weights and a zero bias.
func NewNeuron(inputs int) *Neuron {
	return &Neuron{Weights: make([]float64, inputs)}
}

// Inputs returns the number of weights.
func (n *Neuron) Inputs() int {
	return len(n.Weights)
}

// Preactivate returns Weights·x + Bias.
//
// x must have at least len(Weights) elements.
func (n *Neuron) Preactivate(x []float64) float64 {
	sum := n.Bias
	for i, w := range n.Weights {
		sum += w * x[i]
	}
	return sum
}

// Clone returns a deep copy of n.
func (n *Neuron) Clone() *Neuron {
	weights := make([]float64, len(n.Weights))
	copy(weights, n.Weights)
	return &Neuron{Weights: weights, Bias: n.Bias}
}
