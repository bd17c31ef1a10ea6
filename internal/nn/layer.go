package nn

// Layer is an ordered list of neurons that share one activation.
//
// All neurons of a layer are expected to have the same number of weights.
// Constructors guarantee it; Network.Validate checks it for hand-built layers.
type Layer struct {
	Neurons    []*Neuron
	Activation Activation
}

// NewLayer creates a layer of neurons, each with inputs zero weights.
func NewLayer(inputs, neurons int, act Activation) *Layer {
	l := &Layer{
		Neurons:    make([]*Neuron, neurons),
		Activation: act,
	}
	for i := range l.Neurons {
		l.Neurons[i] = NewNeuron(inputs)
	}
	return l
}

// Len returns the number of neurons.
func (l *Layer) Len() int {
	return len(l.Neurons)
}

// Inputs returns the weight count of the first neuron, or 0 for an empty layer.
func (l *Layer) Inputs() int {
	if len(l.Neurons) == 0 {
		return 0
	}
	return l.Neurons[0].Inputs()
}

// Preactivate writes each neuron's Weights·x + Bias into z.
func (l *Layer) Preactivate(z, x []float64) {
	for j, n := range l.Neurons {
		z[j] = n.Preactivate(x)
	}
}

// Forward returns the activated outputs of the layer for input x.
func (l *Layer) Forward(x []float64) []float64 {
	out := make([]float64, len(l.Neurons))
	l.Preactivate(out, x)
	l.Activation.Apply(out, out)
	return out
}

// Clone returns a deep copy of l.
func (l *Layer) Clone() *Layer {
	c := &Layer{
		Neurons:    make([]*Neuron, len(l.Neurons)),
		Activation: l.Activation,
	}
	for i, n := range l.Neurons {
		c.Neurons[i] = n.Clone()
	}
	return c
}
