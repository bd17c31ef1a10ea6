package nn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrShape is returned when a network, topology or input has the wrong shape.
var ErrShape = errors.New("shape mismatch")

// LayerSpec describes one layer of a Topology.
type LayerSpec struct {
	Neurons    int        `toml:"neurons"`
	Activation Activation `toml:"activation"`
}

// Topology is the shape of a network: the input width and, per layer, the
// neuron count and activation. Each layer's neurons take the previous layer's
// outputs (or the network inputs, for layer 0).
//
// Example (TOML):
//
//	inputs = 2
//
//	[[layers]]
//	neurons = 4
//	activation = "tanh"
//
//	[[layers]]
//	neurons = 1
//	activation = "sigmoid"
type Topology struct {
	Inputs int         `toml:"inputs"`
	Layers []LayerSpec `toml:"layers"`
}

// Validate checks that the topology describes a buildable network.
func (t Topology) Validate() error {
	if t.Inputs <= 0 {
		return fmt.Errorf("%w: inputs must be positive, got %d", ErrShape, t.Inputs)
	}
	if len(t.Layers) == 0 {
		return fmt.Errorf("%w: topology has no layers", ErrShape)
	}
	for i, l := range t.Layers {
		if l.Neurons <= 0 {
			return fmt.Errorf("%w: layer %d: neurons must be positive, got %d", ErrShape, i, l.Neurons)
		}
		if !l.Activation.Valid() {
			return fmt.Errorf("layer %d: unknown activation %d", i, uint8(l.Activation))
		}
	}
	return nil
}

// Outputs returns the neuron count of the last layer.
func (t Topology) Outputs() int {
	if len(t.Layers) == 0 {
		return t.Inputs
	}
	return t.Layers[len(t.Layers)-1].Neurons
}

// Equal reports whether t and o describe the same shape and activations.
func (t Topology) Equal(o Topology) bool {
	if t.Inputs != o.Inputs || len(t.Layers) != len(o.Layers) {
		return false
	}
	for i := range t.Layers {
		if t.Layers[i] != o.Layers[i] {
			return false
		}
	}
	return true
}

// String renders the topology compactly, e.g. "2-4(tanh)-1(sigmoid)".
func (t Topology) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(t.Inputs))
	for _, l := range t.Layers {
		fmt.Fprintf(&b, "-%d(%s)", l.Neurons, l.Activation)
	}
	return b.String()
}
