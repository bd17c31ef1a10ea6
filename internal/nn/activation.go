package nn

import (
	"fmt"
	"math"
	"strings"
)

// LeakySlope is the negative-side slope of LeakyReLU.
const LeakySlope = 0.01

// Activation identifies the function a layer applies to its pre-activations.
//
// The activation is part of the layer's configuration, not of its learned
// parameters, so it is not stored in weight files.
type Activation uint8

// Supported activations.
const (
	Identity  Activation = iota // f(x) = x
	Sigmoid                     // σ(x) = 1 / (1 + exp(-x))
	Tanh                        // tanh(x)
	ReLU                        // max(0, x)
	LeakyReLU                   // x if x > 0, else LeakySlope*x
	Softmax                     // exp(x_i) / Σ exp(x_j), across the layer
)

var activationNames = [...]string{
	Identity:  "identity",
	Sigmoid:   "sigmoid",
	Tanh:      "tanh",
	ReLU:      "relu",
	LeakyReLU: "leaky_relu",
	Softmax:   "softmax",
}

// String returns the lower-case name of the activation.
func (a Activation) String() string {
	if int(a) < len(activationNames) {
		return activationNames[a]
	}
	return fmt.Sprintf("activation(%d)", uint8(a))
}

// Valid reports whether a is a known activation.
func (a Activation) Valid() bool {
	return int(a) < len(activationNames)
}

// ParseActivation converts a name such as "relu" or "leaky_relu" to an Activation.
// An empty name selects Identity.
func ParseActivation(s string) (Activation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "linear" {
		return Identity, nil
	}
	name = strings.ReplaceAll(name, "-", "_")
	for i, n := range activationNames {
		if n == name {
			return Activation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown activation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Activation) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("unknown activation %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Activation) UnmarshalText(text []byte) error {
	parsed, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Apply writes f(z) into out. out and z must have the same length and may alias.
func (a Activation) Apply(out, z []float64) {
	switch a {
	case Sigmoid:
		for i, v := range z {
			out[i] = sigmoid(v)
		}
	case Tanh:
		for i, v := range z {
			out[i] = math.Tanh(v)
		}
	case ReLU:
		for i, v := range z {
			out[i] = math.Max(0, v)
		}
	case LeakyReLU:
		for i, v := range z {
			if v > 0 {
				out[i] = v
			} else {
				out[i] = LeakySlope * v
			}
		}
	case Softmax:
		softmax(out, z)
	default:
		copy(out, z)
	}
}

// Backward converts the gradient with respect to a layer's outputs into the
// gradient with respect to its pre-activations.
//
// z holds the pre-activations and out the values Apply produced from them.
// dz may alias grad.
func (a Activation) Backward(dz, z, out, grad []float64) {
	switch a {
	case Sigmoid:
		for i := range grad {
			dz[i] = grad[i] * out[i] * (1 - out[i])
		}
	case Tanh:
		for i := range grad {
			dz[i] = grad[i] * (1 - out[i]*out[i])
		}
	case ReLU:
		for i := range grad {
			if z[i] > 0 {
				dz[i] = grad[i]
			} else {
				dz[i] = 0
			}
		}
	case LeakyReLU:
		for i := range grad {
			if z[i] > 0 {
				dz[i] = grad[i]
			} else {
				dz[i] = LeakySlope * grad[i]
			}
		}
	case Softmax:
		// Jacobian-vector product: dz_i = s_i * (g_i - Σ_j g_j s_j)
		var dot float64
		for j := range grad {
			dot += grad[j] * out[j]
		}
		for i := range grad {
			dz[i] = out[i] * (grad[i] - dot)
		}
	default:
		copy(dz, grad)
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softmax is shifted by the maximum for numerical stability.
func softmax(out, z []float64) {
	if len(z) == 0 {
		return
	}
	maxVal := z[0]
	for _, v := range z[1:] {
		maxVal = math.Max(maxVal, v)
	}
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxVal)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
}
