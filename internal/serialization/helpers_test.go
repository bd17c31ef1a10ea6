package serialization

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/stretchr/testify/require"
)

// twoNeuronNetwork is one layer of two neurons:
// A = weights [1.5, -2.25], bias 0.5; B = weights [0.0, 3.0], bias -1.0.
func twoNeuronNetwork() *nn.Network {
	return &nn.Network{
		Inputs: 2,
		Layers: []*nn.Layer{{
			Activation: nn.Identity,
			Neurons: []*nn.Neuron{
				{Weights: []float64{1.5, -2.25}, Bias: 0.5},
				{Weights: []float64{0.0, 3.0}, Bias: -1.0},
			},
		}},
	}
}

func mustNetwork(t *testing.T, inputs int, layers ...int) *nn.Network {
	t.Helper()
	topo := nn.Topology{Inputs: inputs}
	for _, n := range layers {
		topo.Layers = append(topo.Layers, nn.LayerSpec{Neurons: n, Activation: nn.Tanh})
	}
	net, err := nn.NewNetwork(topo)
	require.NoError(t, err)
	return net
}

func randomNetwork(t *testing.T, seed int64, inputs int, layers ...int) *nn.Network {
	t.Helper()
	net := mustNetwork(t, inputs, layers...)
	nn.XavierInit(net, rand.New(rand.NewSource(seed)))
	rng := rand.New(rand.NewSource(seed + 1))
	for _, l := range net.Layers {
		for _, neuron := range l.Neurons {
			neuron.Bias = rng.NormFloat64()
		}
	}
	return net
}

func save(t *testing.T, net *nn.Network, opts ...Option) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, net, opts...))
	return buf.Bytes()
}

// requireSameBits fails unless every weight and bias of got has the exact
// bit pattern of want.
func requireSameBits(t *testing.T, want, got *nn.Network) {
	t.Helper()
	require.Len(t, got.Layers, len(want.Layers))
	for i, l := range want.Layers {
		require.Len(t, got.Layers[i].Neurons, len(l.Neurons), "layer %d", i)
		for j, neuron := range l.Neurons {
			g := got.Layers[i].Neurons[j]
			require.Len(t, g.Weights, len(neuron.Weights), "layer %d neuron %d", i, j)
			for k, w := range neuron.Weights {
				require.Equal(t, math.Float64bits(w), math.Float64bits(g.Weights[k]),
					"layer %d neuron %d weight %d", i, j, k)
			}
			require.Equal(t, math.Float64bits(neuron.Bias), math.Float64bits(g.Bias),
				"layer %d neuron %d bias", i, j)
		}
	}
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	var e *Error
	require.True(t, errors.As(err, &e), "expected *Error, got %T: %v", err, err)
	return e
}

// limitWriter accepts n bytes and then fails.
type limitWriter struct {
	n   int
	err error
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if len(p) <= w.n {
		w.n -= len(p)
		return len(p), nil
	}
	written := w.n
	w.n = 0
	return written, w.err
}

// errReader returns data and then err instead of io.EOF.
type errReader struct {
	data []byte
	err  error
}

func (r *errReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}
