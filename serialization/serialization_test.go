// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package serialization_test

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/born-ml/mlp/nn"
	"github.com/born-ml/mlp/optim"
	"github.com/born-ml/mlp/serialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublicAPI trains through the public packages, saves, and restores.
func TestPublicAPI(t *testing.T) {
	topo := nn.Topology{
		Inputs: 2,
		Layers: []nn.LayerSpec{
			{Neurons: 3, Activation: nn.Tanh},
			{Neurons: 1, Activation: nn.Identity},
		},
	}
	net, err := nn.NewNetwork(topo)
	require.NoError(t, err)
	nn.XavierInit(net, rand.New(rand.NewSource(4)))

	sgd, err := optim.NewSGD(net, optim.SGDConfig{LR: 0.05})
	require.NoError(t, err)
	_, err = optim.Fit(sgd, [][]float64{{0, 1}, {1, 0}}, [][]float64{{1}, {-1}}, 10, nil, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.bmlp")
	require.NoError(t, serialization.SaveFile(path, net, serialization.WithFormat(serialization.FormatV2)))

	summary, err := serialization.InspectFile(path)
	require.NoError(t, err)
	assert.Equal(t, serialization.FormatV2, summary.Format)
	assert.Equal(t, net.NumParams(), summary.Params)

	restored, err := nn.NewNetwork(topo)
	require.NoError(t, err)
	require.NoError(t, serialization.LoadFile(path, restored))

	want, err := net.Forward([]float64{0.25, -0.5})
	require.NoError(t, err)
	got, err := restored.Forward([]float64{0.25, -0.5})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPublicErrors(t *testing.T) {
	small, err := nn.NewNetwork(nn.Topology{Inputs: 2, Layers: []nn.LayerSpec{{Neurons: 2}}})
	require.NoError(t, err)
	large, err := nn.NewNetwork(nn.Topology{Inputs: 2, Layers: []nn.LayerSpec{{Neurons: 3}}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, serialization.Save(&buf, small))

	err = serialization.Load(bytes.NewReader(buf.Bytes()), large)
	assert.ErrorIs(t, err, serialization.ErrStructureMismatch)

	var serr *serialization.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, serialization.KindMismatch, serr.Kind)

	err = serialization.Load(bytes.NewReader(buf.Bytes()[:10]), small)
	assert.ErrorIs(t, err, serialization.ErrTruncated)
}

func TestPublicSafeTensors(t *testing.T) {
	topo := nn.Topology{Inputs: 3, Layers: []nn.LayerSpec{{Neurons: 2, Activation: nn.ReLU}}}
	net, err := nn.NewNetwork(topo)
	require.NoError(t, err)
	nn.XavierInit(net, rand.New(rand.NewSource(9)))

	path := filepath.Join(t.TempDir(), "model.safetensors")
	require.NoError(t, serialization.ExportSafeTensorsFile(path, net, nil))

	r, err := serialization.NewSafeTensorsReader(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Topology()
	require.NoError(t, err)
	assert.True(t, got.Equal(topo))

	restored, err := nn.NewNetwork(got)
	require.NoError(t, err)
	require.NoError(t, serialization.ImportSafeTensorsFile(path, restored))
	assert.Equal(t, net.Layers[0].Neurons[1].Weights, restored.Layers[0].Neurons[1].Weights)
}
