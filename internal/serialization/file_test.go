package serialization

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveFileLoadFile(t *testing.T) {
	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.bmlp")
			net := randomNetwork(t, 3, 3, 4, 2)

			require.NoError(t, SaveFile(path, net, WithFormat(format)))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

			target := mustNetwork(t, 3, 4, 2)
			require.NoError(t, LoadFile(path, target, WithFormat(format)))
			requireSameBits(t, net, target)
		})
	}
}

func TestSaveFile_MatchesSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bmlp")
	net := randomNetwork(t, 4, 2, 3, 1)

	require.NoError(t, SaveFile(path, net))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, save(t, net), data)
}

func TestSaveFile_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.bmlp")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o600))

	require.NoError(t, SaveFile(path, twoNeuronNetwork()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "model.bmlp", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, save(t, twoNeuronNetwork()), data)
}

func TestSaveFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "model.bmlp")

	err := SaveFile(path, twoNeuronNetwork())

	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveFile_FailedSaveKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.bmlp")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o600))

	err := SaveFile(path, twoNeuronNetwork(), WithFormat(Format(9)))
	require.ErrorIs(t, err, ErrFormat)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old contents", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadFile_MissingFile(t *testing.T) {
	err := LoadFile(filepath.Join(t.TempDir(), "nope.bmlp"), mustNetwork(t, 2, 2))

	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_AtomicOnFailure(t *testing.T) {
	dir := t.TempDir()

	good := save(t, randomNetwork(t, 8, 2, 2))
	// Second neuron's weight count replaced by 5.
	mismatch := append([]byte(nil), good...)
	mismatch[44] = 5

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"truncated", good[:len(good)-3], ErrTruncated},
		{"mismatch in second neuron", mismatch, ErrStructureMismatch},
		{"trailing data", append(append([]byte(nil), good...), 0), ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".bmlp")
			require.NoError(t, os.WriteFile(path, tt.data, 0o600))

			target := mustNetwork(t, 2, 2)
			nn.Fill(target, 42)
			before := target.Clone()

			err := LoadFile(path, target)

			require.ErrorIs(t, err, tt.wantErr)
			requireSameBits(t, before, target)
		})
	}
}

func TestLoadFile_TrailingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bmlp")
	data := append(save(t, twoNeuronNetwork()), "junk"...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	err := LoadFile(path, mustNetwork(t, 2, 2))

	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, err, ErrTrailingData)
	assert.Equal(t, int64(72), asError(t, err).Offset)

	// Load on a stream accepts the same bytes.
	assert.NoError(t, Load(bytes.NewReader(data), mustNetwork(t, 2, 2)))
}

func TestInspect(t *testing.T) {
	net := randomNetwork(t, 2, 3, 4, 2)

	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			data := save(t, net, WithFormat(format))

			summary, err := Inspect(bytes.NewReader(data), WithFormat(format))
			require.NoError(t, err)

			assert.Equal(t, format, summary.Format)
			assert.Equal(t, []LayerSummary{
				{Neurons: 4, Inputs: 3, Uniform: true},
				{Neurons: 2, Inputs: 4, Uniform: true},
			}, summary.Layers)
			assert.Equal(t, net.NumParams(), summary.Params)
			assert.Equal(t, int64(len(data)), summary.Size)

			if format == FormatV2 {
				assert.Len(t, summary.Checksum, 2*ChecksumSize)
			} else {
				assert.Empty(t, summary.Checksum)
			}

			topo, err := summary.Topology()
			require.NoError(t, err)
			assert.Equal(t, "3-4(identity)-2(identity)", topo.String())
		})
	}
}

func TestInspect_DetectsVersion(t *testing.T) {
	data := save(t, twoNeuronNetwork(), WithFormat(FormatV2))

	summary, err := Inspect(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, FormatV2, summary.Format)
}

func TestInspect_Ragged(t *testing.T) {
	src := twoNeuronNetwork()
	src.Layers[0].Neurons[1].Weights = []float64{1, 2, 3}

	summary, err := Inspect(bytes.NewReader(save(t, src)))
	require.NoError(t, err)
	assert.False(t, summary.Layers[0].Uniform)
	assert.Equal(t, 7, summary.Params)

	_, err = summary.Topology()
	assert.ErrorIs(t, err, nn.ErrShape)
}

func TestInspect_Errors(t *testing.T) {
	data := save(t, twoNeuronNetwork(), WithFormat(FormatV2))

	_, err := Inspect(bytes.NewReader(data[:40]))
	assert.ErrorIs(t, err, ErrTruncated)

	tampered := append([]byte(nil), data...)
	tampered[30] ^= 0x80
	_, err = Inspect(bytes.NewReader(tampered))
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = Inspect(bytes.NewReader([]byte("GGUF\x03\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestInspect_HugeCountDoesNotAllocate(t *testing.T) {
	// A header claiming 2^32-1 layers followed by nothing.
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	_, err := Inspect(bytes.NewReader(data), WithFormat(FormatRaw))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestInspectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bmlp")
	require.NoError(t, SaveFile(path, twoNeuronNetwork()))

	summary, err := InspectFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(72), summary.Size)
	assert.Equal(t, 6, summary.Params)

	require.NoError(t, os.WriteFile(path, append(save(t, twoNeuronNetwork()), 1), 0o600))
	_, err = InspectFile(path)
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestSummaryTopology_Empty(t *testing.T) {
	_, err := (&Summary{}).Topology()
	assert.ErrorIs(t, err, nn.ErrShape)
}
