package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/born-ml/mlp/internal/serialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--nocolor", "--loglevel=error"}, args...), &stdout, &stderr)
	return code, stdout.String()
}

func TestRun_Version(t *testing.T) {
	code, out := runCLI(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "mlp "+version+"\n", out)
}

func TestRun_Usage(t *testing.T) {
	code, _ := runCLI(t)
	assert.Equal(t, exitUsage, code)

	code, _ = runCLI(t, "init", "-o", "x.bmlp")
	assert.Equal(t, exitUsage, code, "missing --topology")

	code, out := runCLI(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "verify")
}

func TestRun_InitInspectVerify(t *testing.T) {
	dir := t.TempDir()
	topo := writeFile(t, dir, "xor.toml", xorTopology)
	model := filepath.Join(dir, "xor.bmlp")

	code, _ := runCLI(t, "init", "-t", topo, "-o", model, "--format", "v2", "--seed", "7")
	require.Equal(t, exitOK, code)

	code, out := runCLI(t, "inspect", model)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "format:   v2")
	assert.Contains(t, out, "params:   17")
	assert.Contains(t, out, "layer 0:  4 neurons x 2 weights")
	assert.Contains(t, out, "shape:    2-4-1")
	assert.Contains(t, out, "checksum: ")

	code, out = runCLI(t, "inspect", "--dump", model)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "serialization.Summary")

	code, out = runCLI(t, "verify", "-t", topo, model)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "ok: ")
}

func TestRun_VerifyExitCodes(t *testing.T) {
	dir := t.TempDir()
	topo := writeFile(t, dir, "xor.toml", xorTopology)
	wide := writeFile(t, dir, "wide.toml", strings.Replace(xorTopology, "neurons = 4", "neurons = 5", 1))
	model := filepath.Join(dir, "xor.bmlp")

	code, _ := runCLI(t, "init", "-t", topo, "-o", model, "--format", "v2")
	require.Equal(t, exitOK, code)

	data, err := os.ReadFile(model)
	require.NoError(t, err)

	truncated := writeFile(t, dir, "truncated.bmlp", string(data[:len(data)-10]))
	tampered := append([]byte(nil), data...)
	tampered[30] ^= 0x40
	corrupt := writeFile(t, dir, "corrupt.bmlp", string(tampered))
	notModel := writeFile(t, dir, "notes.txt", "hello, world")

	tests := []struct {
		name  string
		topo  string
		model string
		want  int
	}{
		{"wrong topology", wide, model, exitMismatch},
		{"truncated", topo, truncated, exitTruncated},
		{"checksum", topo, corrupt, exitCorrupt},
		{"not a weight file", topo, notModel, exitFormat},
		{"missing", topo, filepath.Join(dir, "missing.bmlp"), exitIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runCLI(t, "verify", "-t", tt.topo, tt.model)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRun_TrainPredictExport(t *testing.T) {
	dir := t.TempDir()
	topo := writeFile(t, dir, "xor.toml", xorTopology)
	data := writeFile(t, dir, "xor.csv", "x1,x2,y\n0,0,0\n0,1,1\n1,0,1\n1,1,0\n")
	model := filepath.Join(dir, "xor.bmlp")

	code, _ := runCLI(t, "train", "-t", topo, "-d", data, "-o", model, "--epochs", "20", "--lr", "0.5")
	require.Equal(t, exitOK, code)

	// Resume training from the saved weights with Adam.
	resumed := filepath.Join(dir, "resumed.bmlp")
	code, _ = runCLI(t, "train", "-t", topo, "-d", data, "-m", model, "-o", resumed,
		"--epochs", "5", "--optimizer", "adam", "--lr", "0.01", "--noshuffle")
	require.Equal(t, exitOK, code)

	code, out := runCLI(t, "predict", "-t", topo, "-m", resumed, "0,0", "0,1", "1,0", "1,1")
	require.Equal(t, exitOK, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		require.NoError(t, err)
		assert.True(t, v > 0 && v < 1, "sigmoid output %v", v)
	}

	code, _ = runCLI(t, "predict", "-t", topo, "-m", resumed, "1,2,3")
	assert.Equal(t, exitFailure, code)

	st := filepath.Join(dir, "xor.safetensors")
	code, _ = runCLI(t, "export", "-t", topo, "-m", resumed, "-o", st)
	require.Equal(t, exitOK, code)

	info, err := os.Stat(st)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(8+17*8))
}

func TestRun_ExportImport(t *testing.T) {
	dir := t.TempDir()
	topo := writeFile(t, dir, "xor.toml", xorTopology)
	wide := writeFile(t, dir, "wide.toml", strings.Replace(xorTopology, "neurons = 4", "neurons = 5", 1))
	model := filepath.Join(dir, "xor.bmlp")
	st := filepath.Join(dir, "xor.safetensors")

	code, _ := runCLI(t, "init", "-t", topo, "-o", model, "--seed", "3")
	require.Equal(t, exitOK, code)
	code, _ = runCLI(t, "export", "-t", topo, "-m", model, "-o", st)
	require.Equal(t, exitOK, code)

	// Without a topology the shape and activations come from the tensors.
	imported := filepath.Join(dir, "imported.bmlp")
	code, _ = runCLI(t, "import", "-i", st, "-o", imported)
	require.Equal(t, exitOK, code)

	want, err := os.ReadFile(model)
	require.NoError(t, err)
	got, err := os.ReadFile(imported)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	code, _ = runCLI(t, "import", "-i", st, "-t", topo, "-o", imported, "--format", "v2")
	require.Equal(t, exitOK, code)
	code, _ = runCLI(t, "verify", "-t", topo, "--format", "v2", imported)
	assert.Equal(t, exitOK, code)

	code, _ = runCLI(t, "import", "-i", st, "-t", wide, "-o", imported)
	assert.Equal(t, exitMismatch, code)
}

func TestRun_RawFormat(t *testing.T) {
	dir := t.TempDir()
	topo := writeFile(t, dir, "xor.toml", xorTopology)
	model := filepath.Join(dir, "xor.raw")

	code, _ := runCLI(t, "init", "-t", topo, "-o", model, "--format", "raw")
	require.Equal(t, exitOK, code)

	code, _ = runCLI(t, "verify", "-t", topo, model)
	assert.Equal(t, exitFormat, code, "raw files need --format raw")

	code, _ = runCLI(t, "verify", "-t", topo, "--format", "raw", model)
	assert.Equal(t, exitOK, code)
}

func TestRun_LogFile(t *testing.T) {
	dir := t.TempDir()
	topo := writeFile(t, dir, "xor.toml", xorTopology)
	logFile := filepath.Join(dir, "logs", "mlp.log")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--nocolor", "--logfile", logFile, "init", "-t", topo, "-o", filepath.Join(dir, "m.bmlp")},
		&stdout, &stderr)
	require.Equal(t, exitOK, code)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Created weight file")
	assert.Contains(t, string(data), "params=17")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitFailure, exitCode(assert.AnError))
	assert.Equal(t, exitRange, exitCode(&serialization.Error{Kind: serialization.KindRange}))
	assert.Equal(t, exitMismatch, exitCode(fmt.Errorf("%w: layer 0", serialization.ErrStructureMismatch)))
}
