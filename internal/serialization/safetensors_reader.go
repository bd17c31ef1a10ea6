package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/mlp/internal/codec"
	"github.com/born-ml/mlp/internal/nn"
)

// SafeTensors dtypes that can be imported.
const (
	SafeTensorsF32 = "F32"
	SafeTensorsF64 = "F64"
)

// maxSafeTensorsHeader bounds the JSON header read from a file.
const maxSafeTensorsHeader = 100 * 1024 * 1024

// SafeTensorsHeader is the JSON header in SafeTensors format.
type SafeTensorsHeader struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorHeader
}

// UnmarshalJSON implements custom JSON unmarshaling for SafeTensorsHeader.
func (h *SafeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	// Every other key names a tensor.
	h.Tensors = make(map[string]SafeTensorHeader, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info SafeTensorHeader
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

// SafeTensorsReader reads tensors from a SafeTensors file.
type SafeTensorsReader struct {
	r          io.ReaderAt
	closer     io.Closer
	size       int64
	header     SafeTensorsHeader
	dataOffset int64 // first byte after the JSON header
}

// NewSafeTensorsReader opens the SafeTensors file at path.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: callers choose which model to import
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r, err := ReadSafeTensors(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

// ReadSafeTensors parses the header of the size-byte SafeTensors image in r.
func ReadSafeTensors(r io.ReaderAt, size int64) (*SafeTensorsReader, error) {
	dec := codec.NewDecoder(io.NewSectionReader(r, 0, size))

	// Header size is a u64 written as two canonical u32 halves.
	lo, err := dec.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	hi, err := dec.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	headerSize := uint64(hi)<<32 | uint64(lo)

	if headerSize > maxSafeTensorsHeader || int64(headerSize) > size-8 {
		return nil, fmt.Errorf("invalid header size: %d", headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if err := dec.ReadBytes(headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header SafeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	return &SafeTensorsReader{
		r:          r,
		size:       size,
		header:     header,
		dataOffset: dec.Offset(),
	}, nil
}

// Close closes the underlying file, if the reader opened one.
func (r *SafeTensorsReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Metadata returns the metadata map from the header.
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns the names of all tensors in the file, sorted.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *SafeTensorsReader) TensorInfo(name string) (*SafeTensorHeader, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("tensor %s not found", name)
	}
	return &info, nil
}

// ReadTensorData reads raw tensor data for a given tensor name.
func (r *SafeTensorsReader) ReadTensorData(name string) ([]byte, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end < start || end > r.size-r.dataOffset {
		return nil, fmt.Errorf("invalid data offsets for tensor %s: [%d, %d]", name, start, end)
	}

	data := make([]byte, end-start)
	if _, err := io.ReadFull(io.NewSectionReader(r.r, r.dataOffset+start, end-start), data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	return data, nil
}

// ReadFloat64s decodes an F64 or F32 tensor as float64 values.
func (r *SafeTensorsReader) ReadFloat64s(name string) ([]float64, []int64, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, nil, err
	}

	count := int64(1)
	for _, d := range info.Shape {
		// No tensor can hold more elements than the file has bytes.
		if d < 0 || (d > 0 && count > r.size/d) {
			return nil, nil, fmt.Errorf("invalid shape for tensor %s: %v", name, info.Shape)
		}
		count *= d
	}

	var width int64
	switch info.DType {
	case SafeTensorsF64:
		width = codec.SizeF64
	case SafeTensorsF32:
		width = codec.SizeU32
	default:
		return nil, nil, fmt.Errorf("unsupported dtype %s for tensor %s", info.DType, name)
	}
	if info.DataOffsets[1]-info.DataOffsets[0] != count*width {
		return nil, nil, fmt.Errorf("tensor %s: %d bytes for shape %v of %s",
			name, info.DataOffsets[1]-info.DataOffsets[0], info.Shape, info.DType)
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, nil, err
	}

	dec := codec.NewDecoder(bytes.NewReader(data))
	values := make([]float64, count)
	for i := range values {
		if info.DType == SafeTensorsF64 {
			values[i], err = dec.ReadF64()
		} else {
			var bits uint32
			bits, err = dec.ReadU32()
			values[i] = float64(math.Float32frombits(bits))
		}
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
		}
	}
	return values, info.Shape, nil
}

func weightTensor(i int) string {
	return fmt.Sprintf("layers.%d.weight", i)
}

func biasTensor(i int) string {
	return fmt.Sprintf("layers.%d.bias", i)
}

func activationKey(i int) string {
	return fmt.Sprintf("layers.%d.activation", i)
}

// Topology reconstructs the network shape from the layer tensors and the
// activations recorded in the metadata. Layers without a recorded
// activation get Identity.
func (r *SafeTensorsReader) Topology() (nn.Topology, error) {
	var topo nn.Topology
	for i := 0; ; i++ {
		info, err := r.TensorInfo(weightTensor(i))
		if err != nil {
			break
		}
		if len(info.Shape) != 2 {
			return nn.Topology{}, fmt.Errorf("%w: tensor %s has shape %v, want [neurons, inputs]",
				nn.ErrShape, weightTensor(i), info.Shape)
		}
		if i == 0 {
			topo.Inputs = int(info.Shape[1])
		}
		act, err := nn.ParseActivation(r.header.Metadata[activationKey(i)])
		if err != nil {
			return nn.Topology{}, fmt.Errorf("layer %d: %w", i, err)
		}
		topo.Layers = append(topo.Layers, nn.LayerSpec{Neurons: int(info.Shape[0]), Activation: act})
	}
	if err := topo.Validate(); err != nil {
		return nn.Topology{}, err
	}
	return topo, nil
}

// Import copies the layer tensors into net.
//
// Every layer needs "layers.<i>.weight" of shape [neurons, inputs] and
// "layers.<i>.bias" of shape [neurons], and the file may hold no further
// layers. A recorded activation that differs from the layer's is a
// structure mismatch. On error net is unchanged.
func (r *SafeTensorsReader) Import(net *nn.Network) error {
	if err := net.Validate(); err != nil {
		return err
	}
	if _, err := r.TensorInfo(weightTensor(net.Len())); err == nil {
		return fmt.Errorf("%w: file has more than %d layers", ErrStructureMismatch, net.Len())
	}

	scratch := net.Clone()
	for i, l := range scratch.Layers {
		if name, ok := r.header.Metadata[activationKey(i)]; ok {
			act, err := nn.ParseActivation(name)
			if err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			if act != l.Activation {
				return fmt.Errorf("%w: layer %d activation: file has %s, network has %s",
					ErrStructureMismatch, i, act, l.Activation)
			}
		}

		weights, shape, err := r.ReadFloat64s(weightTensor(i))
		if err != nil {
			return err
		}
		if len(shape) != 2 || shape[0] != int64(l.Len()) || shape[1] != int64(l.Inputs()) {
			return fmt.Errorf("%w: tensor %s has shape %v, network needs [%d %d]",
				ErrStructureMismatch, weightTensor(i), shape, l.Len(), l.Inputs())
		}
		biases, shape, err := r.ReadFloat64s(biasTensor(i))
		if err != nil {
			return err
		}
		if len(shape) != 1 || shape[0] != int64(l.Len()) {
			return fmt.Errorf("%w: tensor %s has shape %v, network needs [%d]",
				ErrStructureMismatch, biasTensor(i), shape, l.Len())
		}

		for j, neuron := range l.Neurons {
			copy(neuron.Weights, weights[j*len(neuron.Weights):])
			neuron.Bias = biases[j]
		}
	}
	return net.CopyParams(scratch)
}

// ImportSafeTensorsFile loads the SafeTensors file at path into net.
func ImportSafeTensorsFile(path string, net *nn.Network) error {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Import(net)
}
