package serialization

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/mlp/internal/codec"
	"github.com/born-ml/mlp/internal/nn"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// safeTensor is a named F64 tensor ready to be written.
type safeTensor struct {
	name  string
	shape []int64
	data  func(enc *codec.Encoder) error
	count int64
}

// WriteSafeTensors exports net in SafeTensors format.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// Each layer i becomes "layers.<i>.weight" with shape [neurons, inputs] and
// "layers.<i>.bias" with shape [neurons], both F64. Activations are recorded
// in the "__metadata__" entry as "layers.<i>.activation". Tensors are
// written in alphabetical order by name. Layers whose neurons have different
// weight counts cannot be represented and are rejected.
func WriteSafeTensors(w io.Writer, net *nn.Network, metadata map[string]string) error {
	tensors, err := collectSafeTensors(net)
	if err != nil {
		return err
	}
	sort.Slice(tensors, func(i, j int) bool {
		return tensors[i].name < tensors[j].name
	})

	meta := make(map[string]string, len(metadata)+len(net.Layers))
	for k, v := range metadata {
		meta[k] = v
	}
	for i, l := range net.Layers {
		meta[activationKey(i)] = l.Activation.String()
	}

	header := make(map[string]interface{}, len(tensors)+1)
	header["__metadata__"] = meta

	// Calculate data offsets for each tensor
	var currentOffset int64
	for _, t := range tensors {
		size := t.count * codec.SizeF64
		header[t.name] = SafeTensorHeader{
			DType:       "F64",
			Shape:       t.shape,
			DataOffsets: [2]int64{currentOffset, currentOffset + size},
		}
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	enc := codec.NewEncoder(w)

	// Header size is a u64; write it as two canonical u32 halves.
	headerSize := uint64(len(headerJSON))
	if err := enc.WriteU32(uint32(headerSize)); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if err := enc.WriteU32(uint32(headerSize >> 32)); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}

	if err := enc.WriteBytes(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, t := range tensors {
		if err := t.data(enc); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", t.name, err)
		}
	}
	return nil
}

func collectSafeTensors(net *nn.Network) ([]safeTensor, error) {
	tensors := make([]safeTensor, 0, 2*len(net.Layers))
	for i, l := range net.Layers {
		inputs := l.Inputs()
		for j, neuron := range l.Neurons {
			if len(neuron.Weights) != inputs {
				return nil, fmt.Errorf("%w: layer %d neuron %d has %d weights, neuron 0 has %d",
					nn.ErrShape, i, j, len(neuron.Weights), inputs)
			}
		}

		layer := l
		neurons := int64(l.Len())
		tensors = append(tensors,
			safeTensor{
				name:  weightTensor(i),
				shape: []int64{neurons, int64(inputs)},
				count: neurons * int64(inputs),
				data: func(enc *codec.Encoder) error {
					for _, neuron := range layer.Neurons {
						for _, w := range neuron.Weights {
							if err := enc.WriteF64(w); err != nil {
								return err
							}
						}
					}
					return nil
				},
			},
			safeTensor{
				name:  biasTensor(i),
				shape: []int64{neurons},
				count: neurons,
				data: func(enc *codec.Encoder) error {
					for _, neuron := range layer.Neurons {
						if err := enc.WriteF64(neuron.Bias); err != nil {
							return err
						}
					}
					return nil
				},
			},
		)
	}
	return tensors, nil
}

// ExportSafeTensorsFile writes net to path in SafeTensors format.
func ExportSafeTensorsFile(path string, net *nn.Network, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close; errors are caught by Sync below
	}()

	bw := bufio.NewWriter(file)
	if err := WriteSafeTensors(bw, net, metadata); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}
	return nil
}
