// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization saves and loads network parameters in the BMLP
// weight file format.
//
// A weight file holds, in order, every layer's neuron count and every
// neuron's weight count, weights and bias. Counts are 32-bit and values are
// IEEE 754 binary64, all little-endian regardless of the host, so a file
// written on one machine loads bit-for-bit on any other.
//
// Loading never resizes the target network: it must be built from the same
// topology the file was saved from, and any disagreement is reported as
// ErrStructureMismatch.
//
// Example:
//
//	if err := serialization.SaveFile("model.bmlp", net); err != nil {
//	    log.Fatal(err)
//	}
//
//	restored, _ := nn.NewNetwork(net.Topology())
//	if err := serialization.LoadFile("model.bmlp", restored); err != nil {
//	    log.Fatal(err)
//	}
package serialization

import (
	"io"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/serialization"
)

// Errors. Every *Error matches exactly one of ErrIO, ErrTruncated,
// ErrStructureMismatch, ErrFormat, ErrRange and ErrChecksumMismatch.
var (
	ErrIO                = serialization.ErrIO
	ErrTruncated         = serialization.ErrTruncated
	ErrStructureMismatch = serialization.ErrStructureMismatch
	ErrFormat            = serialization.ErrFormat
	ErrRange             = serialization.ErrRange
	ErrChecksumMismatch  = serialization.ErrChecksumMismatch

	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrTrailingData       = serialization.ErrTrailingData
	ErrUnsupportedFormat  = serialization.ErrUnsupportedFormat
)

// Error describes a failed save, load or inspect.
type Error = serialization.Error

// Kind classifies a serialization failure.
type Kind = serialization.Kind

// Failure kinds.
const (
	KindIO        = serialization.KindIO
	KindTruncated = serialization.KindTruncated
	KindMismatch  = serialization.KindMismatch
	KindFormat    = serialization.KindFormat
	KindRange     = serialization.KindRange
	KindCorrupt   = serialization.KindCorrupt
)

// Format selects the on-disk layout.
type Format = serialization.Format

// Supported layouts.
const (
	FormatRaw     = serialization.FormatRaw
	FormatV1      = serialization.FormatV1
	FormatV2      = serialization.FormatV2
	DefaultFormat = serialization.DefaultFormat
)

// Option configures Save, Load and Inspect.
type Option = serialization.Option

// WithFormat selects the layout.
func WithFormat(f Format) Option {
	return serialization.WithFormat(f)
}

// ParseFormat converts "raw", "v1" or "v2" to a Format.
func ParseFormat(s string) (Format, error) {
	return serialization.ParseFormat(s)
}

// Save writes the parameters of net to w.
func Save(w io.Writer, net *nn.Network, opts ...Option) error {
	return serialization.Save(w, net, opts...)
}

// Load reads parameters from r into net, which must already have the
// topology the file was saved from.
func Load(r io.Reader, net *nn.Network, opts ...Option) error {
	return serialization.Load(r, net, opts...)
}

// SaveFile writes net to path atomically.
func SaveFile(path string, net *nn.Network, opts ...Option) error {
	return serialization.SaveFile(path, net, opts...)
}

// LoadFile loads the model at path into net, leaving net unchanged on error.
func LoadFile(path string, net *nn.Network, opts ...Option) error {
	return serialization.LoadFile(path, net, opts...)
}

// Summary describes a weight file without reference to a target network.
type Summary = serialization.Summary

// LayerSummary describes one layer found in a weight file.
type LayerSummary = serialization.LayerSummary

// Inspect decodes the structure of a weight file from r.
func Inspect(r io.Reader, opts ...Option) (*Summary, error) {
	return serialization.Inspect(r, opts...)
}

// InspectFile is Inspect on the file at path.
func InspectFile(path string, opts ...Option) (*Summary, error) {
	return serialization.InspectFile(path, opts...)
}

// WriteSafeTensors exports net in SafeTensors format with F64 tensors.
func WriteSafeTensors(w io.Writer, net *nn.Network, metadata map[string]string) error {
	return serialization.WriteSafeTensors(w, net, metadata)
}

// ExportSafeTensorsFile writes net to path in SafeTensors format.
func ExportSafeTensorsFile(path string, net *nn.Network, metadata map[string]string) error {
	return serialization.ExportSafeTensorsFile(path, net, metadata)
}

// SafeTensorsReader reads F64 and F32 tensors from a SafeTensors file.
type SafeTensorsReader = serialization.SafeTensorsReader

// NewSafeTensorsReader opens the SafeTensors file at path.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return serialization.NewSafeTensorsReader(path)
}

// ImportSafeTensorsFile loads the layer tensors in the SafeTensors file at
// path into net, leaving net unchanged on error.
func ImportSafeTensorsFile(path string, net *nn.Network) error {
	return serialization.ImportSafeTensorsFile(path, net)
}
