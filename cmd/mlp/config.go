package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/serialization"
)

// globalOptions apply to every command.
type globalOptions struct {
	LogLevel string `long:"loglevel" default:"info" description:"Logging level {debug, info, warn, error}"`
	LogFile  string `long:"logfile" description:"Also write logs to this file, rotated by size"`
	NoColor  bool   `long:"nocolor" description:"Disable colored log output"`
}

// formatFlag parses --format values.
type formatFlag struct {
	serialization.Format
}

// UnmarshalFlag implements flags.Unmarshaler.
func (f *formatFlag) UnmarshalFlag(value string) error {
	format, err := serialization.ParseFormat(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return err
	}
	f.Format = format
	return nil
}

// MarshalFlag implements flags.Marshaler.
func (f formatFlag) MarshalFlag() (string, error) {
	return f.Format.String(), nil
}

func (f formatFlag) option() serialization.Option {
	return serialization.WithFormat(f.Format)
}

// loadTopology reads a TOML topology file.
func loadTopology(path string) (nn.Topology, error) {
	var topo nn.Topology
	md, err := toml.DecodeFile(path, &topo)
	if err != nil {
		return nn.Topology{}, fmt.Errorf("failed to read topology %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nn.Topology{}, fmt.Errorf("topology %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := topo.Validate(); err != nil {
		return nn.Topology{}, fmt.Errorf("topology %s: %w", path, err)
	}
	return topo, nil
}

// buildNetwork creates an all-zero network from the topology file at path.
func buildNetwork(path string) (*nn.Network, error) {
	topo, err := loadTopology(path)
	if err != nil {
		return nil, err
	}
	return nn.NewNetwork(topo)
}

// loadSamples reads training data from a CSV file. Every record holds
// inputs values followed by outputs targets. Lines starting with '#' are
// comments, and a first line that is not numeric is treated as a header.
func loadSamples(path string, inputs, outputs int) (xs, ys [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	xs, ys, err = readSamples(f, inputs, outputs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return xs, ys, nil
}

func readSamples(r io.Reader, inputs, outputs int) (xs, ys [][]float64, err error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = inputs + outputs
	cr.ReuseRecord = true

	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		row, err := parseFloats(record)
		if err != nil {
			if first {
				first = false
				continue
			}
			line, _ := cr.FieldPos(0)
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		first = false
		xs = append(xs, row[:inputs])
		ys = append(ys, row[inputs:])
	}
	if len(xs) == 0 {
		return nil, nil, errors.New("no samples")
	}
	return xs, ys, nil
}

// parseVector parses a comma-separated list of numbers.
func parseVector(s string) ([]float64, error) {
	return parseFloats(strings.Split(s, ","))
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
