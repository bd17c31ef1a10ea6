// Package serialization provides the portable BMLP weight format for saving
// and loading the parameters of nn.Network models.
//
// The format stores only learned parameters. The network's shape is built by
// the caller before loading and is treated as ground truth: any count in the
// file that disagrees with the live network is an error, never a resize.
//
//	Format Structure (all fields little-endian):
//	  [4 bytes: Magic "BMLP"]          (omitted in FormatRaw)
//	  [4 bytes: Version (uint32)]       (omitted in FormatRaw)
//	  [4 bytes: Layer count (uint32)]
//	  per layer:
//	    [4 bytes: Neuron count (uint32)]
//	    per neuron:
//	      [4 bytes: Weight count (uint32)]
//	      [8 bytes each: Weights (IEEE 754 binary64)]
//	      [8 bytes: Bias (IEEE 754 binary64)]
//	  [32 bytes: SHA-256 of all preceding bytes] (version 2 only)
//
// Loading is a single forward pass with no seeking. Failures are reported as
// *Error values that match ErrIO, ErrTruncated, ErrStructureMismatch,
// ErrFormat, ErrRange or ErrChecksumMismatch with errors.Is.
//
// Example usage:
//
//	// Save a model
//	if err := serialization.SaveFile("model.bmlp", net); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load into a network built with the same topology
//	target, _ := nn.NewNetwork(topo)
//	if err := serialization.LoadFile("model.bmlp", target); err != nil {
//	    if errors.Is(err, serialization.ErrStructureMismatch) {
//	        log.Fatal("model was trained with a different topology: ", err)
//	    }
//	    log.Fatal(err)
//	}
package serialization
