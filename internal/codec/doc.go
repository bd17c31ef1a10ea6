// Package codec reads and writes the fixed-width primitives of the BMLP
// weight format.
//
// Every multi-byte field uses a single canonical byte order (little-endian),
// whatever the host:
//
//	u32: 4 bytes, least significant byte first
//	f64: 8 bytes, IEEE 754 binary64 bit pattern, least significant byte first
//
// Values are laid out in host order and then swapped when the host is
// big-endian, so little-endian hosts do a straight copy. NaN payloads and
// infinities are copied bit-for-bit.
//
// Example:
//
//	enc := codec.NewEncoder(w)
//	if err := enc.WriteU32(uint32(len(weights))); err != nil {
//	    return err
//	}
//
//	dec := codec.NewDecoder(r)
//	n, err := dec.ReadU32()
//	if errors.Is(err, codec.ErrTruncated) {
//	    // source ended inside the field
//	}
package codec
