package codec

import (
	"encoding/binary"
	"math"
)

// Field widths in bytes.
const (
	SizeU32 = 4
	SizeF64 = 8
)

// hostOrder is the byte order of the running machine.
var hostOrder binary.ByteOrder = binary.NativeEndian

// isLittleEndian reports whether order stores the least significant byte first.
func isLittleEndian(order binary.ByteOrder) bool {
	var probe [2]byte
	order.PutUint16(probe[:], 1)
	return probe[0] == 1
}

// reverse swaps b in place.
func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// putU32 stores v into dst[:4] in canonical order.
func putU32(dst []byte, v uint32, host binary.ByteOrder) {
	host.PutUint32(dst, v)
	if !isLittleEndian(host) {
		reverse(dst[:SizeU32])
	}
}

// u32 decodes src[:4] from canonical order.
func u32(src []byte, host binary.ByteOrder) uint32 {
	if isLittleEndian(host) {
		return host.Uint32(src)
	}
	var tmp [SizeU32]byte
	copy(tmp[:], src)
	reverse(tmp[:])
	return host.Uint32(tmp[:])
}

// putF64 stores the binary64 bit pattern of v into dst[:8] in canonical order.
func putF64(dst []byte, v float64, host binary.ByteOrder) {
	host.PutUint64(dst, math.Float64bits(v))
	if !isLittleEndian(host) {
		reverse(dst[:SizeF64])
	}
}

// f64 decodes a binary64 value from src[:8] in canonical order.
func f64(src []byte, host binary.ByteOrder) float64 {
	if isLittleEndian(host) {
		return math.Float64frombits(host.Uint64(src))
	}
	var tmp [SizeF64]byte
	copy(tmp[:], src)
	reverse(tmp[:])
	return math.Float64frombits(host.Uint64(tmp[:]))
}
