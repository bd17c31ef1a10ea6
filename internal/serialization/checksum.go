package serialization

import (
	"crypto/sha256"
	"hash"
	"io"
)

// digest hashes weight file bytes as they stream past. A nil *digest is
// disabled and passes streams through untouched.
type digest struct {
	h hash.Hash
}

func newDigest(enabled bool) *digest {
	if !enabled {
		return nil
	}
	return &digest{h: sha256.New()}
}

// writer returns w, teeing into the digest when it is enabled.
func (d *digest) writer(w io.Writer) io.Writer {
	if d == nil {
		return w
	}
	return io.MultiWriter(w, d.h)
}

// reader returns r, teeing into the digest when it is enabled.
func (d *digest) reader(r io.Reader) io.Reader {
	if d == nil {
		return r
	}
	return io.TeeReader(r, d.h)
}

// sum returns the hash of every byte seen so far.
func (d *digest) sum() [ChecksumSize]byte {
	var s [ChecksumSize]byte
	copy(s[:], d.h.Sum(nil))
	return s
}

// ComputeChecksum returns the SHA-256 of data, as stored in a version 2 footer.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum returns ErrChecksumMismatch unless computed equals stored.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
