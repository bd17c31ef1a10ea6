package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// edgeValues covers the binary64 classes that must survive bit-for-bit.
var edgeValues = []float64{
	0,
	math.Copysign(0, -1),
	1.5,
	-2.25,
	math.SmallestNonzeroFloat64,
	-math.SmallestNonzeroFloat64,
	math.MaxFloat64,
	math.Inf(1),
	math.Inf(-1),
	math.NaN(),
	math.Float64frombits(0x7FF0000000000001), // signaling NaN payload
	math.Float64frombits(0xFFF8DEADBEEF0001), // negative quiet NaN payload
}

func TestWriteU32_CanonicalBytes(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.WriteU32(0x01020304))
	require.NoError(t, enc.WriteU32(math.MaxUint32))

	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01, 0xFF, 0xFF, 0xFF, 0xFF}, buf.Bytes())
	assert.Equal(t, int64(8), enc.Offset())
}

func TestWriteF64_CanonicalBytes(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	// 1.5 = 0x3FF8000000000000
	require.NoError(t, enc.WriteF64(1.5))

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}, buf.Bytes())
}

func TestEncoder_SimulatedHostsProduceIdenticalBytes(t *testing.T) {
	var little, big bytes.Buffer
	le := newEncoder(&little, binary.LittleEndian)
	be := newEncoder(&big, binary.BigEndian)

	for _, v := range []uint32{0, 1, 2, 0xDEADBEEF, math.MaxUint32} {
		require.NoError(t, le.WriteU32(v))
		require.NoError(t, be.WriteU32(v))
	}
	for _, v := range edgeValues {
		require.NoError(t, le.WriteF64(v))
		require.NoError(t, be.WriteF64(v))
	}

	assert.Equal(t, little.Bytes(), big.Bytes())
}

func TestDecoder_SimulatedHostsDecodeSameValues(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteU32(0xCAFEBABE))
	for _, v := range edgeValues {
		require.NoError(t, enc.WriteF64(v))
	}
	data := buf.Bytes()

	for _, host := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(host.String(), func(t *testing.T) {
			dec := newDecoder(bytes.NewReader(data), host)

			n, err := dec.ReadU32()
			require.NoError(t, err)
			assert.Equal(t, uint32(0xCAFEBABE), n)

			for i, want := range edgeValues {
				got, err := dec.ReadF64()
				require.NoError(t, err)
				assert.Equal(t, math.Float64bits(want), math.Float64bits(got), "value %d", i)
			}
			assert.Equal(t, int64(len(data)), dec.Offset())
		})
	}
}

func TestIsLittleEndian(t *testing.T) {
	assert.True(t, isLittleEndian(binary.LittleEndian))
	assert.False(t, isLittleEndian(binary.BigEndian))
}

func TestDecoder_Truncation(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		read   func(*Decoder) error
		offset int64
		need   int
		got    int
	}{
		{
			name:   "empty u32",
			data:   nil,
			read:   func(d *Decoder) error { _, err := d.ReadU32(); return err },
			offset: 0, need: 4, got: 0,
		},
		{
			name:   "short u32",
			data:   []byte{1, 2, 3},
			read:   func(d *Decoder) error { _, err := d.ReadU32(); return err },
			offset: 0, need: 4, got: 3,
		},
		{
			name: "short f64 after u32",
			data: []byte{1, 0, 0, 0, 9, 9, 9, 9, 9},
			read: func(d *Decoder) error {
				if _, err := d.ReadU32(); err != nil {
					return err
				}
				_, err := d.ReadF64()
				return err
			},
			offset: 4, need: 8, got: 5,
		},
		{
			name:   "short magic",
			data:   []byte{'B', 'M'},
			read:   func(d *Decoder) error { return d.ReadBytes(make([]byte, 4)) },
			offset: 0, need: 4, got: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder(bytes.NewReader(tt.data))
			err := tt.read(dec)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncated)
			assert.NotErrorIs(t, err, ErrIO)

			var te *TruncationError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.offset, te.Offset)
			assert.Equal(t, tt.need, te.Need)
			assert.Equal(t, tt.got, te.Got)
		})
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

type failingWriter struct {
	n   int
	err error
}

func (w failingWriter) Write(p []byte) (int, error) { return min(w.n, len(p)), w.err }

func TestDecoder_IOError(t *testing.T) {
	cause := errors.New("device not ready")
	dec := NewDecoder(failingReader{err: cause})

	_, err := dec.ReadF64()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTruncated)
}

func TestEncoder_IOError(t *testing.T) {
	cause := errors.New("no space left on device")

	t.Run("writer error", func(t *testing.T) {
		enc := NewEncoder(failingWriter{err: cause})
		err := enc.WriteU32(7)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("short write", func(t *testing.T) {
		enc := NewEncoder(failingWriter{n: 3})
		err := enc.WriteF64(1)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Equal(t, int64(3), enc.Offset())
	})
}
