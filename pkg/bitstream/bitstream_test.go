package bitstream_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/openllrp/llrp/pkg/bitstream"
)

// TestWriteReadUint_RoundTrip checks that every bit width from 1 to 64
// round-trips any value that fits it, across many randomized widths and
// values (Spec 4.2: MSB-first-within-octet, big-endian-across-octets).
func TestWriteReadUint_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bits := rapid.IntRange(1, 64).Draw(t, "bits")
		var max uint64 = ^uint64(0)
		if bits < 64 {
			max = (uint64(1) << uint(bits)) - 1
		}
		value := rapid.Uint64Range(0, max).Draw(t, "value")
		prefix := rapid.IntRange(0, 9).Draw(t, "prefix")

		// A prefix of 0 means no prefix: widths below 1 are rejected.
		w := bitstream.NewWriter()
		if prefix > 0 {
			require.NoError(t, w.WriteUint(prefix, 0))
		}
		require.NoError(t, w.WriteUint(bits, value))

		r := bitstream.NewReader(w.Bytes())
		if prefix > 0 {
			_, err := r.ReadUint(prefix)
			require.NoError(t, err)
		}
		got, err := r.ReadUint(bits)
		require.NoError(t, err)
		require.Equal(t, value, got)
	})
}

func TestWriteReadBytes_OctetAlignedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")

		w := bitstream.NewWriter()
		require.NoError(t, w.WriteBool(true))
		w.AlignToOctet()
		require.NoError(t, w.WriteBytes(data))

		r := bitstream.NewReader(w.Bytes())
		_, err := r.ReadBool()
		require.NoError(t, err)
		r.AlignToOctet()
		got, err := r.ReadBytes(len(data))
		require.NoError(t, err)
		require.Equal(t, data, got)
	})
}

func TestReadUint_TruncatedFails(t *testing.T) {
	r := bitstream.NewReader([]byte{0xFF})
	_, err := r.ReadUint(9)
	require.ErrorIs(t, err, bitstream.ErrTruncated)
}

func TestReadBytes_NotAlignedFails(t *testing.T) {
	w := bitstream.NewWriter()
	require.NoError(t, w.WriteBool(true))
	r := bitstream.NewReader(w.Bytes())
	_, err := r.ReadBool()
	require.NoError(t, err)
	_, err = r.ReadBytes(1)
	require.ErrorIs(t, err, bitstream.ErrNotAligned)
}

func TestWriteReadSint_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bits := rapid.IntRange(2, 64).Draw(t, "bits")
		lo := -(int64(1) << uint(bits-1))
		hi := int64(1)<<uint(bits-1) - 1
		value := rapid.Int64Range(lo, hi).Draw(t, "value")

		w := bitstream.NewWriter()
		require.NoError(t, w.WriteSint(bits, value))
		r := bitstream.NewReader(w.Bytes())
		got, err := r.ReadSint(bits)
		require.NoError(t, err)
		require.Equal(t, value, got)
	})
}
