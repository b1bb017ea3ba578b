package paymentproto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		buf := putUvarint(nil, v)
		got, err := readUvarint(&bytesReader{data: buf})
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestReadFieldTruncated(t *testing.T) {
	w := &writer{}
	w.bytesField(1, []byte("hello"))
	truncated := w.buf[:len(w.buf)-2]
	_, err := readField(&bytesReader{data: truncated})
	require.ErrorIs(t, err, ErrTruncatedField)
}

func TestDecodeFieldsCollectsUnknown(t *testing.T) {
	w := &writer{}
	w.varintFieldAlways(1, 10)
	w.bytesField(2, []byte("known"))
	w.bytesField(99, []byte("unknown"))

	var gotKnown uint64
	unknown, err := decodeFields(w.buf, func(f rawField) (bool, error) {
		if f.num == 1 {
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			gotKnown = v
			return true, nil
		}
		if f.num == 2 {
			return true, nil
		}
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(10), gotKnown)
	require.Len(t, unknown, 1)
	require.Equal(t, 99, unknown[0].num)
	require.Equal(t, []byte("unknown"), unknown[0].data)
}
