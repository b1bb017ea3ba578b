package bitcoinwire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarIntBoundaries(t *testing.T) {
	cases := []struct {
		value uint64
		want  []byte
	}{
		{0xfc, []byte{0xfc}},
		{0xfd, []byte{0xfd, 0xfd, 0x00}},
		{0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, tc.value))
		require.Equal(t, tc.want, buf.Bytes(), "encode %#x", tc.value)
		require.Equal(t, len(tc.want), VarIntLen(tc.value))

		got, err := ReadVarInt(bytes.NewReader(tc.want))
		require.NoError(t, err)
		require.Equal(t, tc.value, got, "decode %#x", tc.value)
	}
}

func TestVarIntNonCanonical(t *testing.T) {
	// The value 1 encoded with the 0xfd prefix could have fit in one byte.
	_, err := ReadVarInt(bytes.NewReader([]byte{0xfd, 0x01, 0x00}))
	require.ErrorIs(t, err, ErrNonCanonicalVarInt)
}

func TestVarIntMalformed(t *testing.T) {
	_, err := ReadVarInt(bytes.NewReader([]byte{0xfe, 0x01, 0x00}))
	require.ErrorIs(t, err, ErrMalformedVarInt)
}

func TestVarStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarString(&buf, "/litewallet-loafwallet-core:2.1/"))

	got, err := ReadVarString(&buf)
	require.NoError(t, err)
	require.Equal(t, "/litewallet-loafwallet-core:2.1/", got)
}

func TestVarBytesOversize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 100))
	buf.Write(make([]byte, 10))

	_, err := ReadVarBytes(&buf, 50)
	require.ErrorIs(t, err, ErrOversizePayload)
}
