package bitcoinwire

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWriteFrameVerack pins the byte-exact encoding of an empty verack frame
// on mainnet, taken from Bitcoin Core's test vectors.
func TestWriteFrameVerack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MainNetMagic, "verack", nil))

	want, err := hex.DecodeString("f9beb4d976657261636b000000000000000000005df6e0e2")
	require.NoError(t, err)
	require.Equal(t, want, buf.Bytes())
}

func TestReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello world")
	require.NoError(t, WriteFrame(&buf, TestNet3Magic, "ping", payload))

	cmd, got, err := ReadFrame(&buf, TestNet3Magic)
	require.NoError(t, err)
	require.Equal(t, "ping", cmd)
	require.Equal(t, payload, got)
}

func TestReadFrameBadMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MainNetMagic, "verack", nil))

	_, _, err := ReadFrame(&buf, TestNet3Magic)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestReadFrameBadChecksum(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MainNetMagic, "ping", []byte("payload")))
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xff // flip the last payload byte so the checksum no longer matches

	_, _, err := ReadFrame(bytes.NewReader(raw), MainNetMagic)
	require.ErrorIs(t, err, ErrBadChecksum)
}

func TestReadFrameOversizePayload(t *testing.T) {
	var hdr [HeaderLength]byte
	copy(hdr[0:4], []byte{0xf9, 0xbe, 0xb4, 0xd9})
	copy(hdr[4:16], "tx\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	hdr[16] = 0x01 // length = 0x02000001, one byte over the cap
	hdr[19] = 0x02

	_, _, err := ReadFrame(bytes.NewReader(hdr[:]), MainNetMagic)
	require.ErrorIs(t, err, ErrOversizePayload)
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MainNetMagic, "ping", []byte("12345678")))
	truncated := buf.Bytes()[:len(buf.Bytes())-2]

	_, _, err := ReadFrame(bytes.NewReader(truncated), MainNetMagic)
	require.ErrorIs(t, err, ErrTruncatedFrame)
}
