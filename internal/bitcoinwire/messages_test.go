package bitcoinwire

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, m Message, decoded Message) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	require.NoError(t, decoded.Decode(&buf))
}

func TestVersionMsgRoundTrip(t *testing.T) {
	v := &VersionMsg{
		ProtocolVersion: ProtocolVersion,
		Services:        1,
		Timestamp:       1700000000,
		AddrRecv:        NetAddr{IP: netip.AddrFrom16(netip.IPv4Unspecified().As16())},
		AddrFrom:        NetAddr{IP: netip.AddrFrom16(netip.IPv4Unspecified().As16())},
		Nonce:           0xdeadbeefcafef00d,
		UserAgent:       UserAgent,
		StartHeight:     12345,
		Relay:           false,
	}
	var got VersionMsg
	roundTrip(t, v, &got)
	require.Equal(t, *v, got)
}

func TestInvMsgRoundTrip(t *testing.T) {
	inv := &InvMsg{Items: []InvVect{
		{Type: InvTypeTx, Hash: chainhash.Hash{1, 2, 3}},
		{Type: InvTypeFilteredBlock, Hash: chainhash.Hash{4, 5, 6}},
	}}
	var got InvMsg
	roundTrip(t, inv, &got)
	require.Equal(t, inv.Items, got.Items)
}

func TestFilterLoadRoundTrip(t *testing.T) {
	f := &FilterLoadMsg{
		Filter:    []byte{0xde, 0xad, 0xbe, 0xef},
		HashFuncs: 11,
		Tweak:     0,
		Flags:     BloomUpdateAll,
	}
	var got FilterLoadMsg
	roundTrip(t, f, &got)
	require.Equal(t, *f, got)
}

func TestMerkleBlockRoundTrip(t *testing.T) {
	mb := &MerkleBlockMsg{
		Header: MerkleBlockHeader{
			Version:    1,
			PrevBlock:  chainhash.Hash{9},
			MerkleRoot: chainhash.Hash{8},
			Timestamp:  1700000000,
			Bits:       0x1d00ffff,
			Nonce:      12345,
		},
		NumTx:    2,
		Hashes:   []chainhash.Hash{{1}, {2}},
		FlagBits: []byte{0x07},
	}
	var got MerkleBlockMsg
	roundTrip(t, mb, &got)
	require.Equal(t, *mb, got)
}

func TestRejectMsgRoundTripWithHash(t *testing.T) {
	rej := &RejectMsg{
		Message: CmdTx,
		Code:    RejectDust,
		Reason:  "dust",
		Hash:    chainhash.Hash{1, 2, 3, 4},
	}
	var got RejectMsg
	roundTrip(t, rej, &got)
	require.Equal(t, *rej, got)
}

func TestPingPongRoundTrip(t *testing.T) {
	p := &PingMsg{Nonce: 42}
	var got PingMsg
	roundTrip(t, p, &got)
	require.Equal(t, uint64(42), got.Nonce)

	pong := &PongMsg{Nonce: 42}
	var gotPong PongMsg
	roundTrip(t, pong, &gotPong)
	require.Equal(t, p.Nonce, gotPong.Nonce)
}
