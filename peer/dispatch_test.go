package peer

import (
	"bytes"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// TestFilteredBlockInvClearsOutstandingByBlockHash drives an inv -> getdata
// -> merkleblock round trip over a filtered-block request and asserts that
// OutstandingBlocks() goes 0 -> 1 -> 0. Under the bug this guards against,
// the merkleblock handler deleted blockRequested by the header's merkle
// root instead of its block hash, so the entry (keyed by block hash at
// request time) was never cleared and OutstandingBlocks() stuck at 1.
func TestFilteredBlockInvClearsOutstandingByBlockHash(t *testing.T) {
	clientConn, remoteConn := net.Pipe()
	defer remoteConn.Close()

	handler := &countingHandler{}
	cfg := Config{Magic: bitcoinwire.TestNet3Magic, Handler: handler, HandshakeTimeout: 2 * time.Second}
	p := NewPeer(cfg)
	p.id = NewID(netip.MustParseAddr("127.0.0.1"), 18333)

	errCh := make(chan error, 1)
	go func() { errCh <- p.attach(clientConn) }()
	remoteHandshake(t, remoteConn, cfg.Magic, bitcoinwire.VersionMsg{ProtocolVersion: 70015, StartHeight: 0})
	require.NoError(t, <-errCh)

	header := bitcoinwire.MerkleBlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{0x01},
		MerkleRoot: chainhash.Hash{0x02},
		Timestamp:  1700000000,
		Bits:       0x1d00ffff,
		Nonce:      12345,
	}
	blockHash := header.BlockHash()
	require.NotEqual(t, header.MerkleRoot, blockHash, "test header must exercise the merkle-root-vs-block-hash distinction")

	require.Equal(t, 0, p.OutstandingBlocks())

	invBuf, err := bitcoinwire.EncodePayload(&bitcoinwire.InvMsg{
		Items: []bitcoinwire.InvVect{{Type: bitcoinwire.InvTypeFilteredBlock, Hash: blockHash}},
	})
	require.NoError(t, err)
	require.NoError(t, bitcoinwire.WriteFrame(remoteConn, cfg.Magic, bitcoinwire.CmdInv, invBuf))

	cmd, payload, err := bitcoinwire.ReadFrame(remoteConn, cfg.Magic)
	require.NoError(t, err)
	require.Equal(t, bitcoinwire.CmdGetData, cmd)
	var getData bitcoinwire.GetDataMsg
	require.NoError(t, getData.Decode(bytes.NewReader(payload)))
	require.Contains(t, getData.Items, bitcoinwire.InvVect{Type: bitcoinwire.InvTypeFilteredBlock, Hash: blockHash})

	require.Eventually(t, func() bool {
		return p.OutstandingBlocks() == 1
	}, time.Second, 5*time.Millisecond)

	mbBuf, err := bitcoinwire.EncodePayload(&bitcoinwire.MerkleBlockMsg{Header: header, NumTx: 0})
	require.NoError(t, err)
	require.NoError(t, bitcoinwire.WriteFrame(remoteConn, cfg.Magic, bitcoinwire.CmdMerkleBlock, mbBuf))

	require.Eventually(t, func() bool {
		return p.OutstandingBlocks() == 0
	}, time.Second, 5*time.Millisecond)

	p.Disconnect(nil)
}
