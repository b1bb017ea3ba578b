package peer

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// EventHandler is the single capability interface a peer-manager implements
// to receive events from a Peer (spec §4.4, §9 Design Notes — replacing the
// original struct-of-function-pointers registry with one typed interface).
// Every method is optional: embed NopEventHandler and override only the
// methods of interest. The engine guarantees these methods are invoked
// serially, from its own goroutine, never re-entered for the same peer
// (spec §4.4, §5).
type EventHandler interface {
	// Connected is called once the version/verack handshake completes.
	Connected(p *Peer)

	// Disconnected is called exactly once per connection attempt, after
	// the session has transitioned to Disconnected. A nil err means an
	// orderly, caller-requested disconnect.
	Disconnected(p *Peer, err error)

	// RelayedPeers is called when an addr message is received.
	RelayedPeers(p *Peer, peers []ID)

	// RelayedTx is called when a tx message is received.
	RelayedTx(p *Peer, tx *btcwire.MsgTx)

	// HasTx is called, once per hash and in inv order, for each
	// transaction hash an inv message announces that this session has not
	// already marked known. Returning true marks the hash known and
	// suppresses the getdata for it (spec §4.2).
	HasTx(p *Peer, hash chainhash.Hash) bool

	// RejectedTx is called when a BIP61 reject message names a
	// transaction.
	RejectedTx(p *Peer, hash chainhash.Hash, code bitcoinwire.RejectCode)

	// RelayedBlock is called once per block carried by a merkleblock or
	// headers message, in message order.
	RelayedBlock(p *Peer, block *MerkleBlock)

	// NotFound is called when a notfound message is received, with the
	// hashes partitioned into the transactions and blocks that were
	// requested but not found.
	NotFound(p *Peer, txHashes, blockHashes []chainhash.Hash)

	// SetFeePerKb is called when the remote's minimum relay fee changes
	// (feefilter message, BIP133).
	SetFeePerKb(p *Peer, feePerKb int64)

	// RequestedTx is called when the remote asks (via getdata) for a
	// transaction hash we may be holding. Returning nil causes the hash
	// to be reported in a notfound message instead.
	RequestedTx(p *Peer, hash chainhash.Hash) *btcwire.MsgTx

	// NetworkIsReachable reports whether the caller believes outbound
	// networking is currently possible. The default (NopEventHandler)
	// is true.
	NetworkIsReachable(p *Peer) bool

	// ThreadCleanup is called immediately before the peer's session
	// goroutine exits, after Disconnected.
	ThreadCleanup(p *Peer)
}

// MerkleBlock is the parsed payload of a merkleblock message, or a single
// header from a headers message (NumTx zero, no hashes). It carries no
// transactions: those matching the filter are delivered separately via
// RelayedTx.
type MerkleBlock struct {
	Header   bitcoinwire.MerkleBlockHeader
	NumTx    uint32
	Hashes   []chainhash.Hash
	FlagBits []byte
}

// NopEventHandler provides safe no-op defaults for every EventHandler
// method. Embed it and override only what you need (spec §4.4: "All peer
// callbacks are optional individually").
type NopEventHandler struct{}

func (NopEventHandler) Connected(*Peer)                                          {}
func (NopEventHandler) Disconnected(*Peer, error)                                {}
func (NopEventHandler) RelayedPeers(*Peer, []ID)                                 {}
func (NopEventHandler) RelayedTx(*Peer, *btcwire.MsgTx)                          {}
func (NopEventHandler) HasTx(*Peer, chainhash.Hash) bool                         { return false }
func (NopEventHandler) RejectedTx(*Peer, chainhash.Hash, bitcoinwire.RejectCode) {}
func (NopEventHandler) RelayedBlock(*Peer, *MerkleBlock)                         {}
func (NopEventHandler) NotFound(*Peer, []chainhash.Hash, []chainhash.Hash)       {}
func (NopEventHandler) SetFeePerKb(*Peer, int64)                                 {}
func (NopEventHandler) RequestedTx(*Peer, chainhash.Hash) *btcwire.MsgTx         { return nil }
func (NopEventHandler) NetworkIsReachable(*Peer) bool                           { return true }
func (NopEventHandler) ThreadCleanup(*Peer)                                      {}
