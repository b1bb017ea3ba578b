package peer

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Status is the peer session's connection state (spec.md §3 Peer session
// state).
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// pendingPing is one outstanding ping awaiting its matching pong, queued
// FIFO (spec.md §4.2: "SendPing enqueues a pong callback keyed by a random
// 8-byte nonce").
type pendingPing struct {
	nonce  uint64
	sentAt time.Time
	info   interface{}
	done   func(info interface{}, rtt time.Duration, ok bool)
}

// pendingMempool is the single outstanding mempool request's completion
// callback (spec.md §4.2: "remembers the completion callback; the session
// closes the request when a subsequent inv is received or the inactivity
// deadline fires, delivering success/failure once").
type pendingMempool struct {
	info interface{}
	done func(info interface{}, ok bool)
}

// invState holds the inventory bookkeeping sets from spec.md §3: "txHashes
// known, txHashes requested-not-yet-received, blockHashes requested".
type invState struct {
	txKnown        map[chainhash.Hash]struct{}
	txRequested    map[chainhash.Hash]struct{}
	blockRequested map[chainhash.Hash]struct{}
}

func newInvState() *invState {
	return &invState{
		txKnown:        make(map[chainhash.Hash]struct{}),
		txRequested:    make(map[chainhash.Hash]struct{}),
		blockRequested: make(map[chainhash.Hash]struct{}),
	}
}
