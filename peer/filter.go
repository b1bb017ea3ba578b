package peer

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// NeedsFilterUpdate reports whether the next relevant event should trigger
// re-announcement of the bloom filter (spec.md §3 "needs-filter-update
// flag").
func (p *Peer) NeedsFilterUpdate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.needsFilterUpdate
}

// SetNeedsFilterUpdate marks (or clears) the pending re-announcement flag.
func (p *Peer) SetNeedsFilterUpdate(v bool) {
	p.mu.Lock()
	p.needsFilterUpdate = v
	p.mu.Unlock()
}

// SendFilterload installs filter on the connection and clears
// NeedsFilterUpdate (spec.md §4.2 Bloom filter update: "the caller supplies
// the bytes via SendFilterload").
func (p *Peer) SendFilterload(filter *bitcoinwire.FilterLoadMsg) error {
	p.mu.Lock()
	p.lastFilterLoad = filter
	p.needsFilterUpdate = false
	p.mu.Unlock()
	return p.sendMessage(filter)
}

// SendFilterAdd appends a single element to the currently loaded filter.
func (p *Peer) SendFilterAdd(data []byte) error {
	return p.sendMessage(&bitcoinwire.FilterAddMsg{Data: data})
}

// SendFilterClear removes the currently loaded filter, reverting to
// unfiltered relay.
func (p *Peer) SendFilterClear() error {
	p.mu.Lock()
	p.lastFilterLoad = nil
	p.mu.Unlock()
	return p.sendMessage(&bitcoinwire.FilterClearMsg{})
}

// RerequestBlocks re-requests filtered blocks by sending a getblocks with
// from as the sole locator hash. The remote answers with inventory for the
// blocks that follow from; from itself is not re-requested. Used after a
// filter update invalidates blocks already delivered under the old filter
// (spec.md §5 Supplemented features: BWPeerRerequestBlocks).
func (p *Peer) RerequestBlocks(from chainhash.Hash) error {
	gb := &bitcoinwire.GetBlocksMsg{}
	gb.ProtocolVersion = uint32(p.cfg.protocolVersion())
	gb.Locators = []chainhash.Hash{from}
	gb.HashStop = chainhash.Hash{}
	return p.sendMessage(gb)
}
