package peer

import "github.com/loafwallet/spvcore/internal/bitcoinwire"

// SendMempool transmits a mempool request and remembers the completion
// callback. The session closes the request when a subsequent inv, addr,
// merkleblock, or notfound arrives, or when the idle deadline fires, delivering
// success/failure exactly once (spec.md §4.2 Mempool). Only one mempool
// request may be outstanding at a time; a second call replaces the first,
// which is completed with ok=false.
func (p *Peer) SendMempool(info interface{}, done func(info interface{}, ok bool)) error {
	p.mu.Lock()
	prev := p.mempool
	p.mempool = &pendingMempool{info: info, done: done}
	p.mu.Unlock()

	if prev != nil && prev.done != nil {
		prev.done(prev.info, false)
	}

	return p.sendMessage(&bitcoinwire.MempoolMsg{})
}

// completeMempool delivers and clears any pending mempool callback. Called
// from message handlers whose arrival signals "the mempool request is
// answered" per spec.md §4.2.
func (p *Peer) completeMempool(ok bool) {
	p.mu.Lock()
	pending := p.mempool
	p.mempool = nil
	p.mu.Unlock()

	if pending != nil && pending.done != nil {
		pending.done(pending.info, ok)
	}
}

// flushPendingMempool completes any outstanding mempool request with
// failure during Disconnect.
func (p *Peer) flushPendingMempool() {
	p.completeMempool(false)
}

// SendGetAddr requests known peer addresses (spec.md §5 Supplemented
// features: BWPeerSendGetaddr).
func (p *Peer) SendGetAddr() error {
	return p.sendMessage(&bitcoinwire.GetAddrMsg{})
}
