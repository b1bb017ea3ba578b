package peer

import (
	"fmt"
	"time"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// SendPing enqueues a pong callback keyed by a random nonce and sends a
// ping (spec.md §4.2). info is opaque caller context handed back to done
// unchanged; done may be nil if the caller only cares about the rolling
// PingTime() estimate.
func (p *Peer) SendPing(info interface{}, done func(info interface{}, rtt time.Duration, ok bool)) error {
	nonce, err := randomNonce()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.pendingPings = append(p.pendingPings, pendingPing{
		nonce:  nonce,
		sentAt: time.Now(),
		info:   info,
		done:   done,
	})
	p.mu.Unlock()

	return p.sendMessage(&bitcoinwire.PingMsg{Nonce: nonce})
}

// handlePong pops the head of the pending-ping FIFO if nonce matches;
// otherwise the session is protocol-violating and disconnects (spec.md
// §4.2: "Incoming pong pops the head of the FIFO only if nonces match;
// mismatches disconnect").
func (p *Peer) handlePong(nonce uint64) error {
	p.mu.Lock()
	if len(p.pendingPings) == 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: unsolicited pong", ErrProtocol)
	}
	head := p.pendingPings[0]
	if head.nonce != nonce {
		p.mu.Unlock()
		return fmt.Errorf("%w: pong nonce mismatch", ErrProtocol)
	}
	p.pendingPings = p.pendingPings[1:]
	rtt := time.Since(head.sentAt)
	if p.pingRTT == 0 {
		p.pingRTT = rtt
	} else {
		p.pingRTT = time.Duration(pingRTTAlpha*float64(rtt) + (1-pingRTTAlpha)*float64(p.pingRTT))
	}
	p.mu.Unlock()

	if head.done != nil {
		head.done(head.info, rtt, true)
	}
	return nil
}

// flushPendingPings delivers a failed completion to every outstanding ping
// callback, in FIFO order, during Disconnect (spec.md §5 Cancellation:
// "flushes pending callbacks with success=false").
func (p *Peer) flushPendingPings() {
	p.mu.Lock()
	pending := p.pendingPings
	p.pendingPings = nil
	p.mu.Unlock()

	for _, pp := range pending {
		if pp.done != nil {
			pp.done(pp.info, 0, false)
		}
	}
}
