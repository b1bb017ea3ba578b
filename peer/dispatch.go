package peer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// tarpitBlockLag is how far below our own height a peer's reported best
// block may lag before it is treated as stalled (spec.md §4.2 Tarpit
// detection).
const tarpitBlockLag = 7

// receiveLoop is the single reader goroutine started by Connect. It reads
// frames until a fatal error, dispatches each to handleMessage, and resets
// the idle/ping deadlines on every frame (spec.md §4.2 Receive loop, §5
// Scheduling model: "one OS-backed thread per peer session handles reads
// and timers").
func (p *Peer) receiveLoop() {
	defer p.wg.Done()

	pingOutstanding := false
	for {
		p.mu.Lock()
		conn := p.conn
		idle := p.cfg.idleTimeout()
		ping := p.cfg.pingInterval()
		p.mu.Unlock()
		if conn == nil {
			return
		}

		deadline := idle
		if pingOutstanding {
			deadline = ping
		}
		conn.SetReadDeadline(time.Now().Add(deadline))

		cmd, payload, err := bitcoinwire.ReadFrame(conn, p.cfg.Magic)
		if err != nil {
			if isTimeout(err) {
				if pingOutstanding {
					p.disconnectCore(ErrTimedOut)
					return
				}
				p.completeMempool(false)
				if sendErr := p.SendPing(nil, nil); sendErr != nil {
					p.disconnectCore(wrapDialError(sendErr))
					return
				}
				pingOutstanding = true
				continue
			}
			p.disconnectCore(wrapDialError(err))
			return
		}
		pingOutstanding = false

		if err := p.handleMessage(cmd, payload); err != nil {
			p.disconnectCore(err)
			return
		}

		select {
		case <-p.closed:
			return
		default:
		}
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	t, ok := err.(timeouter)
	return ok && t.Timeout()
}

// handleMessage dispatches one decoded frame by command (spec.md §4.2
// Inventory dialog / Outbound getdata / Ping-pong / Mempool / reject /
// notfound). Unknown commands are logged and ignored (spec.md §7:
// "Recoverable conditions (unknown message type...) are logged and
// ignored").
func (p *Peer) handleMessage(cmd string, payload []byte) error {
	r := bytes.NewReader(payload)
	handler := p.cfg.handler()

	switch cmd {
	case bitcoinwire.CmdVersion, bitcoinwire.CmdVerAck:
		// Duplicate handshake messages after Connected are redundant and
		// harmless; ignore per the recoverable-condition policy.
		return nil

	case bitcoinwire.CmdPing:
		var m bitcoinwire.PingMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return p.sendMessage(&bitcoinwire.PongMsg{Nonce: m.Nonce})

	case bitcoinwire.CmdPong:
		var m bitcoinwire.PongMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return p.handlePong(m.Nonce)

	case bitcoinwire.CmdInv:
		var m bitcoinwire.InvMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return p.handleInv(m.Items)

	case bitcoinwire.CmdTx:
		var m bitcoinwire.TxMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		hash := m.Tx.TxHash()
		p.mu.Lock()
		delete(p.inv.txRequested, hash)
		p.inv.txKnown[hash] = struct{}{}
		p.mu.Unlock()
		handler.RelayedTx(p, &m.Tx)
		return nil

	case bitcoinwire.CmdMerkleBlock:
		var m bitcoinwire.MerkleBlockMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		p.mu.Lock()
		delete(p.inv.blockRequested, m.Header.BlockHash())
		p.mu.Unlock()
		handler.RelayedBlock(p, &MerkleBlock{
			Header:   m.Header,
			NumTx:    m.NumTx,
			Hashes:   m.Hashes,
			FlagBits: m.FlagBits,
		})
		p.completeMempool(true)
		return nil

	case bitcoinwire.CmdHeaders:
		var m bitcoinwire.HeadersMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		for i := range m.Headers {
			handler.RelayedBlock(p, &MerkleBlock{
				Header: bitcoinwire.MerkleBlockHeader{
					Version:    m.Headers[i].Version,
					PrevBlock:  m.Headers[i].PrevBlock,
					MerkleRoot: m.Headers[i].MerkleRoot,
					Timestamp:  uint32(m.Headers[i].Timestamp.Unix()),
					Bits:       m.Headers[i].Bits,
					Nonce:      m.Headers[i].Nonce,
				},
				NumTx: 0,
			})
		}
		return nil

	case bitcoinwire.CmdGetData:
		var m bitcoinwire.GetDataMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return p.handleGetData(m.Items)

	case bitcoinwire.CmdNotFound:
		var m bitcoinwire.NotFoundMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return p.handleNotFound(m.Items)

	case bitcoinwire.CmdReject:
		var m bitcoinwire.RejectMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		if m.Message == bitcoinwire.CmdTx {
			handler.RejectedTx(p, m.Hash, m.Code)
		}
		return nil

	case bitcoinwire.CmdAddr:
		var m bitcoinwire.AddrMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		ids := make([]ID, 0, len(m.Addrs))
		for _, a := range m.Addrs {
			ids = append(ids, NewID(a.Addr.IP, a.Addr.Port))
		}
		handler.RelayedPeers(p, ids)
		p.completeMempool(false)
		return nil

	case bitcoinwire.CmdFeeFilter:
		var m bitcoinwire.FeeFilterMsg
		if err := m.Decode(r); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		p.mu.Lock()
		p.feePerKb = m.FeeRate
		p.mu.Unlock()
		handler.SetFeePerKb(p, m.FeeRate)
		return nil

	case bitcoinwire.CmdMempool, bitcoinwire.CmdGetAddr,
		bitcoinwire.CmdFilterLoad, bitcoinwire.CmdFilterAdd, bitcoinwire.CmdFilterClear,
		bitcoinwire.CmdBlock, bitcoinwire.CmdGetBlocks, bitcoinwire.CmdGetHeaders:
		// Requests an SPV wallet never serves or issues unsolicited;
		// recoverable, ignore.
		return nil

	default:
		return nil
	}
}

// handleInv implements spec.md §4.2's inventory dialog: known tx hashes are
// reported via hasTx, unknown ones followed up with getdata; block hashes
// are requested as filtered merkle blocks plus a dummy getdata to detect
// end-of-batch via notfound.
func (p *Peer) handleInv(items []bitcoinwire.InvVect) error {
	handler := p.cfg.handler()
	var wantTx []bitcoinwire.InvVect
	var wantBlocks []bitcoinwire.InvVect

	for _, it := range items {
		switch it.Type {
		case bitcoinwire.InvTypeTx:
			p.mu.Lock()
			_, known := p.inv.txKnown[it.Hash]
			p.mu.Unlock()
			if known || handler.HasTx(p, it.Hash) {
				p.mu.Lock()
				p.inv.txKnown[it.Hash] = struct{}{}
				p.mu.Unlock()
				continue
			}
			wantTx = append(wantTx, bitcoinwire.InvVect{Type: bitcoinwire.InvTypeTx, Hash: it.Hash})

		case bitcoinwire.InvTypeBlock, bitcoinwire.InvTypeFilteredBlock:
			wantBlocks = append(wantBlocks, bitcoinwire.InvVect{Type: bitcoinwire.InvTypeFilteredBlock, Hash: it.Hash})
		}
	}

	if len(wantTx) > 0 {
		p.mu.Lock()
		for _, it := range wantTx {
			p.inv.txRequested[it.Hash] = struct{}{}
		}
		p.mu.Unlock()
		if err := p.sendMessage(&bitcoinwire.GetDataMsg{Items: wantTx}); err != nil {
			return err
		}
	}

	if len(wantBlocks) > 0 {
		p.mu.Lock()
		for _, it := range wantBlocks {
			p.inv.blockRequested[it.Hash] = struct{}{}
		}
		p.mu.Unlock()
		items := append([]bitcoinwire.InvVect{}, wantBlocks...)
		// A trailing dummy hash lets a subsequent notfound reply mark the
		// end of the batch even when every real block was found.
		items = append(items, bitcoinwire.InvVect{Type: bitcoinwire.InvTypeTx, Hash: chainhash.Hash{}})
		if err := p.sendMessage(&bitcoinwire.GetDataMsg{Items: items}); err != nil {
			return err
		}
	}

	p.completeMempool(true)
	return nil
}

// handleGetData answers a remote's getdata for transactions we may be
// holding, collecting everything unmatched into a single notfound (spec.md
// §4.2 "Outbound getdata from remote").
func (p *Peer) handleGetData(items []bitcoinwire.InvVect) error {
	handler := p.cfg.handler()
	var missing []bitcoinwire.InvVect
	for _, it := range items {
		if it.Type != bitcoinwire.InvTypeTx {
			missing = append(missing, it)
			continue
		}
		tx := handler.RequestedTx(p, it.Hash)
		if tx == nil {
			missing = append(missing, it)
			continue
		}
		if err := p.sendMessage(&bitcoinwire.TxMsg{Tx: *tx}); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return p.sendMessage(&bitcoinwire.NotFoundMsg{Items: missing})
	}
	return nil
}

// handleNotFound partitions the reply into transactions and blocks and
// invokes the NotFound callback once per message (spec.md §4.2).
func (p *Peer) handleNotFound(items []bitcoinwire.InvVect) error {
	var txs, blocks []chainhash.Hash
	p.mu.Lock()
	for _, it := range items {
		switch it.Type {
		case bitcoinwire.InvTypeTx:
			if it.Hash == (chainhash.Hash{}) {
				// The dummy end-of-batch hash from handleInv; not a real
				// miss, just the batch-completion signal.
				continue
			}
			delete(p.inv.txRequested, it.Hash)
			txs = append(txs, it.Hash)
		case bitcoinwire.InvTypeBlock, bitcoinwire.InvTypeFilteredBlock:
			delete(p.inv.blockRequested, it.Hash)
			blocks = append(blocks, it.Hash)
		}
	}
	p.mu.Unlock()
	p.cfg.handler().NotFound(p, txs, blocks)
	p.completeMempool(true)
	return nil
}

// checkTarpit applies spec.md §4.2's tarpit detection once, right after the
// handshake: a remote reporting a best block more than tarpitBlockLag
// behind ours is disconnected as misbehaving.
func (p *Peer) checkTarpit() error {
	p.mu.Lock()
	remote := p.remoteLastBlock
	ours := p.cfg.CurrentBlockHeight
	p.mu.Unlock()
	if ours-remote > tarpitBlockLag {
		return fmt.Errorf("%w: remote height %d trails ours (%d) by more than %d blocks", ErrMisbehaving, remote, ours, tarpitBlockLag)
	}
	return nil
}

