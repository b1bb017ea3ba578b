package peer

import (
	"bytes"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// handshake performs the version/verack exchange described in spec.md §4.2
// ("On Connect: open TCP; send version ... On receive of remote version ...
// reply with verack. On receive of remote verack ... transition to
// Connected"). It runs synchronously on the calling goroutine before the
// receive loop starts, bounded by cfg.handshakeTimeout().
func (p *Peer) handshake(conn net.Conn) error {
	deadline := time.Now().Add(p.cfg.handshakeTimeout())
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	defer conn.SetDeadline(time.Time{})

	nonce, err := randomNonce()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.localNonce = nonce
	p.mu.Unlock()

	localAddr, _ := netip.AddrFromSlice(net.IPv4zero)
	remoteAddr := p.id.Addr

	out := &bitcoinwire.VersionMsg{
		ProtocolVersion: p.cfg.protocolVersion(),
		Services:        uint64(p.cfg.Services),
		Timestamp:       time.Now().Unix(),
		AddrRecv:        bitcoinwire.NetAddr{Services: uint64(p.remoteServices), IP: remoteAddr, Port: p.id.Port},
		AddrFrom:        bitcoinwire.NetAddr{Services: uint64(p.cfg.Services), IP: localAddr, Port: 0},
		Nonce:           nonce,
		UserAgent:       p.cfg.userAgent(),
		StartHeight:     p.cfg.CurrentBlockHeight,
		// Relay is false: an SPV wallet filters via bloom, never wants
		// unsolicited inv broadcasts (spec.md §4.2: "relay flag (0 when
		// using bloom filter)").
		Relay: false,
	}
	if err := bitcoinwire.WriteFrame(conn, p.cfg.Magic, bitcoinwire.CmdVersion, mustEncode(out)); err != nil {
		return wrapDialError(err)
	}

	var gotVersion, gotVerAck, sentVerAck bool
	for !gotVerAck || !sentVerAck {
		cmd, payload, err := bitcoinwire.ReadFrame(conn, p.cfg.Magic)
		if err != nil {
			return wrapDialError(err)
		}
		switch cmd {
		case bitcoinwire.CmdVersion:
			if gotVersion {
				// Duplicate version: recoverable, ignore (spec.md §7:
				// "duplicate verack" is explicitly listed; a duplicate
				// version is the same class of redundant-but-harmless
				// message).
				continue
			}
			var v bitcoinwire.VersionMsg
			if err := v.Decode(bytes.NewReader(payload)); err != nil {
				return fmt.Errorf("%w: %v", ErrProtocol, err)
			}
			if v.ProtocolVersion < bitcoinwire.MinAcceptableProtocolVersion {
				return fmt.Errorf("%w: remote protocol version %d below minimum", ErrProtocol, v.ProtocolVersion)
			}
			if v.Nonce == nonce {
				return fmt.Errorf("%w: self-connection detected", ErrProtocol)
			}
			gotVersion = true
			p.mu.Lock()
			p.remoteVersion = v.ProtocolVersion
			p.remoteServices = Services(v.Services)
			p.remoteUserAgent = v.UserAgent
			p.remoteLastBlock = v.StartHeight
			p.mu.Unlock()

			if err := bitcoinwire.WriteFrame(conn, p.cfg.Magic, bitcoinwire.CmdVerAck, nil); err != nil {
				return wrapDialError(err)
			}
			sentVerAck = true

		case bitcoinwire.CmdVerAck:
			if !gotVersion {
				return fmt.Errorf("%w: verack before version", ErrProtocol)
			}
			gotVerAck = true

		default:
			// Anything else before the handshake completes is a protocol
			// violation: the remote must speak version/verack first.
			return fmt.Errorf("%w: unexpected message %q during handshake", ErrProtocol, cmd)
		}
	}
	return nil
}

func mustEncode(m bitcoinwire.Message) []byte {
	buf, err := bitcoinwire.EncodePayload(m)
	if err != nil {
		// EncodePayload only fails if the in-memory message is malformed,
		// which cannot happen for a VersionMsg built from valid fields.
		panic(err)
	}
	return buf
}
