// Package peer implements the per-connection Bitcoin wire protocol state
// machine: TCP lifecycle, version handshake, message framing, bloom-filtered
// relay dialogs, ping/pong liveness, and callback-driven delivery to a
// higher-level SPV node manager. It generalizes original_source/BWPeer.h's
// session half (the identity half lives in id.go) into idiomatic Go: one
// goroutine per peer handles reads and timers, sends are serialized by a
// mutex and may be issued from any goroutine, and every externally visible
// event is delivered through the EventHandler interface.
package peer

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
	"github.com/loafwallet/spvcore/internal/spvlog"
)

var log = spvlog.Logger()

// Peer drives one Bitcoin connection. The zero value is not usable; build
// one with NewPeer.
type Peer struct {
	cfg Config

	id ID // remote address; valid once known (set by Connect or NewInboundPeer-style callers)

	mu     sync.Mutex // guards everything below and serializes writes to conn
	conn   net.Conn
	status Status

	localNonce uint64
	sentVerAck bool
	gotVersion bool
	gotVerAck  bool

	remoteVersion   int32
	remoteServices  Services
	remoteUserAgent string
	remoteLastBlock int32
	feePerKb        int64

	needsFilterUpdate bool
	lastFilterLoad    *bitcoinwire.FilterLoadMsg

	inv *invState

	pendingPings []pendingPing
	pingRTT      time.Duration

	mempool *pendingMempool

	disconnectErr   error
	disconnectOnce  sync.Once
	disconnectTimer *time.Timer
	closed          chan struct{}
	wg              sync.WaitGroup
}

// NewPeer constructs a Peer in the Disconnected state. cfg.Handler, if nil,
// is replaced with NopEventHandler{} (spec.md §4.4: every callback is
// individually optional).
func NewPeer(cfg Config) *Peer {
	cfg.Handler = cfg.handler()
	return &Peer{
		cfg:    cfg,
		status: StatusDisconnected,
		inv:    newInvState(),
		closed: make(chan struct{}),
	}
}

// Host returns the remote address this peer is (or was) connected to, in
// "host:port" form, matching BWPeerHost.
func (p *Peer) Host() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id.String()
}

// UserAgent returns the remote's advertised user agent string, valid once
// Connected (BWPeerUserAgent).
func (p *Peer) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteUserAgent
}

// Version returns the remote's negotiated protocol version (BWPeerVersion).
func (p *Peer) Version() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteVersion
}

// LastBlock returns the remote's last reported best block height
// (BWPeerLastBlock).
func (p *Peer) LastBlock() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteLastBlock
}

// FeePerKb returns the remote's minimum relay fee as last reported via
// feefilter, or zero if never reported (BWPeerFeePerKb).
func (p *Peer) FeePerKb() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feePerKb
}

// PingTime returns the rolling ping round-trip estimate (BWPeerPingTime).
func (p *Peer) PingTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pingRTT
}

// OutstandingTxs returns the number of txs we've requested via getdata but
// have not yet seen answered by a tx or notfound message.
func (p *Peer) OutstandingTxs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inv.txRequested)
}

// OutstandingBlocks returns the number of filtered blocks we've requested
// via getdata but have not yet seen answered by a merkleblock or notfound
// message. A caller polling this after IdleTimeout has elapsed can treat a
// nonzero value as a stalled peer worth disconnecting.
func (p *Peer) OutstandingBlocks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inv.blockRequested)
}

// Status returns the current session status.
func (p *Peer) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Services returns the remote's advertised service bitmask.
func (p *Peer) Services() Services {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteServices
}

// EarliestKeyTime returns the value supplied at construction
// (BWPeerSetEarliestKeyTime's counterpart accessor).
func (p *Peer) EarliestKeyTime() uint32 { return p.cfg.EarliestKeyTime }

// Connect dials addr, performs the version/verack handshake, and on success
// starts the receive-loop goroutine and transitions to Connected before
// returning. On any failure the session ends Disconnected and the same
// error is delivered to EventHandler.Disconnected (spec.md §4.2 Handshake,
// §8 scenario 3).
func (p *Peer) Connect(ctx context.Context, addr netip.AddrPort) error {
	p.mu.Lock()
	if p.status != StatusDisconnected {
		p.mu.Unlock()
		return fmt.Errorf("peer: Connect called while status=%s", p.status)
	}
	p.status = StatusConnecting
	p.id = NewID(addr.Addr(), addr.Port())
	p.mu.Unlock()

	dialer := net.Dialer{Timeout: p.cfg.connectTimeout()}
	conn, err := dialer.DialContext(ctx, "tcp", p.id.String())
	if err != nil {
		return p.abort(wrapDialError(err))
	}

	return p.attach(conn)
}

// attach runs the handshake and tarpit check over an already-established
// conn and, on success, transitions to Connected and starts the receive
// loop. Split out from Connect so tests can exercise the state machine over
// an in-memory net.Pipe without a real dial.
func (p *Peer) attach(conn net.Conn) error {
	if err := p.handshake(conn); err != nil {
		conn.Close()
		return p.abort(err)
	}

	if err := p.checkTarpit(); err != nil {
		conn.Close()
		return p.abort(err)
	}

	p.mu.Lock()
	p.conn = conn
	p.status = StatusConnected
	p.mu.Unlock()

	p.wg.Add(1)
	go p.receiveLoop()

	p.cfg.handler().Connected(p)
	return nil
}

// abort transitions a not-yet-Connected session straight to Disconnected
// and reports err unchanged; a dial or handshake that ran out of time
// reaches it as ErrTimedOut through wrapDialError.
func (p *Peer) abort(err error) error {
	p.mu.Lock()
	p.status = StatusDisconnected
	p.mu.Unlock()
	p.cfg.handler().Disconnected(p, err)
	p.cfg.handler().ThreadCleanup(p)
	return err
}

// Disconnect closes the connection and ends the session. It is idempotent
// (spec.md §5 Cancellation); only the first call's err is reported to
// Disconnected. A nil err means an orderly disconnect. It blocks until the
// session's receive-loop goroutine has exited, so it must never be called
// from that goroutine itself — internal call sites use disconnectCore
// instead.
func (p *Peer) Disconnect(err error) {
	p.disconnectCore(err)
	p.wg.Wait()
}

// disconnectCore performs the idempotent teardown without waiting for the
// receive-loop goroutine, so it is safe to call from that goroutine's own
// error paths as well as from sendMessage regardless of caller.
func (p *Peer) disconnectCore(err error) {
	p.disconnectOnce.Do(func() {
		p.mu.Lock()
		conn := p.conn
		p.disconnectErr = err
		p.mu.Unlock()

		if conn != nil {
			conn.Close()
		}
		close(p.closed)

		p.flushPendingPings()
		p.flushPendingMempool()

		p.mu.Lock()
		p.status = StatusDisconnected
		p.mu.Unlock()

		p.cfg.handler().Disconnected(p, err)
		p.cfg.handler().ThreadCleanup(p)
	})
}

// ScheduleDisconnect arms a one-shot deadline after which the session
// disconnects with ErrTimedOut. Calling it again replaces the previous
// deadline. A negative d cancels any pending deadline (spec.md §4.2
// ScheduleDisconnect).
func (p *Peer) ScheduleDisconnect(d time.Duration) {
	p.mu.Lock()
	if p.disconnectTimer != nil {
		p.disconnectTimer.Stop()
		p.disconnectTimer = nil
	}
	if d >= 0 {
		p.disconnectTimer = time.AfterFunc(d, func() {
			p.Disconnect(ErrTimedOut)
		})
	}
	p.mu.Unlock()
}

// sendMessage frames and writes m on the connection, serialized against
// every other sender by p.mu (spec.md §5: "sends are performed on the
// caller's thread and serialized by an internal per-peer mutex").
func (p *Peer) sendMessage(m bitcoinwire.Message) error {
	p.mu.Lock()
	conn := p.conn
	magic := p.cfg.Magic
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("peer: not connected")
	}

	buf, err := bitcoinwire.EncodePayload(m)
	if err != nil {
		return err
	}
	if err := bitcoinwire.WriteFrame(conn, magic, m.Command(), buf); err != nil {
		p.disconnectCore(wrapDialError(err))
		return err
	}
	return nil
}

func randomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// wrapDialError classifies a net package error into the failure taxonomy of
// spec.md §4.2 so Disconnected callbacks never have to inspect net.Error
// themselves.
func wrapDialError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrConnReset, err)
	}
	var sysErr *net.OpError
	if errors.As(err, &sysErr) {
		if sysErr.Op == "dial" {
			return fmt.Errorf("%w: %v", ErrConnRefused, err)
		}
		return fmt.Errorf("%w: %v", ErrConnReset, err)
	}
	return err
}
