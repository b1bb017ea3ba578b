package peer

import (
	"bytes"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// countingHandler records callback invocations for assertions without
// pulling in a mocking library, matching the lightweight fake-over-mock
// style of the pack's other test files.
type countingHandler struct {
	NopEventHandler

	mu              sync.Mutex
	connectedCalls  int32
	disconnectErr   error
	disconnectCalls int32
}

func (h *countingHandler) Connected(*Peer) {
	atomic.AddInt32(&h.connectedCalls, 1)
}

func (h *countingHandler) Disconnected(p *Peer, err error) {
	h.mu.Lock()
	h.disconnectErr = err
	h.mu.Unlock()
	atomic.AddInt32(&h.disconnectCalls, 1)
}

// remoteHandshake drives the far end of a net.Pipe through the version/
// verack sequence a well-behaved remote performs, returning the decoded
// version the client sent.
func remoteHandshake(t *testing.T, conn net.Conn, magic uint32, reply bitcoinwire.VersionMsg) bitcoinwire.VersionMsg {
	t.Helper()

	cmd, payload, err := bitcoinwire.ReadFrame(conn, magic)
	require.NoError(t, err)
	require.Equal(t, bitcoinwire.CmdVersion, cmd)

	var clientVersion bitcoinwire.VersionMsg
	require.NoError(t, clientVersion.Decode(bytes.NewReader(payload)))

	buf, err := bitcoinwire.EncodePayload(&reply)
	require.NoError(t, err)
	require.NoError(t, bitcoinwire.WriteFrame(conn, magic, bitcoinwire.CmdVersion, buf))

	cmd, _, err = bitcoinwire.ReadFrame(conn, magic)
	require.NoError(t, err)
	require.Equal(t, bitcoinwire.CmdVerAck, cmd)

	require.NoError(t, bitcoinwire.WriteFrame(conn, magic, bitcoinwire.CmdVerAck, nil))

	return clientVersion
}

func TestConnectHandshakeScenario(t *testing.T) {
	clientConn, remoteConn := net.Pipe()
	defer remoteConn.Close()

	handler := &countingHandler{}
	cfg := Config{
		Magic:              bitcoinwire.TestNet3Magic,
		CurrentBlockHeight: 100,
		Handler:            handler,
		HandshakeTimeout:   2 * time.Second,
	}
	p := NewPeer(cfg)
	p.id = NewID(netip.MustParseAddr("127.0.0.1"), 18333)

	errCh := make(chan error, 1)
	go func() { errCh <- p.attach(clientConn) }()

	remoteVersion := bitcoinwire.VersionMsg{
		ProtocolVersion: 70002,
		Services:        uint64(ServiceNodeNetwork | ServiceNodeBloom),
		UserAgent:       "/remote:1.0/",
		StartHeight:     100,
		Relay:           true,
	}
	remoteHandshake(t, remoteConn, cfg.Magic, remoteVersion)

	require.NoError(t, <-errCh)
	require.Equal(t, StatusConnected, p.Status())
	require.Equal(t, int32(70002), p.Version())
	require.Equal(t, int32(1), atomic.LoadInt32(&handler.connectedCalls))
	require.True(t, p.Services().Has(ServiceNodeBloom))

	p.Disconnect(nil)
	require.Equal(t, StatusDisconnected, p.Status())
}

func TestConnectHandshakeRejectsLowVersion(t *testing.T) {
	clientConn, remoteConn := net.Pipe()
	defer remoteConn.Close()

	handler := &countingHandler{}
	cfg := Config{
		Magic:              bitcoinwire.TestNet3Magic,
		CurrentBlockHeight: 0,
		Handler:            handler,
		HandshakeTimeout:   2 * time.Second,
	}
	p := NewPeer(cfg)
	p.id = NewID(netip.MustParseAddr("127.0.0.1"), 18333)

	errCh := make(chan error, 1)
	go func() { errCh <- p.attach(clientConn) }()

	cmd, _, rerr := bitcoinwire.ReadFrame(remoteConn, cfg.Magic)
	require.NoError(t, rerr)
	require.Equal(t, bitcoinwire.CmdVersion, cmd)

	low := bitcoinwire.VersionMsg{ProtocolVersion: 70001, StartHeight: 0}
	buf, berr := bitcoinwire.EncodePayload(&low)
	require.NoError(t, berr)
	require.NoError(t, bitcoinwire.WriteFrame(remoteConn, cfg.Magic, bitcoinwire.CmdVersion, buf))

	err := <-errCh
	require.ErrorIs(t, err, ErrProtocol)
	require.Equal(t, StatusDisconnected, p.Status())
	require.Equal(t, int32(0), atomic.LoadInt32(&handler.connectedCalls))
}

func TestPingPongFIFOOrdering(t *testing.T) {
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

	var order []int
	var mu sync.Mutex
	done := func(n int) func(interface{}, time.Duration, bool) {
		return func(info interface{}, rtt time.Duration, ok bool) {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}
	}

	sendErrCh := make(chan error, 1)
	go func() { sendErrCh <- p.SendPing(nil, done(1)) }()
	cmd, payload, err := bitcoinwire.ReadFrame(remoteConn, cfg.Magic)
	require.NoError(t, err)
	require.Equal(t, bitcoinwire.CmdPing, cmd)
	var ping1 bitcoinwire.PingMsg
	require.NoError(t, ping1.Decode(bytes.NewReader(payload)))
	require.NoError(t, <-sendErrCh)

	go func() { sendErrCh <- p.SendPing(nil, done(2)) }()
	_, payload2, err := bitcoinwire.ReadFrame(remoteConn, cfg.Magic)
	require.NoError(t, err)
	var ping2 bitcoinwire.PingMsg
	require.NoError(t, ping2.Decode(bytes.NewReader(payload2)))
	require.NoError(t, <-sendErrCh)

	buf, _ := bitcoinwire.EncodePayload(&bitcoinwire.PongMsg{Nonce: ping1.Nonce})
	require.NoError(t, bitcoinwire.WriteFrame(remoteConn, cfg.Magic, bitcoinwire.CmdPong, buf))
	buf, _ = bitcoinwire.EncodePayload(&bitcoinwire.PongMsg{Nonce: ping2.Nonce})
	require.NoError(t, bitcoinwire.WriteFrame(remoteConn, cfg.Magic, bitcoinwire.CmdPong, buf))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	require.Equal(t, []int{1, 2}, order)
	mu.Unlock()
	require.Greater(t, p.PingTime(), time.Duration(0))

	p.Disconnect(nil)
}

func TestPingPongNonceMismatchDisconnects(t *testing.T) {
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

	sendErrCh := make(chan error, 1)
	go func() { sendErrCh <- p.SendPing(nil, nil) }()
	_, _, err := bitcoinwire.ReadFrame(remoteConn, cfg.Magic)
	require.NoError(t, err)
	require.NoError(t, <-sendErrCh)

	buf, _ := bitcoinwire.EncodePayload(&bitcoinwire.PongMsg{Nonce: 0xdeadbeef})
	require.NoError(t, bitcoinwire.WriteFrame(remoteConn, cfg.Magic, bitcoinwire.CmdPong, buf))

	require.Eventually(t, func() bool {
		return p.Status() == StatusDisconnected
	}, time.Second, 5*time.Millisecond)

	mu := &handler.mu
	mu.Lock()
	defer mu.Unlock()
	require.ErrorIs(t, handler.disconnectErr, ErrProtocol)
}
