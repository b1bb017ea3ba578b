package peer

import (
	"time"

	"github.com/loafwallet/spvcore/internal/bitcoinwire"
)

// Default session timeouts (spec.md §9 Open Questions (c): magnitudes are
// not stated in original_source/BWPeer.h, so these are pinned here).
const (
	DefaultConnectTimeout   = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultIdleTimeout      = 10 * time.Minute
)

// pingRTTAlpha is the exponential-moving-average weight applied to each new
// pong sample (spec.md §4.2: "exponential moving average, α = 0.5").
const pingRTTAlpha = 0.5

// Config supplies the network parameters and local announcement fields a
// Peer needs at construction, mirroring BWPeerNew/BWPeerSetEarliestKeyTime/
// BWPeerSetCurrentBlockHeight from original_source/BWPeer.h collapsed into
// one value, the way btcsuite/btcd/peer.Config aggregates dial parameters.
type Config struct {
	// Magic selects the network (mainnet/testnet/litecoin/...) and is used
	// verbatim as the frame magic for every message exchanged.
	Magic uint32

	// Services are the capabilities advertised in our outgoing version
	// message. Spec.md §4.2 sends 0 by default (an SPV wallet offers no
	// services of its own).
	Services Services

	// ProtocolVersion overrides the advertised protocol version. Zero
	// selects bitcoinwire.ProtocolVersion.
	ProtocolVersion int32

	// UserAgent overrides the advertised user agent. Empty selects
	// bitcoinwire.UserAgent.
	UserAgent string

	// EarliestKeyTime is the wallet's earliest key creation time, used by
	// callers (not this package) to decide which blocks may be skipped by
	// a bloom filter. Stored for the Peer's EarliestKeyTime accessor.
	EarliestKeyTime uint32

	// CurrentBlockHeight is the caller's best known chain height, used by
	// the handshake's outgoing version message and by tarpit detection
	// (spec.md §4.2: "If the peer reports a best-block height below our
	// currentBlockHeight by more than 7 blocks, disconnect").
	CurrentBlockHeight int32

	// Handler receives session events. A nil Handler is replaced with
	// NopEventHandler{}.
	Handler EventHandler

	// ConnectTimeout, HandshakeTimeout, PingInterval, and IdleTimeout
	// override the package defaults above when non-zero.
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	IdleTimeout      time.Duration
}

func (c Config) protocolVersion() int32 {
	if c.ProtocolVersion != 0 {
		return c.ProtocolVersion
	}
	return bitcoinwire.ProtocolVersion
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return bitcoinwire.UserAgent
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout != 0 {
		return c.ConnectTimeout
	}
	return DefaultConnectTimeout
}

func (c Config) handshakeTimeout() time.Duration {
	if c.HandshakeTimeout != 0 {
		return c.HandshakeTimeout
	}
	return DefaultHandshakeTimeout
}

func (c Config) pingInterval() time.Duration {
	if c.PingInterval != 0 {
		return c.PingInterval
	}
	return DefaultPingInterval
}

func (c Config) idleTimeout() time.Duration {
	if c.IdleTimeout != 0 {
		return c.IdleTimeout
	}
	return DefaultIdleTimeout
}

func (c Config) handler() EventHandler {
	if c.Handler != nil {
		return c.Handler
	}
	return NopEventHandler{}
}
