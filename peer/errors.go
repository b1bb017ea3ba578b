package peer

import "errors"

// Failure taxonomy delivered through EventHandler.Disconnected (spec §4.2,
// "Failure taxonomy"). A nil error means an orderly, caller-initiated
// disconnect.
var (
	// ErrConnRefused means the remote refused the TCP connection.
	ErrConnRefused = errors.New("peer: connection refused")

	// ErrTimedOut means a scheduled deadline (connect, handshake, ping,
	// or ScheduleDisconnect) expired.
	ErrTimedOut = errors.New("peer: timed out")

	// ErrConnReset means the TCP connection was reset by the remote or
	// the network.
	ErrConnReset = errors.New("peer: connection reset")

	// ErrProtocol means the remote violated the wire protocol (bad
	// framing, invalid handshake sequence, ping nonce mismatch, etc).
	ErrProtocol = errors.New("peer: protocol violation")

	// ErrMisbehaving means the remote is well-formed but adversarial or
	// useless (tarpit detection, refusing a bloom filter it advertised
	// support for).
	ErrMisbehaving = errors.New("peer: misbehaving peer")

	// ErrUnreachable means the EventHandler's NetworkIsReachable hook
	// reported that no network path is currently available.
	ErrUnreachable = errors.New("peer: network unreachable")
)
