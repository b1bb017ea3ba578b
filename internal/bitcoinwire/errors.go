// Package bitcoinwire implements the length-delimited, checksummed framing
// and the typed message coders used by the Bitcoin peer-to-peer wire
// protocol (en.bitcoin.it/wiki/Protocol_specification, BIPs 31, 35, 37, 61,
// 111, 130, 133).
package bitcoinwire

import "errors"

// Errors returned by frame and primitive decoding. Every one of them is
// fatal to the session that produced it; the peer package maps these to its
// own disconnect taxonomy rather than inspecting error strings.
var (
	// ErrTruncatedFrame is returned when a read ends before a complete
	// frame (header or payload) has been consumed.
	ErrTruncatedFrame = errors.New("bitcoinwire: truncated frame")

	// ErrBadMagic is returned when a frame's magic number does not match
	// the network the session was constructed for.
	ErrBadMagic = errors.New("bitcoinwire: unexpected network magic")

	// ErrBadChecksum is returned when a frame's checksum does not match
	// the first four bytes of SHA-256(SHA-256(payload)).
	ErrBadChecksum = errors.New("bitcoinwire: checksum mismatch")

	// ErrOversizePayload is returned when a frame declares a payload
	// length greater than MaxPayloadLength.
	ErrOversizePayload = errors.New("bitcoinwire: payload exceeds maximum length")

	// ErrMalformedVarInt is returned when a varint's discriminant byte
	// requires more bytes than remain in the input.
	ErrMalformedVarInt = errors.New("bitcoinwire: malformed varint")

	// ErrMalformedVarString is returned when a var-string's declared
	// length would read past the end of the input.
	ErrMalformedVarString = errors.New("bitcoinwire: malformed var-string")

	// ErrNonCanonicalVarInt is returned when a varint is encoded with
	// more bytes than its value strictly requires.
	ErrNonCanonicalVarInt = errors.New("bitcoinwire: non-canonical varint encoding")
)
