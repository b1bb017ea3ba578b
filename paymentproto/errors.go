// Package paymentproto implements the BIP70 Payment Protocol message family
// (PaymentDetails, PaymentRequest, Payment, PaymentACK) and its BIP75
// extensions (InvoiceRequest, ProtocolMessage, EncryptedProtocolMessage)
// over a hand-rolled subset of the protobuf wire format, per spec.md §4.3.
package paymentproto

import "errors"

// Errors returned by the codec. Every decode/verify/decrypt failure in this
// package returns one of these (optionally wrapped with %w) so callers can
// branch on category without string matching.
var (
	// ErrTruncatedField is returned when a field's declared length, or a
	// varint's continuation bit, runs past the end of the buffer.
	ErrTruncatedField = errors.New("paymentproto: truncated field")

	// ErrUnknownWireType is returned for a wire type outside {0,1,2,5};
	// group-encoded fields (3,4) are never used by these messages.
	ErrUnknownWireType = errors.New("paymentproto: unsupported wire type")

	// ErrMissingField is returned when a required field (details,
	// serializedMessage, pubkeys, nonce, ...) is absent after parsing.
	ErrMissingField = errors.New("paymentproto: missing required field")

	// ErrBadPkiType is returned for a pkiType string outside the known set.
	ErrBadPkiType = errors.New("paymentproto: unrecognized pki type")

	// ErrCertIndexOutOfRange is returned by RequestCert for an index with
	// no corresponding certificate.
	ErrCertIndexOutOfRange = errors.New("paymentproto: certificate index out of range")

	// ErrNoCertificates is returned when certificate extraction is
	// attempted on a message whose pkiType is none, or whose certificate
	// chain holds no certificate.
	ErrNoCertificates = errors.New("paymentproto: pkiData does not contain a certificate chain")

	// ErrSignatureInvalid is returned by Verify when the signature bytes do
	// not parse as a DER-encoded ECDSA signature. A well-formed signature
	// that does not validate against the recomputed digest yields
	// (false, nil) instead.
	ErrSignatureInvalid = errors.New("paymentproto: signature verification failed")

	// ErrDecryptionFailed is returned by Decrypt on HMAC authentication
	// failure — the ciphertext or authentication tag was tampered with.
	ErrDecryptionFailed = errors.New("paymentproto: decryption authentication failed")

	// ErrNoPrivateKey is returned by Decrypt when the public key of the
	// supplied private key matches neither the message's receiver nor its
	// sender public key.
	ErrNoPrivateKey = errors.New("paymentproto: exactly one of sender/receiver key must be a private key")

	// ErrUnknownMessageType is returned when a ProtocolMessage/
	// EncryptedProtocolMessage's messageType enum value is not one of the
	// five known values (0 through 4).
	ErrUnknownMessageType = errors.New("paymentproto: unrecognized message type")
)
