package paymentproto

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// TestEncryptedMessageRoundTrip exercises spec.md §8 scenario 6: sender
// keypair S, receiver keypair R, Decrypt with Rpriv recovers the plaintext
// and Decrypt with an unrelated key fails.
func TestEncryptedMessageRoundTrip(t *testing.T) {
	senderPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	receiverPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	plaintext := []byte("serialized inner ProtocolMessage bytes")
	const nonce = uint64(1_700_000_000_000_000)

	msg, err := NewEncryptedProtocolMessage(MessageTypePaymentRequest, plaintext, senderPriv,
		receiverPriv.PubKey(), true, nonce, []byte("exchange-id"))
	require.NoError(t, err)

	ok, err := msg.Verify(senderPriv.PubKey())
	require.NoError(t, err)
	require.True(t, ok)

	got, err := msg.Decrypt(receiverPriv)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)

	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	_, err = msg.Decrypt(otherPriv)
	require.Error(t, err)
}

func TestEncryptedMessageTamperDetection(t *testing.T) {
	senderPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	receiverPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg, err := NewEncryptedProtocolMessage(MessageTypePayment, []byte("payment bytes"), senderPriv,
		receiverPriv.PubKey(), true, 42, nil)
	require.NoError(t, err)

	msg.Message[0] ^= 0xFF
	_, err = msg.Decrypt(receiverPriv)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptedMessageRoundTripThroughWire(t *testing.T) {
	senderPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	receiverPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg, err := NewEncryptedProtocolMessage(MessageTypeACK, []byte("ack bytes"), receiverPriv,
		senderPriv.PubKey(), false, 7, []byte("id"))
	require.NoError(t, err)

	encoded := msg.Encode()
	parsed, err := ParseEncryptedProtocolMessage(encoded)
	require.NoError(t, err)

	got, err := parsed.Decrypt(receiverPriv)
	require.NoError(t, err)
	require.Equal(t, []byte("ack bytes"), got)

	ok, err := parsed.Verify(receiverPriv.PubKey())
	require.NoError(t, err)
	require.True(t, ok)
}
