package paymentproto

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func TestInvoiceRequestSignAndVerify(t *testing.T) {
	senderPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	der := selfSignedCert(t, senderPriv)
	pkiData := EncodeCertificateChain([][]byte{der})

	req := NewInvoiceRequest(senderPriv.PubKey(), 50_000, PkiX509SHA256, pkiData)
	require.NoError(t, req.Sign(senderPriv))

	ok, err := req.Verify(senderPriv.PubKey())
	require.NoError(t, err)
	require.True(t, ok)

	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	ok, err = req.Verify(otherPriv.PubKey())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvoiceRequestRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	memo := "invoice memo"

	req := NewInvoiceRequest(priv.PubKey(), 1, PkiNone, nil)
	req.Memo = &memo

	encoded := req.Encode()
	parsed, err := ParseInvoiceRequest(encoded)
	require.NoError(t, err)
	require.Equal(t, uint64(1), parsed.Amount)
	require.Equal(t, "invoice memo", *parsed.Memo)
	require.Nil(t, parsed.Digest())
}

func TestInvoiceRequestCertOutOfRange(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	der := selfSignedCert(t, priv)
	req := NewInvoiceRequest(priv.PubKey(), 0, PkiX509SHA256, EncodeCertificateChain([][]byte{der}))

	cert, err := req.RequestCert(0)
	require.NoError(t, err)
	require.Equal(t, der, cert)

	_, err = req.RequestCert(5)
	require.ErrorIs(t, err, ErrCertIndexOutOfRange)
}
