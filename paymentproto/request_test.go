package paymentproto

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T, priv *btcec.PrivateKey) []byte {
	t.Helper()
	ecdsaPriv := priv.ToECDSA()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "paymentproto-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &ecdsaPriv.PublicKey, ecdsaPriv)
	require.NoError(t, err)
	return der
}

// TestSignedPaymentRequest exercises spec.md §8 scenario 5.
func TestSignedPaymentRequest(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	der := selfSignedCert(t, priv)
	pkiData := EncodeCertificateChain([][]byte{der})

	memo := "Thanks"
	details := &PaymentDetails{
		Outputs: []Output{{Amount: 10_000, Script: []byte{0x76, 0xa9}}},
		Time:    1_700_000_000,
		Memo:    &memo,
	}

	req := NewPaymentRequest(PkiX509SHA256, pkiData, details)
	require.NoError(t, req.Sign(priv))

	leaf, err := req.LeafPublicKey()
	require.NoError(t, err)
	ok, err := req.Verify(leaf)
	require.NoError(t, err)
	require.True(t, ok)

	cert, err := req.RequestCert(0)
	require.NoError(t, err)
	require.Equal(t, der, cert)

	_, err = req.RequestCert(1)
	require.ErrorIs(t, err, ErrCertIndexOutOfRange)

	// Appending one byte to the signed memo must invalidate the signature.
	flipped := "Thanks!"
	req.Details.Memo = &flipped
	req.serializedDetails = req.Details.Encode()
	ok, err = req.Verify(leaf)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPaymentRequestRoundTrip(t *testing.T) {
	details := &PaymentDetails{Time: 1_700_000_000, Outputs: []Output{{Amount: 1, Script: []byte{0x01}}}}
	req := NewPaymentRequest(PkiNone, nil, details)

	encoded := req.Encode()
	parsed, err := ParsePaymentRequest(encoded)
	require.NoError(t, err)
	require.Equal(t, PkiNone, parsed.PkiType)
	require.Equal(t, int64(defaultRequestVersion), parsed.Version)
	require.Equal(t, details.Time, parsed.Details.Time)
	require.Nil(t, parsed.Digest())
}

func TestPkiTypeString(t *testing.T) {
	require.Equal(t, "none", PkiNone.String())
	require.Equal(t, "x509+sha1", PkiX509SHA1.String())
	require.Equal(t, "x509+sha256", PkiX509SHA256.String())

	t1, err := parsePkiType("x509+sha256")
	require.NoError(t, err)
	require.Equal(t, PkiX509SHA256, t1)

	_, err = parsePkiType("bogus")
	require.ErrorIs(t, err, ErrBadPkiType)
}
