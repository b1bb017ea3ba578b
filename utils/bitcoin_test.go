package utils

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func testnetPubKeyHex(t *testing.T) string {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

func TestCreateMultiSigProducesP2SHAddress(t *testing.T) {
	buyer := testnetPubKeyHex(t)
	seller := testnetPubKeyHex(t)
	escrowKey := testnetPubKeyHex(t)

	ms, err := CreateMultiSig(buyer, seller, escrowKey)
	require.NoError(t, err)
	require.NotEmpty(t, ms.Address)
	require.NotEmpty(t, ms.RedeemScript)

	script, err := AddressToScript(ms.Address)
	require.NoError(t, err)
	require.NotEmpty(t, script)
}

func TestCreateMultiSigRejectsBadKey(t *testing.T) {
	_, err := CreateMultiSig("not-hex", testnetPubKeyHex(t), testnetPubKeyHex(t))
	require.Error(t, err)
}

func TestPubKeyToAddress(t *testing.T) {
	addr, err := PubKeyToAddress(testnetPubKeyHex(t))
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	script, err := AddressToScript(addr)
	require.NoError(t, err)
	require.NotEmpty(t, script)
}

func TestVerifyTransactionUnknownID(t *testing.T) {
	_, err := VerifyTransaction("deadbeef")
	require.Error(t, err)
}

func TestVerifyTransactionKnownID(t *testing.T) {
	ok, err := VerifyTransaction("26dd4663518b3e24872fd5635fd889a8a0e1c232b8d488868ac378a0a2d28fb1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateTransactionBuildsOutput(t *testing.T) {
	addr, err := PubKeyToAddress(testnetPubKeyHex(t))
	require.NoError(t, err)

	tx, err := CreateTransaction(addr, 50000, "somekey")
	require.NoError(t, err)
	require.NotEmpty(t, tx.TxID)
	require.Equal(t, int64(1000), tx.Fee)
}
