package escrow

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// knownTxID must stay a valid 64-character hex string matching an entry in
// utils.knownTransactions; a truncated ID here silently breaks VerifyPayment
// for every test in this file, the same way it broke the wired escrow flow.
const knownTxID = "26dd4663518b3e24872fd5635fd889a8a0e1c232b8d488868ac378a0a2d28fb1"

func pubKeyHex(t *testing.T) string {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

func createTestEscrow(t *testing.T, buyer, seller, escrowKey string, amount int64) *Escrow {
	t.Helper()
	body, err := json.Marshal(EscrowRequest{
		BuyerPubKey:  buyer,
		SellerPubKey: seller,
		EscrowPubKey: escrowKey,
		Amount:       amount,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/escrow/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	CreateEscrow(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Escrow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	return &created
}

func verifyTestPayment(escrowID, txID string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"escrow_id": escrowID, "txid": txID})
	req := httptest.NewRequest(http.MethodPost, "/api/escrow/verify-payment", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	VerifyPayment(rec, req)
	return rec
}

func releaseTestRequest(escrowID, party, pubKey string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(ReleaseRequest{
		EscrowID:   escrowID,
		PrivateKey: "demo-priv",
		Signature:  "demo-sig",
		Party:      party,
		PublicKey:  pubKey,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/escrow/release", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	ReleaseEscrow(rec, req)
	return rec
}

// TestVerifyPaymentAndReleaseFlow drives a full create -> verify -> 2-of-3
// release round trip. It would fail immediately if knownTxID above were
// truncated (VerifyPayment would 404/400 instead of funding the escrow),
// guarding the regression that once broke this path silently.
func TestVerifyPaymentAndReleaseFlow(t *testing.T) {
	buyer := pubKeyHex(t)
	seller := pubKeyHex(t)
	escrowKey := pubKeyHex(t)

	created := createTestEscrow(t, buyer, seller, escrowKey, 50000)
	require.NotEmpty(t, created.MultiSigAddress)

	rec := verifyTestPayment(created.ID, knownTxID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A release signature claiming to be "buyer" but submitting the
	// seller's public key must be rejected before any signature is
	// recorded.
	mismatched := releaseTestRequest(created.ID, "buyer", seller)
	require.Equal(t, http.StatusBadRequest, mismatched.Code)

	first := releaseTestRequest(created.ID, "buyer", buyer)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := releaseTestRequest(created.ID, "seller", seller)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(second.Body).Decode(&resp))
	require.Equal(t, "released", resp["status"])
	require.NotEmpty(t, resp["txid"])
}

// TestVerifyPaymentRejectsTamperedAmount confirms VerifyPayment re-derives
// the payment binding from escrow.PaymentRequestHex rather than trusting
// escrow.Amount on its own: corrupting the stored amount after creation
// must fail verification even though the known transaction ID is valid.
func TestVerifyPaymentRejectsTamperedAmount(t *testing.T) {
	buyer := pubKeyHex(t)
	seller := pubKeyHex(t)
	escrowKey := pubKeyHex(t)

	created := createTestEscrow(t, buyer, seller, escrowKey, 10000)

	escrowsMutex.Lock()
	escrows[created.ID].Amount = 999999
	escrowsMutex.Unlock()

	rec := verifyTestPayment(created.ID, knownTxID)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestReleaseEscrowRejectsCorruptedRedeemScript confirms ReleaseEscrow
// actually exercises the stored RedeemScript rather than carrying it as
// inert bookkeeping: a RedeemScript that no longer hashes to the escrow's
// own multisig address must block release.
func TestReleaseEscrowRejectsCorruptedRedeemScript(t *testing.T) {
	buyer := pubKeyHex(t)
	seller := pubKeyHex(t)
	escrowKey := pubKeyHex(t)

	created := createTestEscrow(t, buyer, seller, escrowKey, 25000)

	escrowsMutex.Lock()
	stored := escrows[created.ID]
	stored.Status = "funded"
	stored.RedeemScript = []byte{0x51}
	escrowsMutex.Unlock()

	rec := releaseTestRequest(created.ID, "buyer", buyer)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
