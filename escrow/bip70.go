package escrow

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/loafwallet/spvcore/paymentproto"
	"github.com/loafwallet/spvcore/utils"
)

// CreateBIP70PaymentRequest creates an unsigned BIP70 payment request paying
// amount satoshis to address, expiring one hour from now.
func CreateBIP70PaymentRequest(address string, amount int64) (*paymentproto.PaymentRequest, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	script, err := utils.AddressToScript(address)
	if err != nil {
		return nil, fmt.Errorf("failed to build output script: %v", err)
	}

	requestID := fmt.Sprintf("req-%d", time.Now().UnixNano())
	expires := uint64(time.Now().Add(1 * time.Hour).Unix())

	details := &paymentproto.PaymentDetails{
		Network: "test",
		Outputs: []paymentproto.Output{{Amount: uint64(amount), Script: script}},
		Time:    uint64(time.Now().Unix()),
		Expires: &expires,
	}
	memo := "Escrow payment"
	details.Memo = &memo
	paymentURL := fmt.Sprintf("http://localhost:8080/api/pay/%s", requestID)
	details.PaymentURL = &paymentURL
	details.MerchantData = []byte(fmt.Sprintf(`{"order_id": "%s"}`, requestID))
	details.MerchantDataPresent = true

	return paymentproto.NewPaymentRequest(paymentproto.PkiNone, nil, details), nil
}

// CreateCustomBIP70PaymentRequest creates a BIP70 payment request with a
// caller-supplied memo and expiry window.
func CreateCustomBIP70PaymentRequest(address string, amount int64, memo string, expiryHours int) (*paymentproto.PaymentRequest, error) {
	req, err := CreateBIP70PaymentRequest(address, amount)
	if err != nil {
		return nil, err
	}

	if memo != "" {
		req.Details.Memo = &memo
	}

	if expiryHours > 0 {
		expires := uint64(time.Now().Add(time.Duration(expiryHours) * time.Hour).Unix())
		req.Details.Expires = &expires
	}

	return req, nil
}

// VerifyBIP70Payment verifies a BIP70 payment.
//
// LIMITATIONS: no blockchain connection, no verification that the
// transaction pays to the correct address/amount, no confirmation checking.
// For the demo, this just checks txID against the known-transaction mock.
func VerifyBIP70Payment(paymentRequestID string, txID string) (bool, error) {
	if paymentRequestID == "" || txID == "" {
		return false, fmt.Errorf("payment request ID and transaction ID are required")
	}

	verified, err := utils.VerifyTransaction(txID)
	if err != nil {
		return false, fmt.Errorf("transaction verification failed: %v", err)
	}

	return verified, nil
}

// HandlePaymentRequest serves a BIP70 PaymentRequest message.
func HandlePaymentRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 4 {
		http.Error(w, "Invalid request URL", http.StatusBadRequest)
		return
	}

	// In a real implementation the request would be looked up by requestID
	// (parts[len(parts)-1]) from the escrow store; the demo always mints a
	// fresh one against a fixed testnet address.
	address := "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
	amount := int64(100000) // 0.001 BTC in satoshis

	paymentRequest, err := CreateBIP70PaymentRequest(address, amount)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create payment request: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/bitcoin-paymentrequest")
	w.Write(paymentRequest.Encode())
}

// HandlePayment accepts a BIP70 Payment message and acknowledges it.
func HandlePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "application/bitcoin-payment" {
		http.Error(w, "Invalid Content-Type, expected application/bitcoin-payment", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read request body: %v", err), http.StatusBadRequest)
		return
	}

	payment, err := paymentproto.ParsePayment(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse payment: %v", err), http.StatusBadRequest)
		return
	}

	if len(payment.Transactions) == 0 {
		http.Error(w, "Payment contains no transactions", http.StatusBadRequest)
		return
	}

	// In a real implementation this would also broadcast the transaction
	// and record the payment status against the escrow it satisfies.
	memo := "Thank you for your payment"
	ack := &paymentproto.PaymentACK{Payment: *payment, Memo: &memo}

	ackBytes, err := ack.Encode()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to serialize PaymentACK: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/bitcoin-paymentack")
	w.Write(ackBytes)
}

// extractTransactionFromPayment returns the txid of the first transaction in payment.
func extractTransactionFromPayment(payment *paymentproto.Payment) (string, error) {
	if len(payment.Transactions) == 0 {
		return "", fmt.Errorf("payment contains no transactions")
	}
	return payment.Transactions[0].TxHash().String(), nil
}

// ProcessPayment parses a serialized BIP70 Payment message and builds its ACK.
func ProcessPayment(paymentData []byte) (*paymentproto.PaymentACK, error) {
	payment, err := paymentproto.ParsePayment(paymentData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment: %v", err)
	}

	txID, err := extractTransactionFromPayment(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to extract transaction: %v", err)
	}

	log.Printf("Received payment with transaction: %s", txID)

	memo := "Thank you for your payment. Your transaction is being processed."
	return &paymentproto.PaymentACK{Payment: *payment, Memo: &memo}, nil
}
