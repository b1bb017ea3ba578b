package utils

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

var netParams = &chaincfg.TestNet3Params // Using testnet for demo purposes

// MultiSig bundles the address and redeem script produced by CreateMultiSig.
// The redeem script is required at spend time and was silently dropped by
// the original implementation; callers building a release/refund
// transaction need it to construct the scriptSig.
type MultiSig struct {
	Address      string
	RedeemScript []byte
}

// CreateMultiSig creates a 2-of-3 P2SH multisig address (buyer, seller, escrow service).
func CreateMultiSig(buyerPubKey, sellerPubKey, escrowPubKey string) (MultiSig, error) {
	buyerPubKeyBytes, err := hex.DecodeString(buyerPubKey)
	if err != nil {
		return MultiSig{}, fmt.Errorf("invalid buyer public key: %v", err)
	}

	sellerPubKeyBytes, err := hex.DecodeString(sellerPubKey)
	if err != nil {
		return MultiSig{}, fmt.Errorf("invalid seller public key: %v", err)
	}

	escrowPubKeyBytes, err := hex.DecodeString(escrowPubKey)
	if err != nil {
		return MultiSig{}, fmt.Errorf("invalid escrow public key: %v", err)
	}

	buyerKey, err := btcutil.NewAddressPubKey(buyerPubKeyBytes, netParams)
	if err != nil {
		return MultiSig{}, fmt.Errorf("failed to parse buyer public key: %v", err)
	}

	sellerKey, err := btcutil.NewAddressPubKey(sellerPubKeyBytes, netParams)
	if err != nil {
		return MultiSig{}, fmt.Errorf("failed to parse seller public key: %v", err)
	}

	escrowKey, err := btcutil.NewAddressPubKey(escrowPubKeyBytes, netParams)
	if err != nil {
		return MultiSig{}, fmt.Errorf("failed to parse escrow public key: %v", err)
	}

	keys := []*btcutil.AddressPubKey{buyerKey, sellerKey, escrowKey}
	redeemScript, err := txscript.MultiSigScript(keys, 2)
	if err != nil {
		return MultiSig{}, fmt.Errorf("failed to create multisig script: %v", err)
	}

	scriptHash, err := btcutil.NewAddressScriptHash(redeemScript, netParams)
	if err != nil {
		return MultiSig{}, fmt.Errorf("failed to create script hash: %v", err)
	}

	return MultiSig{Address: scriptHash.EncodeAddress(), RedeemScript: redeemScript}, nil
}

// VerifyRedeemScript confirms redeemScript actually hashes to address,
// so a release/refund can't be built against a RedeemScript that was
// swapped or corrupted in storage between CreateEscrow and spend time.
func VerifyRedeemScript(redeemScript []byte, address string) error {
	if len(redeemScript) == 0 {
		return errors.New("redeem script is empty")
	}
	scriptHash, err := btcutil.NewAddressScriptHash(redeemScript, netParams)
	if err != nil {
		return fmt.Errorf("failed to hash redeem script: %v", err)
	}
	if scriptHash.EncodeAddress() != address {
		return fmt.Errorf("redeem script does not match multisig address %s", address)
	}
	return nil
}

// PubKeyToAddress derives the P2PKH testnet address for a hex-encoded
// secp256k1 public key, the form release/refund payouts need since escrow
// parties are identified by public key rather than address.
func PubKeyToAddress(pubKeyHex string) (string, error) {
	pubKeyBytes, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid public key: %v", err)
	}

	addr, err := btcutil.NewAddressPubKey(pubKeyBytes, netParams)
	if err != nil {
		return "", fmt.Errorf("failed to derive address: %v", err)
	}

	return addr.EncodeAddress(), nil
}

// AddressToScript decodes a testnet address and returns its scriptPubKey,
// the form a paymentproto.Output needs for its Script field.
func AddressToScript(address string) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, netParams)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %v", err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to build output script: %v", err)
	}
	return script, nil
}

// Transaction is the escrow demo's own bookkeeping record, not a BIP70 wire
// type (those now live in paymentproto). It tracks what the demo "broadcast".
type Transaction struct {
	TxID          string `json:"txid"`
	RawTx         string `json:"raw_tx"`
	Fee           int64  `json:"fee"`
	Confirmations int64  `json:"confirmations"`
}

// CreateTransaction builds a single-output transaction paying amount to
// toAddress and reports it as the demo's outgoing transaction.
//
// LIMITATIONS: there is no UTXO model (Non-goal), so the transaction carries
// no inputs and is never actually signed or broadcast; privateKey is only
// recorded for SignTransaction's mock signing step below.
func CreateTransaction(toAddress string, amount int64, privateKey string) (Transaction, error) {
	script, err := AddressToScript(toAddress)
	if err != nil {
		return Transaction{}, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(amount, script))

	signedHex, err := SignTransaction(fmt.Sprintf("%x", script), privateKey)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		TxID:          tx.TxHash().String(),
		RawTx:         signedHex,
		Fee:           1000,
		Confirmations: 0,
	}, nil
}

// knownTransactions is a map of valid transaction IDs for demo purposes.
// A real implementation would query the Bitcoin network (Non-goal here).
var knownTransactions = map[string]bool{
	"26dd4663518b3e24872fd5635fd889a8a0e1c232b8d488868ac378a0a2d28fb1": true,
	"3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b": true,
}

// VerifyTransaction verifies whether a transaction ID is known and confirmed.
func VerifyTransaction(txID string) (bool, error) {
	if txID == "" {
		return false, errors.New("transaction ID is empty")
	}

	if len(txID) != 64 {
		return false, fmt.Errorf("invalid transaction ID format: must be 64 characters, got %d", len(txID))
	}

	for _, c := range txID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false, fmt.Errorf("invalid transaction ID format: must contain only hexadecimal characters")
		}
	}

	isValid, exists := knownTransactions[txID]
	if !exists {
		return false, fmt.Errorf("transaction not found in the blockchain")
	}

	return isValid, nil
}

// SignTransaction signs a transaction with the provided private key.
//
// LIMITATIONS: this is a mock - without a UTXO model there is no prevout
// script to build a real sighash against, so no cryptographic signing
// happens. A production implementation would use txscript.SignatureScript
// per input against the actual previous output being spent.
func SignTransaction(txHex string, privateKey string) (string, error) {
	if txHex == "" {
		return "", errors.New("transaction hex is empty")
	}

	if privateKey == "" {
		return "", errors.New("private key is empty")
	}

	return "signed_" + txHex, nil
}

// CreateRawTransaction assembles a raw transaction from the given inputs and outputs.
func CreateRawTransaction(inputs []wire.TxIn, outputs []wire.TxOut) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)

	for _, in := range inputs {
		tx.AddTxIn(&in)
	}

	for _, out := range outputs {
		tx.AddTxOut(&out)
	}

	return tx, nil
}

// GetTransactionByID retrieves a transaction record by ID.
func GetTransactionByID(txID string) (Transaction, error) {
	if txID == "" {
		return Transaction{}, errors.New("transaction ID is empty")
	}

	hash, err := chainhash.NewHashFromStr(txID)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid transaction ID: %v", err)
	}

	return Transaction{
		TxID:          hash.String(),
		RawTx:         "01000000...",
		Fee:           1000,
		Confirmations: 6,
	}, nil
}
