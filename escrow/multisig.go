package escrow

import (
	"fmt"

	"github.com/loafwallet/spvcore/utils"
)

// CreateMultiSig creates a 2-of-3 multisig address and returns it along with
// the redeem script needed to spend from it.
func CreateMultiSig(buyerPubKey, sellerPubKey, escrowPubKey string) (utils.MultiSig, error) {
	if buyerPubKey == "" || sellerPubKey == "" || escrowPubKey == "" {
		return utils.MultiSig{}, fmt.Errorf("all public keys are required")
	}

	multiSig, err := utils.CreateMultiSig(buyerPubKey, sellerPubKey, escrowPubKey)
	if err != nil {
		return utils.MultiSig{}, fmt.Errorf("failed to create multisig address: %v", err)
	}

	return multiSig, nil
}

// SignMultiSigTransaction signs a multisig transaction with the provided private key.
func SignMultiSigTransaction(txHex string, privateKey string) (string, error) {
	if txHex == "" || privateKey == "" {
		return "", fmt.Errorf("transaction hex and private key are required")
	}

	signedTxHex, err := utils.SignTransaction(txHex, privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %v", err)
	}

	return signedTxHex, nil
}

// VerifyMultiSigTransaction verifies a multisig transaction.
func VerifyMultiSigTransaction(txID string) (bool, error) {
	if txID == "" {
		return false, fmt.Errorf("transaction ID is required")
	}

	verified, err := utils.VerifyTransaction(txID)
	if err != nil {
		return false, fmt.Errorf("failed to verify transaction: %v", err)
	}

	return verified, nil
}
