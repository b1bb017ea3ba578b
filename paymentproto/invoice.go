package paymentproto

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Field tags fixed by BIP75's InvoiceRequest message.
const (
	tagInvoiceSenderPubKey    = 1
	tagInvoiceAmount          = 2
	tagInvoicePkiType         = 3
	tagInvoicePkiData         = 4
	tagInvoiceMemo            = 5
	tagInvoiceNotificationURL = 6
	tagInvoiceSignature       = 7
)

// InvoiceRequest is the BIP75 customer-to-merchant request for a PaymentRequest.
type InvoiceRequest struct {
	SenderPublicKey *btcec.PublicKey
	Amount          uint64
	PkiType         PkiType
	PkiData         []byte
	Memo            *string
	NotificationURL *string
	Signature       []byte

	unknownFields []rawField
}

func NewInvoiceRequest(senderPub *btcec.PublicKey, amount uint64, pkiType PkiType, pkiData []byte) *InvoiceRequest {
	return &InvoiceRequest{SenderPublicKey: senderPub, Amount: amount, PkiType: pkiType, PkiData: pkiData}
}

func (r *InvoiceRequest) encode(forDigest bool) []byte {
	w := &writer{}
	w.bytesField(tagInvoiceSenderPubKey, r.SenderPublicKey.SerializeCompressed())
	w.varintField(tagInvoiceAmount, r.Amount)
	if r.PkiType != PkiNone {
		w.bytesField(tagInvoicePkiType, []byte(r.PkiType.String()))
	}
	if len(r.PkiData) > 0 {
		w.bytesField(tagInvoicePkiData, r.PkiData)
	}
	w.stringFieldPtr(tagInvoiceMemo, r.Memo)
	w.stringFieldPtr(tagInvoiceNotificationURL, r.NotificationURL)
	if forDigest {
		w.bytesField(tagInvoiceSignature, nil)
	} else if len(r.Signature) > 0 {
		w.bytesField(tagInvoiceSignature, r.Signature)
	}
	w.appendUnknown(r.unknownFields)
	return w.buf
}

func (r *InvoiceRequest) Encode() []byte { return r.encode(false) }

// Digest returns nil for pkiType none and otherwise the SHA-256 hash of the
// request encoded with an empty signature. It has no SHA-1 case and rejects
// no pkiType: x509+sha1 is hashed with SHA-256 like x509+sha256.
func (r *InvoiceRequest) Digest() []byte {
	if r.PkiType == PkiNone {
		return nil
	}
	sum := sha256.Sum256(r.encode(true))
	return sum[:]
}

func (r *InvoiceRequest) Sign(priv *btcec.PrivateKey) error {
	digest := r.Digest()
	if digest == nil {
		return fmt.Errorf("paymentproto: cannot sign an InvoiceRequest with pkiType none")
	}
	r.Signature = btcecdsa.Sign(priv, digest).Serialize()
	return nil
}

func (r *InvoiceRequest) Verify(pub *btcec.PublicKey) (bool, error) {
	digest := r.Digest()
	if digest == nil {
		return false, nil
	}
	sig, err := btcecdsa.ParseDERSignature(r.Signature)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return sig.Verify(digest, pub), nil
}

// RequestCert returns the DER bytes of the idx-th certificate in PkiData
// (spec.md §5 supplemented feature: BWPaymentProtocolInvoiceRequestCert).
func (r *InvoiceRequest) RequestCert(idx int) ([]byte, error) {
	return requestCert(r.PkiType, r.PkiData, idx)
}

func ParseInvoiceRequest(buf []byte) (*InvoiceRequest, error) {
	r := &InvoiceRequest{}
	var havePubKey bool
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagInvoiceSenderPubKey:
			pub, err := btcec.ParsePubKey(f.data)
			if err != nil {
				return false, fmt.Errorf("paymentproto: invoice sender public key: %w", err)
			}
			r.SenderPublicKey = pub
			havePubKey = true
			return true, nil
		case tagInvoiceAmount:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			r.Amount = v
			return true, nil
		case tagInvoicePkiType:
			t, err := parsePkiType(string(f.data))
			if err != nil {
				return false, err
			}
			r.PkiType = t
			return true, nil
		case tagInvoicePkiData:
			r.PkiData = append([]byte(nil), f.data...)
			return true, nil
		case tagInvoiceMemo:
			s := string(f.data)
			r.Memo = &s
			return true, nil
		case tagInvoiceNotificationURL:
			s := string(f.data)
			r.NotificationURL = &s
			return true, nil
		case tagInvoiceSignature:
			if len(f.data) > 0 {
				r.Signature = append([]byte(nil), f.data...)
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !havePubKey {
		return nil, fmt.Errorf("%w: invoice request sender public key", ErrMissingField)
	}
	r.unknownFields = unknown
	return r, nil
}
