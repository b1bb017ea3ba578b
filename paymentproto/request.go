package paymentproto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Field tags fixed by BIP70's PaymentRequest message.
const (
	tagRequestVersion     = 1
	tagRequestPkiType     = 2
	tagRequestPkiData     = 3
	tagRequestDetails     = 4
	tagRequestSignature   = 5
	defaultRequestVersion = 1
)

// PaymentRequest is the merchant-signed envelope delivered to a wallet
// (spec.md §3, §4.3).
type PaymentRequest struct {
	Version int64
	PkiType PkiType
	PkiData []byte
	Details *PaymentDetails
	// serializedDetails caches the exact bytes Details was decoded from
	// (or, for freshly built requests, Details.Encode()) so the request
	// digest is computed over a byte-identical embedding rather than a
	// freshly re-encoded copy that could legitimately differ in presence
	// of preserved unknown fields.
	serializedDetails []byte
	Signature         []byte

	unknownFields []rawField
}

// NewPaymentRequest builds an unsigned request around details. Call Sign
// afterward for any pkiType other than PkiNone.
func NewPaymentRequest(pkiType PkiType, pkiData []byte, details *PaymentDetails) *PaymentRequest {
	return &PaymentRequest{
		Version:           defaultRequestVersion,
		PkiType:           pkiType,
		PkiData:           pkiData,
		Details:           details,
		serializedDetails: details.Encode(),
	}
}

// Encode serializes the request, omitting a default-valued version/pkiType
// and a nil signature, per the Serialization rule of spec.md §4.3.
func (r *PaymentRequest) Encode() []byte {
	w := &writer{}
	if r.Version != 0 && r.Version != defaultRequestVersion {
		w.varintFieldAlways(tagRequestVersion, uint64(r.Version))
	}
	if r.PkiType != PkiNone {
		w.bytesField(tagRequestPkiType, []byte(r.PkiType.String()))
	}
	if len(r.PkiData) > 0 {
		w.bytesField(tagRequestPkiData, r.PkiData)
	}
	w.bytesField(tagRequestDetails, r.serializedDetails)
	if len(r.Signature) > 0 {
		w.bytesField(tagRequestSignature, r.Signature)
	}
	w.appendUnknown(r.unknownFields)
	return w.buf
}

// encodeForDigest re-emits the request with the signature field forced to
// zero-length (present, not omitted), exactly as spec.md §4.3 requires:
// "emit a zero-length length-delimited field of the signature tag".
func (r *PaymentRequest) encodeForDigest() []byte {
	w := &writer{}
	if r.Version != 0 && r.Version != defaultRequestVersion {
		w.varintFieldAlways(tagRequestVersion, uint64(r.Version))
	}
	if r.PkiType != PkiNone {
		w.bytesField(tagRequestPkiType, []byte(r.PkiType.String()))
	}
	if len(r.PkiData) > 0 {
		w.bytesField(tagRequestPkiData, r.PkiData)
	}
	w.bytesField(tagRequestDetails, r.serializedDetails)
	w.bytesField(tagRequestSignature, nil)
	w.appendUnknown(r.unknownFields)
	return w.buf
}

// ParsePaymentRequest decodes a serialized PaymentRequest.
func ParsePaymentRequest(buf []byte) (*PaymentRequest, error) {
	r := &PaymentRequest{Version: defaultRequestVersion}
	var havePkiType bool
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagRequestVersion:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			r.Version = int64(v)
			return true, nil
		case tagRequestPkiType:
			t, err := parsePkiType(string(f.data))
			if err != nil {
				return false, err
			}
			r.PkiType = t
			havePkiType = true
			return true, nil
		case tagRequestPkiData:
			r.PkiData = append([]byte(nil), f.data...)
			return true, nil
		case tagRequestDetails:
			r.serializedDetails = append([]byte(nil), f.data...)
			d, err := ParsePaymentDetails(f.data)
			if err != nil {
				return false, err
			}
			r.Details = d
			return true, nil
		case tagRequestSignature:
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
	if !havePkiType {
		r.PkiType = PkiNone
	}
	if r.Details == nil {
		return nil, fmt.Errorf("%w: payment request details", ErrMissingField)
	}
	r.unknownFields = unknown
	return r, nil
}

// Digest computes the hash the request's signature is (or would be) taken
// over: SHA-256 for x509+sha256, SHA-1 for x509+sha1, and the empty
// sequence when PkiType is PkiNone (spec.md §4.3 "Request digest").
func (r *PaymentRequest) Digest() []byte {
	if r.PkiType == PkiNone {
		return nil
	}
	buf := r.encodeForDigest()
	switch r.PkiType {
	case PkiX509SHA1:
		sum := sha1.Sum(buf)
		return sum[:]
	default:
		sum := sha256.Sum256(buf)
		return sum[:]
	}
}

// Sign signs the request's digest with priv and stores the DER-encoded
// signature. PkiType must not be PkiNone.
func (r *PaymentRequest) Sign(priv *btcec.PrivateKey) error {
	digest := r.Digest()
	if digest == nil {
		return fmt.Errorf("paymentproto: cannot sign a PaymentRequest with pkiType none")
	}
	sig := btcecdsa.Sign(priv, digest)
	r.Signature = sig.Serialize()
	return nil
}

// Verify recomputes the digest from the request's own fields (never by
// inspecting received bytes directly, per spec.md §4.3) and validates the
// signature against pub.
func (r *PaymentRequest) Verify(pub *btcec.PublicKey) (bool, error) {
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

// Certificates parses PkiData as the X.509 certificate chain BIP70's
// x509+sha1/x509+sha256 pkiTypes embed, leaf certificate first.
func (r *PaymentRequest) Certificates() ([]*x509.Certificate, error) {
	return parseCertificateChain(r.PkiType, r.PkiData)
}

// LeafPublicKey extracts the secp256k1 public key from the leaf certificate,
// for callers that signed with a btcec key wrapped in a standard certificate
// (the common case for this module's demo PKI, since no pack repo ships a
// CA toolchain for a different curve).
func (r *PaymentRequest) LeafPublicKey() (*btcec.PublicKey, error) {
	certs, err := r.Certificates()
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}
	ecdsaPub, ok := certs[0].PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("paymentproto: leaf certificate key is not ECDSA")
	}
	return btcec.ParsePubKey(elliptic.Marshal(ecdsaPub.Curve, ecdsaPub.X, ecdsaPub.Y))
}

// RequestCert returns the DER bytes of the idx-th certificate in PkiData
// (spec.md §4.3 "Certificate extraction").
func (r *PaymentRequest) RequestCert(idx int) ([]byte, error) {
	return requestCert(r.PkiType, r.PkiData, idx)
}

// EncodeCertificateChain serializes a chain of DER certificates into the
// pkiData blob a PaymentRequest/InvoiceRequest expects for an x509 pkiType.
func EncodeCertificateChain(der [][]byte) []byte {
	return encodeCertificateChain(der)
}
