package paymentproto

import "fmt"

// PkiType is the certificate-authentication scheme a PaymentRequest or
// InvoiceRequest is signed under, modeled as a tagged variant selected at
// parse time rather than the original's raw string comparisons (spec.md §9
// Design Notes, "Dynamic pkiType dispatch").
type PkiType int

const (
	PkiNone PkiType = iota
	PkiX509SHA1
	PkiX509SHA256
)

// String returns the canonical wire representation, the value Encode emits.
func (t PkiType) String() string {
	switch t {
	case PkiX509SHA1:
		return "x509+sha1"
	case PkiX509SHA256:
		return "x509+sha256"
	default:
		return "none"
	}
}

func parsePkiType(s string) (PkiType, error) {
	switch s {
	case "", "none":
		return PkiNone, nil
	case "x509+sha1":
		return PkiX509SHA1, nil
	case "x509+sha256":
		return PkiX509SHA256, nil
	default:
		return PkiNone, fmt.Errorf("%w: %q", ErrBadPkiType, s)
	}
}
