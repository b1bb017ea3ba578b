package paymentproto

import "crypto/x509"

// Field tag for the repeated "certificate" field inside the pkiData message
// that accompanies an x509+sha1/x509+sha256 PaymentRequest or InvoiceRequest
// (spec.md §4.3 "Certificate extraction": "pkiData is itself a protobuf
// message with a repeated certificate field of DER bytes").
const tagCertificatesCertificate = 1

func encodeCertificateChain(der [][]byte) []byte {
	w := &writer{}
	for _, c := range der {
		w.bytesField(tagCertificatesCertificate, c)
	}
	return w.buf
}

func decodeCertificateChain(buf []byte) ([][]byte, error) {
	var chain [][]byte
	_, err := decodeFields(buf, func(f rawField) (bool, error) {
		if f.num == tagCertificatesCertificate {
			chain = append(chain, append([]byte(nil), f.data...))
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// requestCert returns the DER bytes of the idx-th certificate in pkiData, or
// ErrCertIndexOutOfRange / ErrNoCertificates.
func requestCert(pkiType PkiType, pkiData []byte, idx int) ([]byte, error) {
	if pkiType == PkiNone {
		return nil, ErrNoCertificates
	}
	chain, err := decodeCertificateChain(pkiData)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(chain) {
		return nil, ErrCertIndexOutOfRange
	}
	return chain[idx], nil
}

// parseCertificateChain decodes every DER certificate in pkiData as an
// *x509.Certificate, the leaf first, using the standard library parser
// (DESIGN.md: no third-party X.509 parser exists anywhere in the pack).
func parseCertificateChain(pkiType PkiType, pkiData []byte) ([]*x509.Certificate, error) {
	der, err := decodeCertificateChain(pkiData)
	if err != nil {
		return nil, err
	}
	certs := make([]*x509.Certificate, 0, len(der))
	for _, d := range der {
		cert, err := x509.ParseCertificate(d)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}
