package paymentproto

import "fmt"

// Field tags fixed by BIP70's PaymentACK message.
const (
	tagACKPayment = 1
	tagACKMemo    = 2
)

// PaymentACK is the merchant's acknowledgment of a received Payment. It
// owns its embedded Payment exclusively (spec.md §3 ownership note).
type PaymentACK struct {
	Payment Payment
	Memo    *string

	unknownFields []rawField
}

func (a *PaymentACK) Encode() ([]byte, error) {
	payload, err := a.Payment.Encode()
	if err != nil {
		return nil, err
	}
	w := &writer{}
	w.bytesField(tagACKPayment, payload)
	w.stringFieldPtr(tagACKMemo, a.Memo)
	w.appendUnknown(a.unknownFields)
	return w.buf, nil
}

func ParsePaymentACK(buf []byte) (*PaymentACK, error) {
	a := &PaymentACK{}
	var havePayment bool
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagACKPayment:
			p, err := ParsePayment(f.data)
			if err != nil {
				return false, err
			}
			a.Payment = *p
			havePayment = true
			return true, nil
		case tagACKMemo:
			s := string(f.data)
			a.Memo = &s
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !havePayment {
		return nil, fmt.Errorf("%w: payment ack payment", ErrMissingField)
	}
	a.unknownFields = unknown
	return a, nil
}
