package paymentproto

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// Field tags fixed by BIP70's Payment message.
const (
	tagPaymentMerchantData = 1
	tagPaymentTransactions = 2
	tagPaymentRefundTo     = 3
	tagPaymentMemo         = 4
)

// Payment is sent by the customer's wallet back to the merchant. Its
// Transactions are non-owning references to transactions the caller
// constructed and is responsible for broadcasting; Payment does not copy or
// take ownership of them beyond serializing their wire form (spec.md §3
// "Transactions inside Payment are references").
type Payment struct {
	MerchantData        []byte
	MerchantDataPresent bool
	Transactions        []*wire.MsgTx
	RefundTo            []Output
	Memo                *string

	unknownFields []rawField
}

func (p *Payment) Encode() ([]byte, error) {
	w := &writer{}
	w.bytesFieldIfPresent(tagPaymentMerchantData, p.MerchantData, p.MerchantDataPresent)
	for _, tx := range p.Transactions {
		var buf bytes.Buffer
		if err := tx.Serialize(&buf); err != nil {
			return nil, fmt.Errorf("paymentproto: serializing payment transaction: %w", err)
		}
		w.bytesField(tagPaymentTransactions, buf.Bytes())
	}
	for _, o := range p.RefundTo {
		w.bytesField(tagPaymentRefundTo, encodeOutput(o))
	}
	w.stringFieldPtr(tagPaymentMemo, p.Memo)
	w.appendUnknown(p.unknownFields)
	return w.buf, nil
}

func ParsePayment(buf []byte) (*Payment, error) {
	p := &Payment{}
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagPaymentMerchantData:
			p.MerchantData = append([]byte(nil), f.data...)
			p.MerchantDataPresent = true
			return true, nil
		case tagPaymentTransactions:
			tx := wire.NewMsgTx(wire.TxVersion)
			if err := tx.Deserialize(bytes.NewReader(f.data)); err != nil {
				return false, fmt.Errorf("paymentproto: parsing payment transaction: %w", err)
			}
			p.Transactions = append(p.Transactions, tx)
			return true, nil
		case tagPaymentRefundTo:
			o, err := decodeOutput(f.data)
			if err != nil {
				return false, err
			}
			p.RefundTo = append(p.RefundTo, o)
			return true, nil
		case tagPaymentMemo:
			s := string(f.data)
			p.Memo = &s
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	p.unknownFields = unknown
	return p, nil
}
