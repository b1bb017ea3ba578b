package paymentproto

// Field tags fixed by BIP70's payment protocol messages
// (github.com/bitcoin/bips/blob/master/bip-0070.mediawiki).
const (
	tagOutputAmount = 1
	tagOutputScript = 2

	tagDetailsNetwork      = 1
	tagDetailsOutputs      = 2
	tagDetailsTime         = 3
	tagDetailsExpires      = 4
	tagDetailsMemo         = 5
	tagDetailsPaymentURL   = 6
	tagDetailsMerchantData = 7
)

// Output is one payment destination: an amount in satoshis and a
// scriptPubKey, matching original_source/BRPaymentProtocol.h's BWTxOutput
// pairing (spec.md §3 Data model).
type Output struct {
	Amount uint64
	Script []byte
}

func encodeOutput(o Output) []byte {
	w := &writer{}
	w.varintField(tagOutputAmount, o.Amount)
	if len(o.Script) > 0 {
		w.bytesField(tagOutputScript, o.Script)
	}
	return w.buf
}

func decodeOutput(buf []byte) (Output, error) {
	var o Output
	_, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagOutputAmount:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			o.Amount = v
			return true, nil
		case tagOutputScript:
			o.Script = append([]byte(nil), f.data...)
			return true, nil
		}
		return false, nil
	})
	return o, err
}

// PaymentDetails is the merchant-signed core of a PaymentRequest (spec.md
// §3): destination outputs, optional validity window, and optional
// human-readable/merchant-opaque metadata.
type PaymentDetails struct {
	// Network is "main" or "test"; an empty string means the default
	// ("main") was not explicitly set and is omitted on encode.
	Network string
	Outputs []Output
	Time    uint64
	Expires *uint64
	Memo    *string
	// PaymentURL is where the resulting Payment message should be POSTed.
	PaymentURL *string
	// MerchantData is opaque to the wallet and preserved byte-for-byte.
	// MerchantDataPresent distinguishes an absent field from a
	// present-but-empty one (spec.md §4.3).
	MerchantData        []byte
	MerchantDataPresent bool

	unknownFields []rawField
}

// Encode serializes d deterministically: known fields in tag-ascending
// order, default-valued optional fields omitted, followed by any preserved
// unknown fields in their original order (spec.md §4.3 Serialization rule).
func (d *PaymentDetails) Encode() []byte {
	w := &writer{}
	if d.Network != "" && d.Network != "main" {
		w.bytesField(tagDetailsNetwork, []byte(d.Network))
	}
	for _, o := range d.Outputs {
		w.bytesField(tagDetailsOutputs, encodeOutput(o))
	}
	w.varintFieldAlways(tagDetailsTime, d.Time)
	w.varintFieldPtr(tagDetailsExpires, d.Expires)
	w.stringFieldPtr(tagDetailsMemo, d.Memo)
	w.stringFieldPtr(tagDetailsPaymentURL, d.PaymentURL)
	w.bytesFieldIfPresent(tagDetailsMerchantData, d.MerchantData, d.MerchantDataPresent)
	w.appendUnknown(d.unknownFields)
	return w.buf
}

// ParsePaymentDetails decodes a serialized PaymentDetails, tolerating fields
// in any order and preserving any it does not recognize (spec.md §4.3).
func ParsePaymentDetails(buf []byte) (*PaymentDetails, error) {
	d := &PaymentDetails{}
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagDetailsNetwork:
			d.Network = string(f.data)
			return true, nil
		case tagDetailsOutputs:
			o, err := decodeOutput(f.data)
			if err != nil {
				return false, err
			}
			d.Outputs = append(d.Outputs, o)
			return true, nil
		case tagDetailsTime:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			d.Time = v
			return true, nil
		case tagDetailsExpires:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			d.Expires = &v
			return true, nil
		case tagDetailsMemo:
			s := string(f.data)
			d.Memo = &s
			return true, nil
		case tagDetailsPaymentURL:
			s := string(f.data)
			d.PaymentURL = &s
			return true, nil
		case tagDetailsMerchantData:
			d.MerchantData = append([]byte(nil), f.data...)
			d.MerchantDataPresent = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	d.unknownFields = unknown
	return d, nil
}

// EffectiveNetwork returns "main" when Network was left at its default.
func (d *PaymentDetails) EffectiveNetwork() string {
	if d.Network == "" {
		return "main"
	}
	return d.Network
}
