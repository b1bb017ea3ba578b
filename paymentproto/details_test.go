package paymentproto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPaymentDetailsRoundTrip exercises spec.md §8 scenario 4: a single
// output, a memo, and the default network must survive serialize/parse/
// re-serialize byte-identically.
func TestPaymentDetailsRoundTrip(t *testing.T) {
	script := append([]byte{0x76, 0xa9, 0x14}, make([]byte, 20)...)
	script = append(script, 0x88, 0xac)
	memo := "Thanks"

	details := &PaymentDetails{
		Outputs: []Output{{Amount: 10_000, Script: script}},
		Time:    1_700_000_000,
		Memo:    &memo,
	}

	encoded := details.Encode()
	parsed, err := ParsePaymentDetails(encoded)
	require.NoError(t, err)

	require.Equal(t, "main", parsed.EffectiveNetwork())
	require.Len(t, parsed.Outputs, 1)
	require.Equal(t, uint64(10_000), parsed.Outputs[0].Amount)
	require.Equal(t, script, parsed.Outputs[0].Script)
	require.NotNil(t, parsed.Memo)
	require.Equal(t, "Thanks", *parsed.Memo)

	reEncoded := parsed.Encode()
	require.Equal(t, encoded, reEncoded)
}

func TestPaymentDetailsMerchantDataPresence(t *testing.T) {
	withEmpty := &PaymentDetails{Time: 1, MerchantData: []byte{}, MerchantDataPresent: true}
	parsed, err := ParsePaymentDetails(withEmpty.Encode())
	require.NoError(t, err)
	require.True(t, parsed.MerchantDataPresent)
	require.Empty(t, parsed.MerchantData)

	absent := &PaymentDetails{Time: 1}
	parsed, err = ParsePaymentDetails(absent.Encode())
	require.NoError(t, err)
	require.False(t, parsed.MerchantDataPresent)
}

func TestPaymentDetailsUnknownFieldPreservation(t *testing.T) {
	details := &PaymentDetails{Time: 42}
	encoded := details.Encode()

	w := &writer{buf: append([]byte(nil), encoded...)}
	w.bytesField(99, []byte("future-field"))

	parsed, err := ParsePaymentDetails(w.buf)
	require.NoError(t, err)
	require.Equal(t, w.buf, parsed.Encode())
}
