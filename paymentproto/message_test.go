package paymentproto

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestProtocolMessageRoundTrip(t *testing.T) {
	m := NewProtocolMessage(MessageTypePaymentRequest, []byte{1, 2, 3}, []byte("exchange-1"))
	encoded := m.Encode()

	parsed, err := ParseProtocolMessage(encoded)
	require.NoError(t, err)
	require.Equal(t, MessageTypePaymentRequest, parsed.MessageType)
	require.Equal(t, []byte{1, 2, 3}, parsed.SerializedMessage)
	require.Equal(t, []byte("exchange-1"), parsed.Identifier)
	require.Equal(t, uint64(defaultStatusCode), parsed.StatusCode)

	require.Equal(t, encoded, parsed.Encode())
}

func TestProtocolMessageMissingSerializedIsError(t *testing.T) {
	w := &writer{}
	w.varintFieldAlways(tagMessageType, uint64(MessageTypePayment))
	_, err := ParseProtocolMessage(w.buf)
	require.ErrorIs(t, err, ErrMissingField)
}

func TestPaymentAndACKRoundTrip(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(5000, []byte{0x76, 0xa9}))

	memo := "thanks for your business"
	payment := &Payment{
		MerchantData:        []byte("order-1"),
		MerchantDataPresent: true,
		Transactions:        []*wire.MsgTx{tx},
		RefundTo:            []Output{{Amount: 100, Script: []byte{0x51}}},
		Memo:                &memo,
	}

	ackMemo := "thank you"
	ack := &PaymentACK{Payment: *payment, Memo: &ackMemo}

	encoded, err := ack.Encode()
	require.NoError(t, err)

	parsed, err := ParsePaymentACK(encoded)
	require.NoError(t, err)
	require.Equal(t, "order-1", string(parsed.Payment.MerchantData))
	require.Len(t, parsed.Payment.Transactions, 1)
	require.Equal(t, tx.TxHash(), parsed.Payment.Transactions[0].TxHash())
	require.Equal(t, "thank you", *parsed.Memo)
}
