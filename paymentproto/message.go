package paymentproto

import "fmt"

// MessageType identifies which payment-protocol message is carried inside a
// ProtocolMessage/EncryptedProtocolMessage envelope (BIP75).
type MessageType int

const (
	MessageTypeUnknown        MessageType = 0
	MessageTypeInvoiceRequest MessageType = 1
	MessageTypePaymentRequest MessageType = 2
	MessageTypePayment        MessageType = 3
	MessageTypeACK            MessageType = 4
)

func (t MessageType) valid() bool {
	return t >= MessageTypeUnknown && t <= MessageTypeACK
}

// Field tags fixed by BIP75's ProtocolMessage envelope.
const (
	tagMessageType          = 1
	tagMessageSerialized    = 2
	tagMessageStatusCode    = 3
	tagMessageStatusMessage = 4
	tagMessageIdentifier    = 5
	defaultStatusCode       = 1
)

// ProtocolMessage wraps one of the four payment-protocol message kinds for
// transport, with an exchange identifier and a status code/message pair
// (spec.md §3, original_source/BRPaymentProtocol.h's BWPaymentProtocolMessage).
type ProtocolMessage struct {
	MessageType       MessageType
	SerializedMessage []byte
	StatusCode        uint64
	StatusCodeSet     bool
	StatusMessage     *string
	Identifier        []byte

	unknownFields []rawField
}

func NewProtocolMessage(t MessageType, serialized []byte, identifier []byte) *ProtocolMessage {
	return &ProtocolMessage{MessageType: t, SerializedMessage: serialized, Identifier: identifier}
}

func (m *ProtocolMessage) Encode() []byte {
	w := &writer{}
	w.varintFieldAlways(tagMessageType, uint64(m.MessageType))
	w.bytesField(tagMessageSerialized, m.SerializedMessage)
	if m.StatusCodeSet && m.StatusCode != defaultStatusCode {
		w.varintFieldAlways(tagMessageStatusCode, m.StatusCode)
	}
	w.stringFieldPtr(tagMessageStatusMessage, m.StatusMessage)
	if len(m.Identifier) > 0 {
		w.bytesField(tagMessageIdentifier, m.Identifier)
	}
	w.appendUnknown(m.unknownFields)
	return w.buf
}

func ParseProtocolMessage(buf []byte) (*ProtocolMessage, error) {
	m := &ProtocolMessage{StatusCode: defaultStatusCode}
	var haveType, haveSerialized bool
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagMessageType:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			t := MessageType(v)
			if !t.valid() {
				return false, fmt.Errorf("%w: %d", ErrUnknownMessageType, v)
			}
			m.MessageType = t
			haveType = true
			return true, nil
		case tagMessageSerialized:
			m.SerializedMessage = append([]byte(nil), f.data...)
			haveSerialized = true
			return true, nil
		case tagMessageStatusCode:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			m.StatusCode = v
			m.StatusCodeSet = true
			return true, nil
		case tagMessageStatusMessage:
			s := string(f.data)
			m.StatusMessage = &s
			return true, nil
		case tagMessageIdentifier:
			m.Identifier = append([]byte(nil), f.data...)
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !haveType {
		m.MessageType = MessageTypeUnknown
	}
	if !haveSerialized {
		return nil, fmt.Errorf("%w: protocol message serialized payload", ErrMissingField)
	}
	m.unknownFields = unknown
	return m, nil
}
