package paymentproto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Field tags fixed by BIP75's EncryptedProtocolMessage envelope.
const (
	tagEncMessageType    = 1
	tagEncMessage        = 2
	tagEncReceiverPubKey = 3
	tagEncSenderPubKey   = 4
	tagEncNonce          = 5
	tagEncSignature      = 6
	tagEncIdentifier     = 7
	tagEncStatusCode     = 8
	tagEncStatusMessage  = 9
)

// hmacTagLen is the length of the authentication tag appended to the AES-CBC
// ciphertext stored in Message (spec.md §4.3 EncryptedProtocolMessage).
const hmacTagLen = sha256.Size

// EncryptedProtocolMessage is the BIP75 authenticated, encrypted envelope
// around a ProtocolMessage. Exactly one of the sender/receiver roles is
// played by a private key at construction and decryption time; the other is
// only ever a public key (original_source/BRPaymentProtocol.h: "one of
// either receiverKey or senderKey must contain a private key").
type EncryptedProtocolMessage struct {
	MessageType    MessageType
	Message        []byte // AES-256-CBC ciphertext followed by a 32-byte HMAC-SHA256 tag
	ReceiverPubKey *btcec.PublicKey
	SenderPubKey   *btcec.PublicKey
	Nonce          uint64
	Signature      []byte
	Identifier     []byte
	StatusCode     uint64
	StatusCodeSet  bool
	StatusMessage  *string

	unknownFields []rawField
}

// deriveKeys runs ECDH between localPriv and counterpartyPub and splits
// SHA-512(ECDH-X) into a 32-byte AES key and a 32-byte HMAC key (spec.md
// §4.3 Encryption).
func deriveKeys(localPriv *btcec.PrivateKey, counterpartyPub *btcec.PublicKey) (aesKey, hmacKey []byte) {
	shared := btcec.GenerateSharedSecret(localPriv, counterpartyPub)
	sum := sha512.Sum512(shared)
	return sum[:32], sum[32:]
}

// ivFromNonce derives a 16-byte CBC initialization vector from the message
// nonce: the first 16 bytes of SHA-256(nonce as little-endian uint64)
// (spec.md §4.3 Encryption).
func ivFromNonce(nonce uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], nonce)
	sum := sha256.Sum256(buf[:])
	return sum[:aes.BlockSize]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad padded length", ErrDecryptionFailed)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryptionFailed)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: bad padding", ErrDecryptionFailed)
		}
	}
	return data[:len(data)-padLen], nil
}

// NewEncryptedProtocolMessage encrypts plaintext (a serialized
// ProtocolMessage) for the counterparty and signs the result. localIsSender
// selects whether localPriv's public key is the message's senderPubKey or
// receiverPubKey; counterpartyPub fills the other slot.
func NewEncryptedProtocolMessage(msgType MessageType, plaintext []byte, localPriv *btcec.PrivateKey,
	counterpartyPub *btcec.PublicKey, localIsSender bool, nonce uint64, identifier []byte) (*EncryptedProtocolMessage, error) {

	aesKey, hmacKey := deriveKeys(localPriv, counterpartyPub)
	iv := ivFromNonce(nonce)

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(ciphertext)
	tag := mac.Sum(nil)

	m := &EncryptedProtocolMessage{
		MessageType: msgType,
		Message:     append(ciphertext, tag...),
		Nonce:       nonce,
		Identifier:  identifier,
	}
	localPub := localPriv.PubKey()
	if localIsSender {
		m.SenderPubKey = localPub
		m.ReceiverPubKey = counterpartyPub
	} else {
		m.ReceiverPubKey = localPub
		m.SenderPubKey = counterpartyPub
	}

	digest := sha256.Sum256(m.encode(true))
	sig := btcecdsa.Sign(localPriv, digest[:])
	m.Signature = sig.Serialize()
	return m, nil
}

// Decrypt recovers the plaintext ProtocolMessage, verifying the HMAC tag
// before returning it (spec.md §4.3 Decrypt / Errors: "decryption MAC
// mismatch"). localPriv must be the private half of whichever of
// ReceiverPubKey/SenderPubKey it corresponds to.
func (m *EncryptedProtocolMessage) Decrypt(localPriv *btcec.PrivateKey) ([]byte, error) {
	localPub := localPriv.PubKey().SerializeCompressed()
	var counterpartyPub *btcec.PublicKey
	switch {
	case m.ReceiverPubKey != nil && bytes.Equal(m.ReceiverPubKey.SerializeCompressed(), localPub):
		counterpartyPub = m.SenderPubKey
	case m.SenderPubKey != nil && bytes.Equal(m.SenderPubKey.SerializeCompressed(), localPub):
		counterpartyPub = m.ReceiverPubKey
	default:
		return nil, ErrNoPrivateKey
	}

	aesKey, hmacKey := deriveKeys(localPriv, counterpartyPub)
	if len(m.Message) < hmacTagLen {
		return nil, fmt.Errorf("%w: message shorter than authentication tag", ErrDecryptionFailed)
	}
	ciphertext := m.Message[:len(m.Message)-hmacTagLen]
	tag := m.Message[len(m.Message)-hmacTagLen:]

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(ciphertext)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block-aligned", ErrDecryptionFailed)
	}
	iv := ivFromNonce(m.Nonce)
	plainPadded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plainPadded, ciphertext)
	return pkcs7Unpad(plainPadded)
}

// Verify recomputes the signed digest (the message with Signature
// zero-length) and validates the ECDSA signature against pub.
func (m *EncryptedProtocolMessage) Verify(pub *btcec.PublicKey) (bool, error) {
	if len(m.Signature) == 0 {
		return false, nil
	}
	digest := sha256.Sum256(m.encode(true))
	sig, err := btcecdsa.ParseDERSignature(m.Signature)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return sig.Verify(digest[:], pub), nil
}

func (m *EncryptedProtocolMessage) Encode() []byte { return m.encode(false) }

func (m *EncryptedProtocolMessage) encode(forDigest bool) []byte {
	w := &writer{}
	w.varintFieldAlways(tagEncMessageType, uint64(m.MessageType))
	w.bytesField(tagEncMessage, m.Message)
	w.bytesField(tagEncReceiverPubKey, m.ReceiverPubKey.SerializeCompressed())
	w.bytesField(tagEncSenderPubKey, m.SenderPubKey.SerializeCompressed())
	w.fixed64Field(tagEncNonce, m.Nonce)
	if forDigest {
		w.bytesField(tagEncSignature, nil)
	} else if len(m.Signature) > 0 {
		w.bytesField(tagEncSignature, m.Signature)
	}
	if len(m.Identifier) > 0 {
		w.bytesField(tagEncIdentifier, m.Identifier)
	}
	if m.StatusCodeSet && m.StatusCode != defaultStatusCode {
		w.varintFieldAlways(tagEncStatusCode, m.StatusCode)
	}
	w.stringFieldPtr(tagEncStatusMessage, m.StatusMessage)
	w.appendUnknown(m.unknownFields)
	return w.buf
}

func ParseEncryptedProtocolMessage(buf []byte) (*EncryptedProtocolMessage, error) {
	m := &EncryptedProtocolMessage{StatusCode: defaultStatusCode}
	var haveType, haveMessage, haveNonce bool
	unknown, err := decodeFields(buf, func(f rawField) (bool, error) {
		switch f.num {
		case tagEncMessageType:
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
		case tagEncMessage:
			m.Message = append([]byte(nil), f.data...)
			haveMessage = true
			return true, nil
		case tagEncReceiverPubKey:
			pub, err := btcec.ParsePubKey(f.data)
			if err != nil {
				return false, fmt.Errorf("paymentproto: receiver public key: %w", err)
			}
			m.ReceiverPubKey = pub
			return true, nil
		case tagEncSenderPubKey:
			pub, err := btcec.ParsePubKey(f.data)
			if err != nil {
				return false, fmt.Errorf("paymentproto: sender public key: %w", err)
			}
			m.SenderPubKey = pub
			return true, nil
		case tagEncNonce:
			if len(f.data) != 8 {
				return false, fmt.Errorf("%w: nonce", ErrTruncatedField)
			}
			m.Nonce = binary.LittleEndian.Uint64(f.data)
			haveNonce = true
			return true, nil
		case tagEncSignature:
			if len(f.data) > 0 {
				m.Signature = append([]byte(nil), f.data...)
			}
			return true, nil
		case tagEncIdentifier:
			m.Identifier = append([]byte(nil), f.data...)
			return true, nil
		case tagEncStatusCode:
			v, err := f.varint()
			if err != nil {
				return false, err
			}
			m.StatusCode = v
			m.StatusCodeSet = true
			return true, nil
		case tagEncStatusMessage:
			s := string(f.data)
			m.StatusMessage = &s
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
	if !haveMessage || m.ReceiverPubKey == nil || m.SenderPubKey == nil || !haveNonce {
		return nil, fmt.Errorf("%w: encrypted message", ErrMissingField)
	}
	m.unknownFields = unknown
	return m, nil
}
