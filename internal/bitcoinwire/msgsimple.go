package bitcoinwire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MempoolMsg requests the remote's transaction memory pool contents via a
// subsequent inv message. It has no payload.
type MempoolMsg struct{}

func (m *MempoolMsg) Command() string         { return CmdMempool }
func (m *MempoolMsg) Encode(w io.Writer) error { return nil }
func (m *MempoolMsg) Decode(r io.Reader) error { return nil }

// GetAddrMsg requests known peer addresses. It has no payload.
type GetAddrMsg struct{}

func (m *GetAddrMsg) Command() string         { return CmdGetAddr }
func (m *GetAddrMsg) Encode(w io.Writer) error { return nil }
func (m *GetAddrMsg) Decode(r io.Reader) error { return nil }

// PingMsg carries a caller-chosen nonce that the remote must echo in its
// pong reply.
type PingMsg struct{ Nonce uint64 }

func (m *PingMsg) Command() string         { return CmdPing }
func (m *PingMsg) Encode(w io.Writer) error { return WriteUint64LE(w, m.Nonce) }
func (m *PingMsg) Decode(r io.Reader) error {
	n, err := ReadUint64LE(r)
	if err != nil {
		return err
	}
	m.Nonce = n
	return nil
}

// PongMsg echoes the nonce of the ping it answers.
type PongMsg struct{ Nonce uint64 }

func (m *PongMsg) Command() string         { return CmdPong }
func (m *PongMsg) Encode(w io.Writer) error { return WriteUint64LE(w, m.Nonce) }
func (m *PongMsg) Decode(r io.Reader) error {
	n, err := ReadUint64LE(r)
	if err != nil {
		return err
	}
	m.Nonce = n
	return nil
}

// RejectCode enumerates the BIP61 rejection reasons.
type RejectCode uint8

const (
	RejectInvalid     RejectCode = 0x10
	RejectSpent       RejectCode = 0x12
	RejectNonstandard RejectCode = 0x40
	RejectDust        RejectCode = 0x41
	RejectLowFee      RejectCode = 0x42
)

// RejectMsg reports that a previously sent message was rejected (BIP61).
type RejectMsg struct {
	Message string
	Code    RejectCode
	Reason  string
	// Hash is present for tx/block rejections; zero otherwise.
	Hash chainhash.Hash
}

func (m *RejectMsg) Command() string { return CmdReject }

func (m *RejectMsg) Encode(w io.Writer) error {
	if err := WriteVarString(w, m.Message); err != nil {
		return err
	}
	if err := WriteUint8(w, uint8(m.Code)); err != nil {
		return err
	}
	if err := WriteVarString(w, m.Reason); err != nil {
		return err
	}
	if m.Message == CmdTx || m.Message == CmdBlock {
		_, err := w.Write(m.Hash[:])
		return err
	}
	return nil
}

func (m *RejectMsg) Decode(r io.Reader) error {
	msg, err := ReadVarString(r)
	if err != nil {
		return err
	}
	code, err := ReadUint8(r)
	if err != nil {
		return err
	}
	reason, err := ReadVarString(r)
	if err != nil {
		return err
	}
	m.Message = msg
	m.Code = RejectCode(code)
	m.Reason = reason
	if msg == CmdTx || msg == CmdBlock {
		if _, err := io.ReadFull(r, m.Hash[:]); err != nil {
			return wrapShortRead(err)
		}
	}
	return nil
}

// FeeFilterMsg advertises a minimum fee rate, in satoshis per kilobyte,
// below which the sender will not relay transactions (BIP133).
type FeeFilterMsg struct{ FeeRate int64 }

func (m *FeeFilterMsg) Command() string         { return CmdFeeFilter }
func (m *FeeFilterMsg) Encode(w io.Writer) error { return writeInt64(w, m.FeeRate) }
func (m *FeeFilterMsg) Decode(r io.Reader) error {
	v, err := readInt64(r)
	if err != nil {
		return err
	}
	m.FeeRate = v
	return nil
}
