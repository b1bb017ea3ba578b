package bitcoinwire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// InvType identifies what an inventory vector refers to.
type InvType uint32

const (
	InvTypeError InvType = 0
	InvTypeTx    InvType = 1
	InvTypeBlock InvType = 2
	// InvTypeFilteredBlock requests a merkleblock rather than a full
	// block, per BIP37.
	InvTypeFilteredBlock InvType = 3
)

// InvVect is a single inventory vector: a type tag plus the hash it refers
// to.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

func (v InvVect) Encode(w io.Writer) error {
	if err := WriteUint32LE(w, uint32(v.Type)); err != nil {
		return err
	}
	_, err := w.Write(v.Hash[:])
	return err
}

func (v *InvVect) Decode(r io.Reader) error {
	typ, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	var h chainhash.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return wrapShortRead(err)
	}
	v.Type = InvType(typ)
	v.Hash = h
	return nil
}

// MaxInvEntries bounds the number of inventory vectors a single message may
// carry, matching Bitcoin Core's MAX_INV_SZ.
const MaxInvEntries = 50000

func encodeInvList(w io.Writer, items []InvVect) error {
	if err := WriteVarInt(w, uint64(len(items))); err != nil {
		return err
	}
	for _, it := range items {
		if err := it.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func decodeInvList(r io.Reader) ([]InvVect, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > MaxInvEntries {
		return nil, ErrOversizePayload
	}
	items := make([]InvVect, n)
	for i := range items {
		if err := items[i].Decode(r); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// InvMsg announces transactions or blocks the sender has.
type InvMsg struct{ Items []InvVect }

func (m *InvMsg) Command() string         { return CmdInv }
func (m *InvMsg) Encode(w io.Writer) error { return encodeInvList(w, m.Items) }
func (m *InvMsg) Decode(r io.Reader) error {
	items, err := decodeInvList(r)
	if err != nil {
		return err
	}
	m.Items = items
	return nil
}

// GetDataMsg requests the full contents of the listed inventory vectors.
type GetDataMsg struct{ Items []InvVect }

func (m *GetDataMsg) Command() string         { return CmdGetData }
func (m *GetDataMsg) Encode(w io.Writer) error { return encodeInvList(w, m.Items) }
func (m *GetDataMsg) Decode(r io.Reader) error {
	items, err := decodeInvList(r)
	if err != nil {
		return err
	}
	m.Items = items
	return nil
}

// NotFoundMsg is sent in reply to a GetDataMsg for items the sender does not
// have.
type NotFoundMsg struct{ Items []InvVect }

func (m *NotFoundMsg) Command() string         { return CmdNotFound }
func (m *NotFoundMsg) Encode(w io.Writer) error { return encodeInvList(w, m.Items) }
func (m *NotFoundMsg) Decode(r io.Reader) error {
	items, err := decodeInvList(r)
	if err != nil {
		return err
	}
	m.Items = items
	return nil
}

// AddrMsg relays known peer addresses.
type AddrMsg struct{ Addrs []TimestampedNetAddr }

const maxAddrEntries = 1000

func (m *AddrMsg) Command() string { return CmdAddr }

func (m *AddrMsg) Encode(w io.Writer) error {
	if err := WriteVarInt(w, uint64(len(m.Addrs))); err != nil {
		return err
	}
	for _, a := range m.Addrs {
		if err := a.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *AddrMsg) Decode(r io.Reader) error {
	n, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if n > maxAddrEntries {
		return ErrOversizePayload
	}
	addrs := make([]TimestampedNetAddr, n)
	for i := range addrs {
		if err := addrs[i].Decode(r); err != nil {
			return err
		}
	}
	m.Addrs = addrs
	return nil
}
