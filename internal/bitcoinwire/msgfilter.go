package bitcoinwire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const maxFilterLoadSize = 36000
const maxFilterAddSize = 520

// BloomUpdateFlag controls how a matched output updates the filter (BIP37).
type BloomUpdateFlag uint8

const (
	BloomUpdateNone         BloomUpdateFlag = 0
	BloomUpdateAll          BloomUpdateFlag = 1
	BloomUpdateP2PubkeyOnly BloomUpdateFlag = 2
)

// FilterLoadMsg installs a bloom filter on the connection (BIP37).
type FilterLoadMsg struct {
	Filter    []byte
	HashFuncs uint32
	Tweak     uint32
	Flags     BloomUpdateFlag
}

func (m *FilterLoadMsg) Command() string { return CmdFilterLoad }

func (m *FilterLoadMsg) Encode(w io.Writer) error {
	if err := WriteVarBytes(w, m.Filter); err != nil {
		return err
	}
	if err := WriteUint32LE(w, m.HashFuncs); err != nil {
		return err
	}
	if err := WriteUint32LE(w, m.Tweak); err != nil {
		return err
	}
	return WriteUint8(w, uint8(m.Flags))
}

func (m *FilterLoadMsg) Decode(r io.Reader) error {
	filter, err := ReadVarBytes(r, maxFilterLoadSize)
	if err != nil {
		return err
	}
	hashFuncs, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	tweak, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	flags, err := ReadUint8(r)
	if err != nil {
		return err
	}
	m.Filter = filter
	m.HashFuncs = hashFuncs
	m.Tweak = tweak
	m.Flags = BloomUpdateFlag(flags)
	return nil
}

// FilterAddMsg adds a single element to the currently loaded filter.
type FilterAddMsg struct{ Data []byte }

func (m *FilterAddMsg) Command() string { return CmdFilterAdd }
func (m *FilterAddMsg) Encode(w io.Writer) error {
	return WriteVarBytes(w, m.Data)
}
func (m *FilterAddMsg) Decode(r io.Reader) error {
	data, err := ReadVarBytes(r, maxFilterAddSize)
	if err != nil {
		return err
	}
	m.Data = data
	return nil
}

// FilterClearMsg removes the currently loaded filter, reverting to
// unfiltered relay. It has no payload.
type FilterClearMsg struct{}

func (m *FilterClearMsg) Command() string         { return CmdFilterClear }
func (m *FilterClearMsg) Encode(w io.Writer) error { return nil }
func (m *FilterClearMsg) Decode(r io.Reader) error { return nil }

const maxFlagsPerMerkleBlock = 10000

// MerkleBlockHeader mirrors the fixed 80-byte block header fields inline
// (rather than depending on a full btcwire.BlockHeader) so MerkleBlockMsg
// stays self-contained for the partial-merkle-tree proof it carries.
type MerkleBlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// BlockHash returns the double-SHA256 of the fixed 80-byte header, the
// identifier blockRequested/notfound bookkeeping keys on (not the merkle
// root, which only identifies the transaction set committed inside it).
func (h *MerkleBlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	h.encode(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

func (h *MerkleBlockHeader) encode(w io.Writer) error {
	if err := writeInt32(w, h.Version); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := WriteUint32LE(w, h.Timestamp); err != nil {
		return err
	}
	if err := WriteUint32LE(w, h.Bits); err != nil {
		return err
	}
	return WriteUint32LE(w, h.Nonce)
}

func (h *MerkleBlockHeader) decode(r io.Reader) error {
	v, err := readInt32(r)
	if err != nil {
		return err
	}
	var prev, root chainhash.Hash
	if _, err := io.ReadFull(r, prev[:]); err != nil {
		return wrapShortRead(err)
	}
	if _, err := io.ReadFull(r, root[:]); err != nil {
		return wrapShortRead(err)
	}
	ts, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	bits, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	nonce, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	h.Version = v
	h.PrevBlock = prev
	h.MerkleRoot = root
	h.Timestamp = ts
	h.Bits = bits
	h.Nonce = nonce
	return nil
}

// MerkleBlockMsg is a block header plus a partial merkle tree proving the
// inclusion of the transactions the sender's bloom filter matched (BIP37).
type MerkleBlockMsg struct {
	Header     MerkleBlockHeader
	NumTx      uint32
	Hashes     []chainhash.Hash
	FlagBits   []byte
}

func (m *MerkleBlockMsg) Command() string { return CmdMerkleBlock }

func (m *MerkleBlockMsg) Encode(w io.Writer) error {
	if err := m.Header.encode(w); err != nil {
		return err
	}
	if err := WriteUint32LE(w, m.NumTx); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(m.Hashes))); err != nil {
		return err
	}
	for _, h := range m.Hashes {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, m.FlagBits)
}

func (m *MerkleBlockMsg) Decode(r io.Reader) error {
	var hdr MerkleBlockHeader
	if err := hdr.decode(r); err != nil {
		return err
	}
	numTx, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	n, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if n > maxFlagsPerMerkleBlock {
		return ErrOversizePayload
	}
	hashes := make([]chainhash.Hash, n)
	for i := range hashes {
		if _, err := io.ReadFull(r, hashes[i][:]); err != nil {
			return wrapShortRead(err)
		}
	}
	flags, err := ReadVarBytes(r, maxFlagsPerMerkleBlock)
	if err != nil {
		return err
	}
	m.Header = hdr
	m.NumTx = numTx
	m.Hashes = hashes
	m.FlagBits = flags
	return nil
}
