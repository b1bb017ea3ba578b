package bitcoinwire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const maxBlockLocators = 500

// blockLocator is the shared payload shape of getblocks and getheaders: a
// protocol version, a list of locator hashes (most recent first), and a
// stop hash.
type blockLocator struct {
	ProtocolVersion uint32
	Locators        []chainhash.Hash
	HashStop        chainhash.Hash
}

func (m *blockLocator) encode(w io.Writer) error {
	if err := WriteUint32LE(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(m.Locators))); err != nil {
		return err
	}
	for _, h := range m.Locators {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(m.HashStop[:])
	return err
}

func (m *blockLocator) decode(r io.Reader) error {
	v, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	n, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if n > maxBlockLocators {
		return ErrOversizePayload
	}
	locators := make([]chainhash.Hash, n)
	for i := range locators {
		if _, err := io.ReadFull(r, locators[i][:]); err != nil {
			return wrapShortRead(err)
		}
	}
	var stop chainhash.Hash
	if _, err := io.ReadFull(r, stop[:]); err != nil {
		return wrapShortRead(err)
	}
	m.ProtocolVersion = v
	m.Locators = locators
	m.HashStop = stop
	return nil
}

// GetBlocksMsg requests block inventory starting after the first locator
// hash the remote recognizes.
type GetBlocksMsg struct{ blockLocator }

func (m *GetBlocksMsg) Command() string         { return CmdGetBlocks }
func (m *GetBlocksMsg) Encode(w io.Writer) error { return m.blockLocator.encode(w) }
func (m *GetBlocksMsg) Decode(r io.Reader) error { return m.blockLocator.decode(r) }

// GetHeadersMsg requests headers-only starting after the first locator hash
// the remote recognizes.
type GetHeadersMsg struct{ blockLocator }

func (m *GetHeadersMsg) Command() string         { return CmdGetHeaders }
func (m *GetHeadersMsg) Encode(w io.Writer) error { return m.blockLocator.encode(w) }
func (m *GetHeadersMsg) Decode(r io.Reader) error { return m.blockLocator.decode(r) }
