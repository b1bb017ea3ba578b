package bitcoinwire

import (
	"io"

	btcwire "github.com/btcsuite/btcd/wire"
)

const maxHeadersPerMsg = 2000

// BlockMsg carries a full block. Serialization is delegated to
// btcsuite/btcd/wire.MsgBlock.
type BlockMsg struct{ Block btcwire.MsgBlock }

func (m *BlockMsg) Command() string { return CmdBlock }

func (m *BlockMsg) Encode(w io.Writer) error {
	return m.Block.Serialize(w)
}

func (m *BlockMsg) Decode(r io.Reader) error {
	return m.Block.Deserialize(r)
}

// HeadersMsg carries block headers only; each header is followed by a
// varint transaction count which is always zero on the wire for this
// message (spec §4.2: "headers-only messages deliver blocks with no
// transactions").
type HeadersMsg struct{ Headers []btcwire.BlockHeader }

func (m *HeadersMsg) Command() string { return CmdHeaders }

func (m *HeadersMsg) Encode(w io.Writer) error {
	if err := WriteVarInt(w, uint64(len(m.Headers))); err != nil {
		return err
	}
	for i := range m.Headers {
		if err := m.Headers[i].Serialize(w); err != nil {
			return err
		}
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}
	return nil
}

func (m *HeadersMsg) Decode(r io.Reader) error {
	n, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if n > maxHeadersPerMsg {
		return ErrOversizePayload
	}
	headers := make([]btcwire.BlockHeader, n)
	for i := range headers {
		if err := headers[i].Deserialize(r); err != nil {
			return err
		}
		// Transaction count always reads as zero for a headers-only
		// announcement; discard it.
		if _, err := ReadVarInt(r); err != nil {
			return err
		}
	}
	m.Headers = headers
	return nil
}
