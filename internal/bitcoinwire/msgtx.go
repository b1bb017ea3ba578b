package bitcoinwire

import (
	"io"

	btcwire "github.com/btcsuite/btcd/wire"
)

// TxMsg carries a transaction. Serialization is delegated to
// btcsuite/btcd/wire.MsgTx, the pre-existing transaction-structure library
// named in spec §1/§6 — this codec only adds the command-name binding.
type TxMsg struct{ Tx btcwire.MsgTx }

func (m *TxMsg) Command() string { return CmdTx }

func (m *TxMsg) Encode(w io.Writer) error {
	return m.Tx.Serialize(w)
}

func (m *TxMsg) Decode(r io.Reader) error {
	return m.Tx.Deserialize(r)
}
