package bitcoinwire

import "io"

// Command name constants for every message type this codec understands, as
// listed in en.bitcoin.it/wiki/Protocol_specification.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdAddr        = "addr"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdNotFound    = "notfound"
	CmdGetBlocks   = "getblocks"
	CmdGetHeaders  = "getheaders"
	CmdTx          = "tx"
	CmdBlock       = "block"
	CmdHeaders     = "headers"
	CmdGetAddr     = "getaddr"
	CmdMempool     = "mempool"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdFilterLoad  = "filterload"
	CmdFilterAdd   = "filteradd"
	CmdFilterClear = "filterclear"
	CmdMerkleBlock = "merkleblock"
	CmdReject      = "reject"
	CmdFeeFilter   = "feefilter"
)

// Message is implemented by every typed wire message. Encode/Decode operate
// on the raw payload only; framing (magic, command, checksum) is handled by
// WriteFrame/ReadFrame.
type Message interface {
	Command() string
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

// EncodePayload serializes m's payload into a byte slice, for callers that
// need the bytes before framing (e.g. to compute a digest or to queue the
// message for later send).
func EncodePayload(m Message) ([]byte, error) {
	buf := newGrowBuffer()
	if err := m.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
