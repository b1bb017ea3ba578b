package bitcoinwire

import "io"

// MinAcceptableProtocolVersion is the lowest peer-reported protocol version
// this codec will negotiate with; anything lower causes the peer package to
// disconnect (spec §4.2 Handshake).
const MinAcceptableProtocolVersion = 70002

// ProtocolVersion is the version this implementation advertises. It covers
// BIP37 (bloom filtering) and BIP111 (NODE_BLOOM) semantics.
const ProtocolVersion = 70016

// UserAgent is the advertised user agent string (spec §6).
const UserAgent = "/litewallet-loafwallet-core:2.1/"

// VersionMsg is the "version" message sent on connect and expected in reply.
type VersionMsg struct {
	ProtocolVersion int32
	Services        uint64
	Timestamp       int64
	AddrRecv        NetAddr
	AddrFrom        NetAddr
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

func (m *VersionMsg) Command() string { return CmdVersion }

func (m *VersionMsg) Encode(w io.Writer) error {
	if err := writeInt32(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteUint64LE(w, m.Services); err != nil {
		return err
	}
	if err := writeInt64(w, m.Timestamp); err != nil {
		return err
	}
	if err := m.AddrRecv.Encode(w); err != nil {
		return err
	}
	if err := m.AddrFrom.Encode(w); err != nil {
		return err
	}
	if err := WriteUint64LE(w, m.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, m.UserAgent); err != nil {
		return err
	}
	if err := writeInt32(w, m.StartHeight); err != nil {
		return err
	}
	relay := uint8(0)
	if m.Relay {
		relay = 1
	}
	return WriteUint8(w, relay)
}

func (m *VersionMsg) Decode(r io.Reader) error {
	pv, err := readInt32(r)
	if err != nil {
		return err
	}
	services, err := ReadUint64LE(r)
	if err != nil {
		return err
	}
	ts, err := readInt64(r)
	if err != nil {
		return err
	}
	var addrRecv, addrFrom NetAddr
	if err := addrRecv.Decode(r); err != nil {
		return err
	}
	if err := addrFrom.Decode(r); err != nil {
		return err
	}
	nonce, err := ReadUint64LE(r)
	if err != nil {
		return err
	}
	ua, err := ReadVarString(r)
	if err != nil {
		return err
	}
	startHeight, err := readInt32(r)
	if err != nil {
		return err
	}

	m.ProtocolVersion = pv
	m.Services = services
	m.Timestamp = ts
	m.AddrRecv = addrRecv
	m.AddrFrom = addrFrom
	m.Nonce = nonce
	m.UserAgent = ua
	m.StartHeight = startHeight

	// The relay flag (BIP37) is optional on old clients; absence means
	// true, matching Bitcoin Core's behavior.
	relay, err := ReadUint8(r)
	if err != nil {
		m.Relay = true
		return nil
	}
	m.Relay = relay != 0
	return nil
}

// VerAckMsg is the empty "verack" reply completing the handshake.
type VerAckMsg struct{}

func (m *VerAckMsg) Command() string         { return CmdVerAck }
func (m *VerAckMsg) Encode(w io.Writer) error { return nil }
func (m *VerAckMsg) Decode(r io.Reader) error { return nil }

func writeInt32(w io.Writer, v int32) error { return WriteUint32LE(w, uint32(v)) }
func readInt32(r io.Reader) (int32, error) {
	v, err := ReadUint32LE(r)
	return int32(v), err
}
func writeInt64(w io.Writer, v int64) error { return WriteUint64LE(w, uint64(v)) }
func readInt64(r io.Reader) (int64, error) {
	v, err := ReadUint64LE(r)
	return int64(v), err
}
