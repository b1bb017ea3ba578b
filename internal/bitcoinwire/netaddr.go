package bitcoinwire

import (
	"io"
	"net/netip"
)

// NetAddr is the fixed-width network address structure embedded in version
// messages (no timestamp) and addr messages (with timestamp, handled by the
// caller since its presence depends on the enclosing message).
type NetAddr struct {
	Services uint64
	IP       netip.Addr // stored as its 16-byte (v4-mapped where applicable) form
	Port     uint16
}

// Encode writes the services bitmask, the 16-byte IPv4-in-IPv6 address, and
// the big-endian port, in that order (no timestamp).
func (a NetAddr) Encode(w io.Writer) error {
	if err := WriteUint64LE(w, a.Services); err != nil {
		return err
	}
	ip16 := a.IP.As16()
	if !a.IP.IsValid() {
		ip16 = netip.IPv4Unspecified().As16()
	}
	if _, err := w.Write(ip16[:]); err != nil {
		return err
	}
	return WriteUint16BE(w, a.Port)
}

// Decode reads a NetAddr written by Encode.
func (a *NetAddr) Decode(r io.Reader) error {
	services, err := ReadUint64LE(r)
	if err != nil {
		return err
	}
	var raw [16]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return wrapShortRead(err)
	}
	port, err := ReadUint16BE(r)
	if err != nil {
		return err
	}
	a.Services = services
	a.IP = netip.AddrFrom16(raw)
	a.Port = port
	return nil
}

// TimestampedNetAddr is a NetAddr prefixed with a 4-byte timestamp, as used
// in the addr message's address list.
type TimestampedNetAddr struct {
	Timestamp uint32
	Addr      NetAddr
}

func (a TimestampedNetAddr) Encode(w io.Writer) error {
	if err := WriteUint32LE(w, a.Timestamp); err != nil {
		return err
	}
	return a.Addr.Encode(w)
}

func (a *TimestampedNetAddr) Decode(r io.Reader) error {
	ts, err := ReadUint32LE(r)
	if err != nil {
		return err
	}
	a.Timestamp = ts
	return a.Addr.Decode(r)
}
