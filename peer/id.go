package peer

import (
	"net/netip"
)

// Services is the bitmask of capabilities a peer advertises in its version
// message (spec §3).
type Services uint64

// Service bit definitions (en.bitcoin.it/wiki/Protocol_documentation and the
// UAHF technical spec for the BCash bit).
const (
	ServiceNodeNetwork Services = 0x01
	ServiceNodeBloom   Services = 0x04
	ServiceNodeBCash   Services = 0x20
)

// Has reports whether every bit in want is set in s.
func (s Services) Has(want Services) bool { return s&want == want }

// ID identifies a peer by address and port only, independent of any live
// session (spec §3 Peer identity). Addresses are always stored in their
// 16-byte IPv4-mapped-in-IPv6 form, mirroring original_source/BWPeer.h's
// UInt128 address field.
type ID struct {
	Addr netip.Addr
	Port uint16
}

// NewID constructs an ID from a netip.Addr, normalizing IPv4 addresses to
// their ::ffff:a.b.c.d mapped form so two IDs referring to the same host
// compare equal regardless of how the address was obtained.
func NewID(addr netip.Addr, port uint16) ID {
	if addr.Is4() {
		addr = netip.AddrFrom16(addr.As4In6())
	} else if !addr.Is4In6() {
		addr = netip.AddrFrom16(addr.As16())
	}
	return ID{Addr: addr, Port: port}
}

// Equal reports whether id and other refer to the same (address, port)
// pair, matching the semantics of original_source/BWPeer.h's BWPeerEq.
func (id ID) Equal(other ID) bool {
	return id.Addr == other.Addr && id.Port == other.Port
}

// Hash returns a hash value for id suitable for use as a map key,
// algorithmically identical to original_source/BWPeer.h's BWPeerHash: an
// FNV-1a-derived mix of the last 32 bits of the address (the IPv4 octets,
// for mapped addresses) and the port.
func (id ID) Hash() uint32 {
	const (
		fnvOffset = 0x811c9dc5
		fnvPrime  = 0x01000193
	)
	raw := id.Addr.As16()
	address := uint32(raw[12])<<24 | uint32(raw[13])<<16 | uint32(raw[14])<<8 | uint32(raw[15])
	h := (fnvOffset ^ address) * fnvPrime
	h = (h ^ uint32(id.Port)) * fnvPrime
	return h
}

// String returns the "host:port" display form used in log lines (spec §4.2
// and original_source/BWPeer.h's peer_log macro).
func (id ID) String() string {
	if !id.Addr.IsValid() {
		return "<unknown>"
	}
	return netip.AddrPortFrom(id.Addr.Unmap(), id.Port).String()
}
