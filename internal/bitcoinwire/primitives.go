package bitcoinwire

import (
	"encoding/binary"
	"io"
)

// MaxVarStringLen bounds the length a var-string may declare before it is
// considered malformed; it prevents a hostile peer from making us attempt a
// multi-gigabyte allocation from a handful of header bytes.
const MaxVarStringLen = MaxPayloadLength

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return buf[0], nil
}

// WriteUint16LE writes a 16-bit little-endian integer.
func WriteUint16LE(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint16LE reads a 16-bit little-endian integer.
func ReadUint16LE(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// WriteUint16BE writes a 16-bit big-endian integer (used for port numbers in
// net_addr structures, per the protocol spec).
func WriteUint16BE(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint16BE reads a 16-bit big-endian integer.
func ReadUint16BE(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteUint32LE writes a 32-bit little-endian integer.
func WriteUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32LE reads a 32-bit little-endian integer.
func ReadUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64LE writes a 64-bit little-endian integer.
func WriteUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64LE reads a 64-bit little-endian integer.
func ReadUint64LE(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteVarInt writes v using Bitcoin's variable-length integer encoding:
// values below 0xfd encode as a single byte; values up to 0xffff are
// prefixed with 0xfd; up to 0xffffffff with 0xfe; anything larger with
// 0xff, each prefix followed by the value in the corresponding fixed
// little-endian width.
func WriteVarInt(w io.Writer, v uint64) error {
	switch {
	case v < 0xfd:
		return WriteUint8(w, uint8(v))
	case v <= 0xffff:
		if err := WriteUint8(w, 0xfd); err != nil {
			return err
		}
		return WriteUint16LE(w, uint16(v))
	case v <= 0xffffffff:
		if err := WriteUint8(w, 0xfe); err != nil {
			return err
		}
		return WriteUint32LE(w, uint32(v))
	default:
		if err := WriteUint8(w, 0xff); err != nil {
			return err
		}
		return WriteUint64LE(w, v)
	}
}

// ReadVarInt reads a varint and rejects non-canonical encodings (a value
// that could have been encoded in fewer bytes), matching Bitcoin Core's
// CompactSize parsing rules.
func ReadVarInt(r io.Reader) (uint64, error) {
	disc, err := ReadUint8(r)
	if err != nil {
		return 0, err
	}
	switch disc {
	case 0xfd:
		v, err := ReadUint16LE(r)
		if err != nil {
			return 0, wrapVarIntErr(err)
		}
		if v < 0xfd {
			return 0, ErrNonCanonicalVarInt
		}
		return uint64(v), nil
	case 0xfe:
		v, err := ReadUint32LE(r)
		if err != nil {
			return 0, wrapVarIntErr(err)
		}
		if v <= 0xffff {
			return 0, ErrNonCanonicalVarInt
		}
		return uint64(v), nil
	case 0xff:
		v, err := ReadUint64LE(r)
		if err != nil {
			return 0, wrapVarIntErr(err)
		}
		if v <= 0xffffffff {
			return 0, ErrNonCanonicalVarInt
		}
		return v, nil
	default:
		return uint64(disc), nil
	}
}

// VarIntLen returns the number of bytes WriteVarInt would emit for v.
func VarIntLen(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// WriteVarString writes a varint length prefix followed by the raw bytes of
// s.
func WriteVarString(w io.Writer, s string) error {
	if err := WriteVarInt(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadVarString reads a varint-prefixed string, refusing to allocate more
// than MaxVarStringLen bytes for a single field.
func ReadVarString(r io.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n > MaxVarStringLen {
		return "", ErrMalformedVarString
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", wrapShortRead(err)
	}
	return string(buf), nil
}

// WriteVarBytes writes a varint length prefix followed by b.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a varint-prefixed byte slice, bounded by maxLen.
func ReadVarBytes(r io.Reader, maxLen uint64) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxLen {
		return nil, ErrOversizePayload
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapShortRead(err)
	}
	return buf, nil
}

func wrapShortRead(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncatedFrame
	}
	return err
}

func wrapVarIntErr(err error) error {
	if err == ErrTruncatedFrame {
		return ErrMalformedVarInt
	}
	return err
}
