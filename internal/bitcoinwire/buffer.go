package bitcoinwire

import "bytes"

// newGrowBuffer returns an empty, growable byte buffer used internally when
// a Message needs to be serialized to measure or hash its payload before
// framing.
func newGrowBuffer() *bytes.Buffer {
	return new(bytes.Buffer)
}
