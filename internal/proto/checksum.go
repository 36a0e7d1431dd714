// internal/proto/checksum.go
package proto

// Checksum returns the additive 8-bit checksum of buf[1:].
// Byte 0 is the checksum slot and is never part of the sum.
func Checksum(buf []byte) byte {
	var sum byte
	for i := 1; i < len(buf); i++ {
		sum += buf[i]
	}
	return sum
}

// Verify reports whether buf[0] holds the checksum of the rest of buf.
// An empty buffer never verifies.
func Verify(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	return buf[0] == Checksum(buf)
}

// AddChecksum stores the checksum of buf[1:] into buf[0].
func AddChecksum(buf []byte) {
	if len(buf) == 0 {
		return
	}
	buf[0] = Checksum(buf)
}
