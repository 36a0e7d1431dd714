// internal/proto/block.go
package proto

import "encoding/binary"

// BlockHeader precedes the data of every block the host streams in.
// Checksum is the 16-bit sum of Data[0:Size].
type BlockHeader struct {
	Size     uint16
	Checksum uint16
}

// ReadBlockHeader decodes the header at the start of a block buffer.
func ReadBlockHeader(buf []byte) (BlockHeader, bool) {
	if len(buf) < BlockHeaderSize {
		return BlockHeader{}, false
	}
	return BlockHeader{
		Size:     binary.LittleEndian.Uint16(buf[0:2]),
		Checksum: binary.LittleEndian.Uint16(buf[2:4]),
	}, true
}

// ValidBlock reports whether buf holds a well formed block (header + data).
// The AP only uses this for diagnostics; tags validate blocks themselves.
func ValidBlock(buf []byte) bool {
	h, ok := ReadBlockHeader(buf)
	if !ok || int(h.Size) > BlockDataSize || len(buf) < BlockHeaderSize+int(h.Size) {
		return false
	}
	var sum uint16
	for _, b := range buf[BlockHeaderSize : BlockHeaderSize+int(h.Size)] {
		sum += uint16(b)
	}
	return sum == h.Checksum
}

// EncodeBlock wraps data in a block header. Data beyond BlockDataSize is dropped.
func EncodeBlock(data []byte) []byte {
	if len(data) > BlockDataSize {
		data = data[:BlockDataSize]
	}
	out := make([]byte, BlockXferSize)
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(data)))
	binary.LittleEndian.PutUint16(out[2:4], sum)
	copy(out[BlockHeaderSize:], data)
	return out
}
