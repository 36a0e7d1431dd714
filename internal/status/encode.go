// internal/status/encode.go
package status

// Encode converts a Snapshot into a full AP status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerBlock)

	live := s.Live()
	copy(regs, live[:])

	// Slots 12..15 are RESERVED and left as zero.

	mac := EncodeMAC(s.MAC)
	copy(regs[SlotMACStart:], mac[:])

	return regs
}

// EncodeMAC packs the 8-byte MAC into 4 registers, two bytes each, big-endian.
func EncodeMAC(mac [8]byte) [SlotMACSlots]uint16 {
	var out [SlotMACSlots]uint16
	for i := range out {
		out[i] = uint16(mac[2*i])<<8 | uint16(mac[2*i+1])
	}
	return out
}
