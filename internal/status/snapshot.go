// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LiveOffers     uint16
	EventMode      uint16
	TransferActive uint16
	BlockID        uint16

	RxFrames      uint16
	TxFrames      uint16
	ChecksumDrops uint16
	Cancels       uint16
	Fetches       uint16
	Completions   uint16
	Timeouts      uint16

	MAC [8]byte
}

// Live returns the value of every live slot, indexed by slot.
// The MAC is identity, not live state, and is not included.
func (s Snapshot) Live() [SlotTimeouts + 1]uint16 {
	return [SlotTimeouts + 1]uint16{
		SlotHealthCode:     s.Health,
		SlotLiveOffers:     s.LiveOffers,
		SlotEventMode:      s.EventMode,
		SlotTransferActive: s.TransferActive,
		SlotBlockID:        s.BlockID,
		SlotRxFrames:       s.RxFrames,
		SlotTxFrames:       s.TxFrames,
		SlotChecksumDrops:  s.ChecksumDrops,
		SlotCancels:        s.Cancels,
		SlotFetches:        s.Fetches,
		SlotCompletions:    s.Completions,
		SlotTimeouts:       s.Timeouts,
	}
}
