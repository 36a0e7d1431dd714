// internal/status/constants.go
package status

// AP Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of holding registers in the status block.
const SlotsPerBlock = 20

// ---- SLOT INDICES ----

const (
	SlotHealthCode     = 0
	SlotLiveOffers     = 1
	SlotEventMode      = 2
	SlotTransferActive = 3
	SlotBlockID        = 4

	// Counters are the low 16 bits of the engine's 64-bit counters.
	SlotRxFrames      = 5
	SlotTxFrames      = 6
	SlotChecksumDrops = 7
	SlotCancels       = 8
	SlotFetches       = 9
	SlotCompletions   = 10
	SlotTimeouts      = 11
)

// ---- RESERVED RANGE ----

// Slots 12-15 are reserved for future use.
const SlotReservedStart = 12
const SlotReservedEnd = 15

// ---- AP MAC ----

// SlotMACStart is the first slot holding the AP MAC.
// The MAC is always placed at the END of the status block.
const SlotMACStart = 16

// SlotMACSlots is the number of slots holding the MAC (two bytes each, big-endian).
const SlotMACSlots = 4

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the loop started.
const HealthUnknown uint16 = 0

// HealthOK represents a running AP with a live host link.
const HealthOK uint16 = 1

// HealthError represents a lost host link.
const HealthError uint16 = 2
