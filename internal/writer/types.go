// internal/writer/types.go
package writer

import (
	"time"

	"github.com/tamzrod/tag-ap/internal/status"
)

// StatusPlan is where and how often the AP status block is written.
type StatusPlan struct {
	Endpoint string
	UnitID   uint8
	BaseSlot uint16
	Interval time.Duration
	Timeout  time.Duration
}

// StatusWriter is the delivery-only contract for AP status.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// SnapshotSource yields the current status snapshot.
type SnapshotSource func() status.Snapshot

// endpointClient is the exact contract the status writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
