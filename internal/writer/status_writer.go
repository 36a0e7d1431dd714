// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/tag-ap/internal/status"
)

// apStatusWriter is the concrete implementation used by the AP.
type apStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
}

// NewStatusWriter builds a status writer if status export is enabled.
// If plan is nil, status is disabled.
func NewStatusWriter(plan *StatusPlan, cli endpointClient) (*apStatusWriter, bool) {
	if plan == nil {
		return nil, false
	}
	return &apStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}, true
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *apStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull || sw.last.MAC != s.MAC {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, status.Encode(s)); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per changed live slot
	// ------------------------------------------------------------
	var errs []string
	prev := sw.last.Live()
	next := s.Live()

	for slot := range next {
		if prev[slot] == next[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			baseAddr+uint16(slot),
			[]uint16{next[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *apStatusWriter) baseAddr() uint16 {
	// Each block owns a fixed SlotsPerBlock range.
	return sw.plan.BaseSlot * status.SlotsPerBlock
}
