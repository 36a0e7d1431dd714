// internal/ap/snapshot.go
package ap

import (
	"fmt"
	"time"

	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/status"
)

// Counters are cumulative since start or the last host reset.
type Counters struct {
	RxFrames      uint64 `json:"rx_frames"`
	TxFrames      uint64 `json:"tx_frames"`
	UnknownFrames uint64 `json:"unknown_frames"`
	ChecksumDrops uint64 `json:"checksum_drops"`
	RadioErrors   uint64 `json:"radio_errors"`
	HostBytes     uint64 `json:"host_bytes"`
	HostNaks      uint64 `json:"host_naks"`
	QueueFull     uint64 `json:"queue_full"`
	BlocksLoaded  uint64 `json:"blocks_loaded"`
	Timeouts      uint64 `json:"timeouts"`
	Sweeps        uint64 `json:"sweeps"`
	Nudges        uint64 `json:"nudges"`
}

// TransferView describes the block-transfer session.
type TransferView struct {
	Active      bool   `json:"active"`
	Tag         string `json:"tag,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	BlockID     uint8  `json:"block_id"`
	Version     string `json:"version,omitempty"`
	SendPending bool   `json:"send_pending"`

	Requests    uint64 `json:"requests"`
	Cancels     uint64 `json:"cancels"`
	Fetches     uint64 `json:"fetches"`
	PartsSent   uint64 `json:"parts_sent"`
	Completions uint64 `json:"completions"`
}

// PendingView is one live registry entry.
type PendingView struct {
	Tag          string `json:"tag"`
	Version      string `json:"version"`
	Size         uint32 `json:"size"`
	Type         string `json:"type"`
	TypeArg      uint8  `json:"type_arg"`
	NextCheckIn  uint16 `json:"next_checkin_min"`
	AttemptsLeft uint16 `json:"attempts_left"`
}

// Snapshot is a point-in-time copy of engine state, published by the loop.
type Snapshot struct {
	MAC             string        `json:"mac"`
	ProtocolVersion string        `json:"protocol_version"`
	StartedAt       time.Time     `json:"started_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	HostLinkUp      bool          `json:"host_link_up"`
	EventMode       bool          `json:"event_mode"`
	Framer          string        `json:"framer"`
	Capacity        int           `json:"capacity"`
	LiveOffers      int           `json:"live_offers"`
	Transfer        TransferView  `json:"transfer"`
	Counters        Counters      `json:"counters"`
	Pending         []PendingView `json:"pending"`

	mac proto.MAC
}

func versionHex(v uint64) string {
	return fmt.Sprintf("%016X", v)
}

// publish replaces the shared snapshot. Called from the loop only.
func (e *Engine) publish() {
	info := e.xfer.Info()
	st := e.xfer.Stats()

	entries := e.reg.Entries()
	pending := make([]PendingView, 0, len(entries))
	for _, en := range entries {
		pending = append(pending, PendingView{
			Tag:          en.MAC.String(),
			Version:      versionHex(en.Offer.Version),
			Size:         en.Offer.Size,
			Type:         en.Offer.Type.String(),
			TypeArg:      en.Offer.TypeArg,
			NextCheckIn:  en.Offer.NextCheckIn,
			AttemptsLeft: en.AttemptsLeft,
		})
	}

	linkUp := true
	if le, ok := e.link.(interface{ Err() error }); ok && le.Err() != nil {
		linkUp = false
	}

	snap := Snapshot{
		MAC:             e.cfg.MAC.String(),
		ProtocolVersion: fmt.Sprintf("%04X", e.cfg.ProtocolVersion),
		StartedAt:       e.startedAt,
		UpdatedAt:       time.Now(),
		HostLinkUp:      linkUp,
		EventMode:       e.rx.EventMode,
		Framer:          e.rx.Phase.String(),
		Capacity:        e.reg.Capacity(),
		LiveOffers:      len(entries),
		Transfer: TransferView{
			Active:      info.HasActive,
			SessionID:   info.SessionID,
			BlockID:     info.BlockID,
			SendPending: info.SendPending,
			Requests:    st.Requests,
			Cancels:     st.Cancels,
			Fetches:     st.Fetches,
			PartsSent:   st.PartsSent,
			Completions: st.Completions,
		},
		Counters: e.counters,
		Pending:  pending,
		mac:      e.cfg.MAC,
	}
	if info.HasActive {
		snap.Transfer.Tag = info.Active.String()
	}
	if info.Buffered {
		snap.Transfer.Version = versionHex(info.Version)
	}

	e.snapMu.Lock()
	e.snap = snap
	e.snapMu.Unlock()
}

// Snapshot returns the most recently published state.
func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// Status maps a snapshot onto the status block.
func (s Snapshot) Status() status.Snapshot {
	out := status.Snapshot{
		Health:        status.HealthOK,
		LiveOffers:    uint16(s.LiveOffers),
		BlockID:       uint16(s.Transfer.BlockID),
		RxFrames:      uint16(s.Counters.RxFrames),
		TxFrames:      uint16(s.Counters.TxFrames),
		ChecksumDrops: uint16(s.Counters.ChecksumDrops),
		Cancels:       uint16(s.Transfer.Cancels),
		Fetches:       uint16(s.Transfer.Fetches),
		Completions:   uint16(s.Transfer.Completions),
		Timeouts:      uint16(s.Counters.Timeouts),
		MAC:           s.mac,
	}
	switch {
	case s.StartedAt.IsZero():
		out.Health = status.HealthUnknown
	case !s.HostLinkUp:
		out.Health = status.HealthError
	}
	if s.EventMode {
		out.EventMode = 1
	}
	if s.Transfer.Active {
		out.TransferActive = 1
	}
	return out
}
