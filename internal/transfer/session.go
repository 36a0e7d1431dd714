// internal/transfer/session.go
package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/tag-ap/internal/clock"
	"github.com/tamzrod/tag-ap/internal/host"
	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/registry"
)

// ---- collaborators ----

// Sender transmits one unicast frame to a tag.
type Sender interface {
	SendNormal(dst proto.MAC, pan uint16, ptype byte, body []byte) error
}

// Host receives fetch requests and completion notices.
// *host.Notifier satisfies it.
type Host interface {
	FetchRequest(host.FetchRequest) error
	XferComplete(src proto.MAC) error
}

// ---- parameters ----

// Params are the timing constants of the transfer protocol.
type Params struct {
	// CoolDown is how long an active tag keeps exclusivity after its last request.
	CoolDown time.Duration
	// ForceRefetch debounces repeated full requests for the buffered block.
	ForceRefetch time.Duration

	AckFirstBlock time.Duration
	AckFetch      time.Duration
	AckCached     time.Duration
}

func DefaultParams() Params {
	return Params{
		CoolDown:      1200 * time.Millisecond,
		ForceRefetch:  380 * time.Millisecond,
		AckFirstBlock: 200 * time.Millisecond,
		AckFetch:      100 * time.Millisecond,
		AckCached:     50 * time.Millisecond,
	}
}

// ---- outcomes ----

type Outcome uint8

const (
	Accepted Outcome = iota
	Rejected
	NoOffer
	BadChecksum
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case NoOffer:
		return "no-offer"
	case BadChecksum:
		return "bad-checksum"
	default:
		return "unknown"
	}
}

// Result describes what HandleBlockRequest did.
type Result struct {
	Outcome    Outcome
	Fetch      bool
	PleaseWait time.Duration
	SessionID  string
}

// Stats are cumulative counters since the last Reset.
type Stats struct {
	Requests    uint64
	Cancels     uint64
	Fetches     uint64
	PartsSent   uint64
	Completions uint64
	TxErrors    uint64
}

// Info is a read-only view for diagnostics.
type Info struct {
	Active      proto.MAC
	HasActive   bool
	SessionID   string
	BlockID     uint8
	Version     uint64
	Buffered    bool
	SendPending bool
	Destination proto.MAC
}

// ---- session ----

// Session owns the single block buffer and the exclusivity gate.
// It is driven by the AP loop and is not safe for concurrent use.
type Session struct {
	params Params
	reg    *registry.Registry
	tx     Sender
	host   Host
	log    logger.Logger

	// buffered request descriptor
	requested   proto.BlockRequest
	haveRequest bool
	buf         [proto.BlockBufferSize]byte
	loaded      int

	// exclusivity gate
	active      proto.MAC
	hasActive   bool
	lastRequest clock.Tick
	sessionID   string

	lastFetch clock.Tick
	deadline  clock.Deadline
	dst       proto.MAC
	dstPAN    uint16

	lastAck      proto.MAC
	lastAckValid bool

	stats Stats
}

func New(p Params, reg *registry.Registry, tx Sender, h Host, log logger.Logger) *Session {
	return &Session{
		params: p,
		reg:    reg,
		tx:     tx,
		host:   h,
		log:    log,
	}
}

// HandleBlockRequest processes a block request body from hdr.Src.
// force is set for full requests and clear for partial ones.
func (s *Session) HandleBlockRequest(now clock.Tick, hdr proto.NormalHeader, body []byte, force bool) Result {
	req, err := proto.DecodeBlockRequest(body)
	if err != nil {
		s.log.Debug("transfer: block request dropped", "tag", hdr.Src.String(), "err", err)
		return Result{Outcome: BadChecksum}
	}
	s.stats.Requests++

	if !s.admit(now, hdr.Src) {
		s.log.Info("transfer: tag rejected, another transfer is active",
			"tag", hdr.Src.String(), "active", s.active.String(), "session", s.sessionID)
		s.cancel(hdr)
		return Result{Outcome: Rejected, SessionID: s.sessionID}
	}

	if s.reg.FindSlotForMac(hdr.Src) == -1 {
		s.log.Info("transfer: no offer for tag", "tag", hdr.Src.String())
		s.cancel(hdr)
		return Result{Outcome: NoOffer, SessionID: s.sessionID}
	}

	fetch := !s.haveRequest ||
		req.BlockID != s.requested.BlockID ||
		req.Version != s.requested.Version
	if !fetch && force {
		if clock.Since(now, s.lastFetch) > s.params.ForceRefetch {
			fetch = true
			s.log.Debug("transfer: forced refetch", "tag", hdr.Src.String(), "block", req.BlockID)
		} else {
			s.log.Debug("transfer: forced refetch ignored", "tag", hdr.Src.String(), "block", req.BlockID)
		}
	}

	s.requested = req
	s.haveRequest = true

	wait := s.params.AckCached
	if !s.deadline.Armed() && fetch {
		if req.BlockID == 0 {
			wait = s.params.AckFirstBlock
		} else {
			wait = s.params.AckFetch
		}
	}
	ack := proto.BlockRequestAck{PleaseWaitMs: uint16(wait / time.Millisecond)}
	s.send(hdr.Src, hdr.PAN, proto.PktBlockRequestAck, ack.Encode())
	s.deadline.Arm(now, wait)

	s.dst = hdr.Src
	s.dstPAN = hdr.PAN

	if fetch {
		if err := s.host.FetchRequest(host.FetchRequest{Version: req.Version, BlockID: req.BlockID}); err != nil {
			s.log.Warn("transfer: fetch request failed", "err", err)
		}
		s.lastFetch = now
		s.stats.Fetches++
	}

	s.log.Debug("transfer: block request accepted",
		"tag", hdr.Src.String(),
		"block", req.BlockID,
		"parts", req.Parts.Count(),
		"fetch", fetch,
		"wait_ms", ack.PleaseWaitMs,
		"session", s.sessionID,
	)
	return Result{Outcome: Accepted, Fetch: fetch, PleaseWait: wait, SessionID: s.sessionID}
}

// admit applies the exclusivity gate.
func (s *Session) admit(now clock.Tick, src proto.MAC) bool {
	if s.hasActive && src == s.active {
		s.lastRequest = now
		return true
	}
	if s.hasActive && clock.Since(now, s.lastRequest) <= s.params.CoolDown {
		return false
	}
	s.active = src
	s.hasActive = true
	s.lastRequest = now
	s.sessionID = uuid.NewString()
	s.log.Info("transfer: new session", "tag", src.String(), "session", s.sessionID)
	return true
}

func (s *Session) cancel(hdr proto.NormalHeader) {
	s.stats.Cancels++
	s.send(hdr.Src, hdr.PAN, proto.PktCancelXfer, nil)
}

func (s *Session) send(dst proto.MAC, pan uint16, ptype byte, body []byte) {
	if err := s.tx.SendNormal(dst, pan, ptype, body); err != nil {
		s.stats.TxErrors++
		s.log.Warn("transfer: radio tx failed", "tag", dst.String(), "type", ptype, "err", err)
	}
}

// Service sends the requested parts once the deadline is due.
// It returns the number of part frames transmitted.
func (s *Session) Service(now clock.Tick) int {
	if !s.deadline.Due(now) {
		return 0
	}
	s.deadline.Disarm()

	parts := s.requested.Parts.Parts()
	if len(parts) == 0 {
		s.log.Warn("transfer: request without parts, sending part 0", "tag", s.dst.String())
		s.requested.Parts.Set(0)
		parts = []int{0}
	}

	for _, p := range parts {
		part := proto.BlockPart{BlockID: s.requested.BlockID, Part: uint8(p)}
		off := p * proto.BlockPartDataSize
		copy(part.Data[:], s.buf[off:off+proto.BlockPartDataSize])
		s.send(s.dst, s.dstPAN, proto.PktBlockPart, part.Encode())
	}
	s.stats.PartsSent += uint64(len(parts))
	s.log.Debug("transfer: parts sent",
		"tag", s.dst.String(), "block", s.requested.BlockID, "parts", len(parts), "session", s.sessionID)
	return len(parts)
}

// HandleXferComplete acknowledges a completion and reports whether it was
// the first one since the tracker was last reset.
func (s *Session) HandleXferComplete(hdr proto.NormalHeader) bool {
	s.send(hdr.Src, hdr.PAN, proto.PktXferCompleteAck, nil)
	if s.lastAckValid && s.lastAck == hdr.Src {
		return false
	}
	s.lastAck = hdr.Src
	s.lastAckValid = true

	if err := s.host.XferComplete(hdr.Src); err != nil {
		s.log.Warn("transfer: completion notice failed", "err", err)
	}
	s.reg.Release(hdr.Src)
	s.stats.Completions++
	s.log.Info("transfer: complete", "tag", hdr.Src.String(), "session", s.sessionID)
	return true
}

// ResetAckTracker makes the next completion from any tag count as fresh.
func (s *Session) ResetAckTracker() {
	s.lastAckValid = false
}

// ---- block load ----

// BeginBlockLoad starts refilling the block buffer from the host.
func (s *Session) BeginBlockLoad() {
	s.loaded = 0
}

// LoadBlockByte stores one host byte at off.
func (s *Session) LoadBlockByte(off int, b byte) {
	if off < 0 || off >= len(s.buf) {
		return
	}
	s.buf[off] = b
	s.loaded = off + 1
}

// EndBlockLoad reports whether the loaded block carries a consistent header.
func (s *Session) EndBlockLoad() bool {
	ok := proto.ValidBlock(s.buf[:proto.BlockXferSize])
	if !ok {
		h, _ := proto.ReadBlockHeader(s.buf[:])
		s.log.Warn("transfer: loaded block fails header check",
			"size", h.Size, "checksum", h.Checksum, "bytes", s.loaded)
	}
	return ok
}

// Block returns the block buffer. Callers must not retain it.
func (s *Session) Block() []byte {
	return s.buf[:]
}

// ---- state ----

// Reset returns the session to its power-on state.
func (s *Session) Reset() {
	s.requested = proto.BlockRequest{}
	s.haveRequest = false
	s.buf = [proto.BlockBufferSize]byte{}
	s.loaded = 0
	s.active = proto.MAC{}
	s.hasActive = false
	s.lastRequest = 0
	s.sessionID = ""
	s.lastFetch = 0
	s.deadline.Disarm()
	s.dst = proto.MAC{}
	s.dstPAN = 0
	s.lastAck = proto.MAC{}
	s.lastAckValid = false
	s.stats = Stats{}
}

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) Info() Info {
	return Info{
		Active:      s.active,
		HasActive:   s.hasActive,
		SessionID:   s.sessionID,
		BlockID:     s.requested.BlockID,
		Version:     s.requested.Version,
		Buffered:    s.haveRequest,
		SendPending: s.deadline.Armed(),
		Destination: s.dst,
	}
}
