// internal/ap/dispatch.go
package ap

import (
	"github.com/tamzrod/tag-ap/internal/host"
	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/transfer"
)

// handleFrame dispatches one received radio frame.
func (e *Engine) handleFrame(raw []byte) {
	e.counters.RxFrames++

	kind, _ := proto.Classify(raw)
	switch kind {
	case proto.FrameBroadcast:
		f, err := proto.ParseBroadcast(raw)
		if err != nil {
			e.dropUnknown(raw, err)
			return
		}
		e.handleBroadcast(f, len(raw))
	case proto.FrameNormal:
		f, err := proto.ParseNormal(raw)
		if err != nil {
			e.dropUnknown(raw, err)
			return
		}
		e.handleNormal(f)
	default:
		e.dropUnknown(raw, proto.ErrUnknownFrame)
	}
}

func (e *Engine) dropUnknown(raw []byte, err error) {
	e.counters.UnknownFrames++
	e.log.Debug("ap: frame dropped", "len", len(raw), "err", err)
}

func (e *Engine) handleBroadcast(f proto.BroadcastFrame, frameLen int) {
	switch f.Type {
	case proto.PktAvailDataReq:
		req, err := proto.DecodeAvailDataReq(f.Body)
		if err != nil {
			e.counters.ChecksumDrops++
			e.log.Debug("ap: avail request dropped", "tag", f.Header.Src.String(), "err", err)
			return
		}
		e.answerAvail(f.Header, req)

	case proto.PktAvailDataShortReq:
		if e.rx.EventMode {
			e.pong(f.Header)
			return
		}
		if frameLen != proto.ShortAvailReqFrameSize {
			e.counters.UnknownFrames++
			return
		}
		e.answerAvail(f.Header, proto.AvailDataReq{})

	case proto.PktEventDataReq:
		if e.rx.EventMode {
			e.sendEventData(f.Header)
		}

	case proto.PktPing:
		e.pong(f.Header)

	default:
		e.counters.UnknownFrames++
		e.log.Debug("ap: unhandled broadcast", "type", f.Type, "tag", f.Header.Src.String())
	}
}

func (e *Engine) handleNormal(f proto.NormalFrame) {
	switch f.Type {
	case proto.PktBlockRequest, proto.PktBlockPartialReq:
		force := f.Type == proto.PktBlockRequest
		res := e.xfer.HandleBlockRequest(e.clk.Now(), f.Header, f.Body, force)
		switch res.Outcome {
		case transfer.BadChecksum:
			e.counters.ChecksumDrops++
		case transfer.Accepted:
			if res.Fetch {
				e.rx = e.rx.ExpectBlock()
			}
		}

	case proto.PktXferComplete:
		e.xfer.HandleXferComplete(f.Header)

	default:
		e.counters.UnknownFrames++
		e.log.Debug("ap: unhandled unicast", "type", f.Type, "tag", f.Header.Src.String())
	}
}

// answerAvail replies to a check-in with the tag's pending offer, or NoUpdate.
func (e *Engine) answerAvail(h proto.BroadcastHeader, req proto.AvailDataReq) {
	info := proto.AvailDataInfo{Type: proto.DataTypeNoUpdate}
	if entry, ok := e.reg.Lookup(h.Src); ok {
		info = entry.Offer
	}

	if err := e.SendNormal(h.Src, h.DstPAN, proto.PktAvailDataInfo, info.Encode()); err != nil {
		e.log.Warn("ap: avail reply failed", "tag", h.Src.String(), "err", err)
	}
	e.xfer.ResetAckTracker()

	if err := e.note.AvailRelay(host.AvailRelay{Src: h.Src, Req: req}); err != nil {
		e.log.Warn("ap: avail relay failed", "err", err)
	}
	e.log.Debug("ap: check-in",
		"tag", h.Src.String(),
		"offer", info.Type.String(),
		"battery_mv", req.BatteryMV,
		"rssi", req.LastPacketRSSI,
	)
}

// ---- event fast path ----

func (e *Engine) pong(h proto.BroadcastHeader) {
	ptype := proto.PktPong
	if e.rx.EventMode {
		ptype = proto.PktEventPong
	}
	if err := e.SendNormal(h.Src, h.SrcPAN, ptype, nil); err != nil {
		e.log.Warn("ap: pong failed", "tag", h.Src.String(), "err", err)
	}
}

func (e *Engine) sendEventData(h proto.BroadcastHeader) {
	if err := e.SendNormal(h.Src, h.SrcPAN, proto.PktEventData, e.event.Encode()); err != nil {
		e.log.Warn("ap: event data failed", "tag", h.Src.String(), "err", err)
	}
}
