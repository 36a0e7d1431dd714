// internal/host/framer.go
package host

import (
	"github.com/tamzrod/tag-ap/internal/proto"
)

// Phase is the receive phase of the control-channel framer.
type Phase uint8

const (
	WaitHeader Phase = iota
	WaitPushOffer
	WaitCancel
	WaitEventPayload
	WaitBlockData
)

func (p Phase) String() string {
	switch p {
	case WaitHeader:
		return "wait-header"
	case WaitPushOffer:
		return "wait-push-offer"
	case WaitCancel:
		return "wait-cancel"
	case WaitEventPayload:
		return "wait-event-payload"
	case WaitBlockData:
		return "wait-block-data"
	default:
		return "unknown"
	}
}

const stagingSize = proto.EventDataSize

// State is the complete framer state. It is a plain value:
// Step never mutates its input.
type State struct {
	Phase Phase

	// EventMode is toggled by EEM> / SEM>. SDA> is ignored while it is set.
	EventMode bool

	// AwaitingBlock arms recognition of >D> after a fetch request went out.
	AwaitingBlock bool

	window  [4]byte
	staging [stagingSize]byte
	n       int
	want    int
}

// ExpectBlock arms the framer for one block-data transfer.
func (s State) ExpectBlock() State {
	s.AwaitingBlock = true
	return s
}

// EffectKind names what the caller must do after a Step.
type EffectKind uint8

const (
	EffectNone EffectKind = iota
	EffectPushOffer
	EffectCancelVersion
	EffectStageEvent
	EffectEventMode
	EffectQueryVersion
	EffectQueryReady
	EffectReset
	EffectNak
	EffectBlockByte
	EffectBlockDone
)

func (k EffectKind) String() string {
	switch k {
	case EffectNone:
		return "none"
	case EffectPushOffer:
		return "push-offer"
	case EffectCancelVersion:
		return "cancel-version"
	case EffectStageEvent:
		return "stage-event"
	case EffectEventMode:
		return "event-mode"
	case EffectQueryVersion:
		return "query-version"
	case EffectQueryReady:
		return "query-ready"
	case EffectReset:
		return "reset"
	case EffectNak:
		return "nak"
	case EffectBlockByte:
		return "block-byte"
	case EffectBlockDone:
		return "block-done"
	default:
		return "unknown"
	}
}

// Effect is the outcome of one Step. Only the fields relevant to Kind are set.
type Effect struct {
	Kind EffectKind

	Pending PendingData     // PushOffer, CancelVersion
	Event   proto.EventData // StageEvent
	On      bool            // EventMode

	// BlockByte and BlockDone: Byte belongs at Offset in the block buffer.
	// BlockDone carries the final byte.
	Byte   byte
	Offset int
}

// Step consumes one byte from the host.
func Step(s State, c byte) (State, Effect) {
	switch s.Phase {
	case WaitHeader:
		return stepHeader(s, c)
	case WaitPushOffer, WaitCancel, WaitEventPayload:
		return stepPayload(s, c)
	case WaitBlockData:
		return stepBlock(s, c)
	default:
		s.Phase = WaitHeader
		return s, Effect{}
	}
}

func stepHeader(s State, c byte) (State, Effect) {
	copy(s.window[:3], s.window[1:])
	s.window[3] = c

	if s.AwaitingBlock && string(s.window[1:]) == HdrBlockData {
		s.AwaitingBlock = false
		return s.begin(WaitBlockData, proto.BlockXferSize), Effect{}
	}

	switch string(s.window[:]) {
	case HdrPushOffer:
		if s.EventMode {
			return s, Effect{}
		}
		return s.begin(WaitPushOffer, PendingDataSize), Effect{}
	case HdrCancel:
		return s.begin(WaitCancel, PendingDataSize), Effect{}
	case HdrEventPayload:
		return s.begin(WaitEventPayload, proto.EventDataSize), Effect{}
	case HdrEventOn:
		s.EventMode = true
		s.window = [4]byte{}
		return s, Effect{Kind: EffectEventMode, On: true}
	case HdrEventOff:
		s.EventMode = false
		s.window = [4]byte{}
		return s, Effect{Kind: EffectEventMode, On: false}
	case HdrVersion:
		s.window = [4]byte{}
		return s, Effect{Kind: EffectQueryVersion}
	case HdrReady:
		s.window = [4]byte{}
		return s, Effect{Kind: EffectQueryReady}
	case HdrReset:
		s.window = [4]byte{}
		return s, Effect{Kind: EffectReset}
	}
	return s, Effect{}
}

func (s State) begin(p Phase, want int) State {
	s.Phase = p
	s.window = [4]byte{}
	s.n = 0
	s.want = want
	return s
}

func stepPayload(s State, c byte) (State, Effect) {
	s.staging[s.n] = c
	s.n++
	if s.n < s.want {
		return s, Effect{}
	}

	phase := s.Phase
	s.Phase = WaitHeader
	buf := s.staging[:s.want]

	switch phase {
	case WaitPushOffer, WaitCancel:
		pd, err := DecodePendingData(buf)
		if err != nil {
			return s, Effect{Kind: EffectNak}
		}
		kind := EffectPushOffer
		if phase == WaitCancel {
			kind = EffectCancelVersion
		}
		return s, Effect{Kind: kind, Pending: pd}
	default:
		ev, err := proto.DecodeEventData(buf)
		if err != nil {
			return s, Effect{Kind: EffectNak}
		}
		return s, Effect{Kind: EffectStageEvent, Event: ev}
	}
}

func stepBlock(s State, c byte) (State, Effect) {
	off := s.n
	s.n++
	if s.n < s.want {
		return s, Effect{Kind: EffectBlockByte, Byte: c, Offset: off}
	}
	s.Phase = WaitHeader
	return s, Effect{Kind: EffectBlockDone, Byte: c, Offset: off}
}
