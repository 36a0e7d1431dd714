// internal/proto/frame.go
package proto

import (
	"encoding/binary"
	"fmt"
)

// FrameKind is the MAC frame shape recognised from the frame control field.
type FrameKind uint8

const (
	FrameUnknown FrameKind = iota
	FrameNormal
	FrameBroadcast
)

func (k FrameKind) String() string {
	switch k {
	case FrameNormal:
		return "normal"
	case FrameBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Frame geometry.
//
// Normal:    FCS(2) Seq(1) PAN(2) Dst(8) Src(8)                         = 21
// Broadcast: FCS(2) Seq(1) DstPAN(2) DstAddr(2) SrcPAN(2) Src(8)        = 17
//
// The payload type byte follows the header, the payload body follows the type.
const (
	NormalHeaderSize    = 21
	BroadcastHeaderSize = 17

	// MaxFrameSize excludes the 2-byte link CRC appended by the transceiver.
	MaxFrameSize = 125

	// ShortAvailReqFrameSize is the only accepted length of a short availability request.
	ShortAvailReqFrameSize = BroadcastHeaderSize + 1

	// BroadcastAddr is the short destination address used by tag discovery broadcasts.
	BroadcastAddr uint16 = 0xFFFF
)

const (
	frameTypeData    = 1
	addrTypeShort    = 2
	addrTypeExtended = 3
)

// FrameControl holds the four FCS fields used for classification.
type FrameControl struct {
	FrameType     uint8
	PANCompressed bool
	DestAddrType  uint8
	SrcAddrType   uint8
}

// ParseFrameControl decodes the 2-byte frame control field.
func ParseFrameControl(b0, b1 byte) FrameControl {
	return FrameControl{
		FrameType:     b0 & 0x07,
		PANCompressed: b0&0x40 != 0,
		DestAddrType:  (b1 >> 2) & 0x03,
		SrcAddrType:   (b1 >> 6) & 0x03,
	}
}

// Bytes encodes the frame control field.
func (fc FrameControl) Bytes() [2]byte {
	var out [2]byte
	out[0] = fc.FrameType & 0x07
	if fc.PANCompressed {
		out[0] |= 0x40
	}
	out[1] = (fc.DestAddrType&0x03)<<2 | (fc.SrcAddrType&0x03)<<6
	return out
}

// Kind maps the control field onto a frame shape.
func (fc FrameControl) Kind() FrameKind {
	if fc.FrameType != frameTypeData || fc.SrcAddrType != addrTypeExtended {
		return FrameUnknown
	}
	switch {
	case fc.DestAddrType == addrTypeExtended && fc.PANCompressed:
		return FrameNormal
	case fc.DestAddrType == addrTypeShort && !fc.PANCompressed:
		return FrameBroadcast
	default:
		return FrameUnknown
	}
}

var (
	normalControl = FrameControl{
		FrameType:     frameTypeData,
		PANCompressed: true,
		DestAddrType:  addrTypeExtended,
		SrcAddrType:   addrTypeExtended,
	}
	broadcastControl = FrameControl{
		FrameType:    frameTypeData,
		DestAddrType: addrTypeShort,
		SrcAddrType:  addrTypeExtended,
	}
)

// NormalHeader is the unicast MAC header.
type NormalHeader struct {
	Seq uint8
	PAN uint16
	Dst MAC
	Src MAC
}

// BroadcastHeader is the broadcast MAC header.
type BroadcastHeader struct {
	Seq     uint8
	DstPAN  uint16
	DstAddr uint16
	SrcPAN  uint16
	Src     MAC
}

// NormalFrame is a parsed unicast frame. Body aliases the input buffer.
type NormalFrame struct {
	Header NormalHeader
	Type   byte
	Body   []byte
}

// BroadcastFrame is a parsed broadcast frame. Body aliases the input buffer.
type BroadcastFrame struct {
	Header BroadcastHeader
	Type   byte
	Body   []byte
}

// Classify inspects the frame control bits and returns the shape and payload type.
// Frames too short to carry a type byte classify as unknown.
func Classify(raw []byte) (FrameKind, byte) {
	if len(raw) < 2 {
		return FrameUnknown, 0
	}
	kind := ParseFrameControl(raw[0], raw[1]).Kind()
	switch kind {
	case FrameNormal:
		if len(raw) <= NormalHeaderSize {
			return FrameUnknown, 0
		}
		return kind, raw[NormalHeaderSize]
	case FrameBroadcast:
		if len(raw) <= BroadcastHeaderSize {
			return FrameUnknown, 0
		}
		return kind, raw[BroadcastHeaderSize]
	default:
		return FrameUnknown, 0
	}
}

// ParseNormal decodes a unicast frame.
func ParseNormal(raw []byte) (NormalFrame, error) {
	var f NormalFrame
	if len(raw) < 2 || ParseFrameControl(raw[0], raw[1]).Kind() != FrameNormal {
		return f, ErrUnknownFrame
	}
	if len(raw) <= NormalHeaderSize {
		return f, ErrShortFrame
	}
	f.Header.Seq = raw[2]
	f.Header.PAN = binary.LittleEndian.Uint16(raw[3:5])
	copy(f.Header.Dst[:], raw[5:13])
	copy(f.Header.Src[:], raw[13:21])
	f.Type = raw[NormalHeaderSize]
	f.Body = raw[NormalHeaderSize+1:]
	return f, nil
}

// ParseBroadcast decodes a broadcast frame.
func ParseBroadcast(raw []byte) (BroadcastFrame, error) {
	var f BroadcastFrame
	if len(raw) < 2 || ParseFrameControl(raw[0], raw[1]).Kind() != FrameBroadcast {
		return f, ErrUnknownFrame
	}
	if len(raw) <= BroadcastHeaderSize {
		return f, ErrShortFrame
	}
	f.Header.Seq = raw[2]
	f.Header.DstPAN = binary.LittleEndian.Uint16(raw[3:5])
	f.Header.DstAddr = binary.LittleEndian.Uint16(raw[5:7])
	f.Header.SrcPAN = binary.LittleEndian.Uint16(raw[7:9])
	copy(f.Header.Src[:], raw[9:17])
	f.Type = raw[BroadcastHeaderSize]
	f.Body = raw[BroadcastHeaderSize+1:]
	return f, nil
}

// EncodeNormal builds a unicast frame around a typed payload body.
func EncodeNormal(h NormalHeader, ptype byte, body []byte) ([]byte, error) {
	total := NormalHeaderSize + 1 + len(body)
	if total > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooBig, total)
	}
	out := make([]byte, total)
	fcs := normalControl.Bytes()
	out[0], out[1] = fcs[0], fcs[1]
	out[2] = h.Seq
	binary.LittleEndian.PutUint16(out[3:5], h.PAN)
	copy(out[5:13], h.Dst[:])
	copy(out[13:21], h.Src[:])
	out[NormalHeaderSize] = ptype
	copy(out[NormalHeaderSize+1:], body)
	return out, nil
}

// EncodeBroadcast builds a broadcast frame. The AP never sends these itself;
// radio bridges and tests use it to play the tag side.
func EncodeBroadcast(h BroadcastHeader, ptype byte, body []byte) ([]byte, error) {
	total := BroadcastHeaderSize + 1 + len(body)
	if total > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooBig, total)
	}
	out := make([]byte, total)
	fcs := broadcastControl.Bytes()
	out[0], out[1] = fcs[0], fcs[1]
	out[2] = h.Seq
	binary.LittleEndian.PutUint16(out[3:5], h.DstPAN)
	binary.LittleEndian.PutUint16(out[5:7], h.DstAddr)
	binary.LittleEndian.PutUint16(out[7:9], h.SrcPAN)
	copy(out[9:17], h.Src[:])
	out[BroadcastHeaderSize] = ptype
	copy(out[BroadcastHeaderSize+1:], body)
	return out, nil
}
