// internal/proto/payload.go
package proto

import (
	"encoding/binary"
	"fmt"
)

// Every payload below starts with its checksum byte.
// Decoders validate length first, then checksum.
// Encoders always produce a checksummed buffer of the exact wire size.

func checkPayload(name string, b []byte, size int) error {
	if len(b) < size {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortPayload, name, size, len(b))
	}
	if !Verify(b[:size]) {
		return fmt.Errorf("%w: %s", ErrChecksum, name)
	}
	return nil
}

// ---- AVAILABILITY ----

// AvailDataReq is the tag's check-in report.
type AvailDataReq struct {
	LastPacketLQI  uint8
	LastPacketRSSI int8
	Temperature    int8
	BatteryMV      uint16
	HWType         uint8
	WakeupReason   uint8
	Capabilities   uint8
}

// DecodeAvailDataReq parses and verifies an availability request body.
func DecodeAvailDataReq(b []byte) (AvailDataReq, error) {
	if err := checkPayload("avail-data-req", b, AvailDataReqSize); err != nil {
		return AvailDataReq{}, err
	}
	return AvailDataReq{
		LastPacketLQI:  b[1],
		LastPacketRSSI: int8(b[2]),
		Temperature:    int8(b[3]),
		BatteryMV:      binary.LittleEndian.Uint16(b[4:6]),
		HWType:         b[6],
		WakeupReason:   b[7],
		Capabilities:   b[8],
	}, nil
}

// Encode returns the checksummed wire form.
func (r AvailDataReq) Encode() []byte {
	b := make([]byte, AvailDataReqSize)
	b[1] = r.LastPacketLQI
	b[2] = byte(r.LastPacketRSSI)
	b[3] = byte(r.Temperature)
	binary.LittleEndian.PutUint16(b[4:6], r.BatteryMV)
	b[6] = r.HWType
	b[7] = r.WakeupReason
	b[8] = r.Capabilities
	AddChecksum(b)
	return b
}

// AvailDataInfo is the offer returned to a checking-in tag.
type AvailDataInfo struct {
	Version     uint64
	Size        uint32
	Type        DataType
	TypeArg     uint8
	NextCheckIn uint16 // minutes
}

// DecodeAvailDataInfo parses and verifies an offer.
func DecodeAvailDataInfo(b []byte) (AvailDataInfo, error) {
	if err := checkPayload("avail-data-info", b, AvailDataInfoSize); err != nil {
		return AvailDataInfo{}, err
	}
	return decodeAvailDataInfo(b), nil
}

// decodeAvailDataInfo reads the fields without checking the checksum.
// The host wraps an offer inside a larger checksummed message.
func decodeAvailDataInfo(b []byte) AvailDataInfo {
	return AvailDataInfo{
		Version:     binary.LittleEndian.Uint64(b[1:9]),
		Size:        binary.LittleEndian.Uint32(b[9:13]),
		Type:        DataType(b[13]),
		TypeArg:     b[14],
		NextCheckIn: binary.LittleEndian.Uint16(b[15:17]),
	}
}

// ReadAvailDataInfo reads an offer embedded in an already verified message.
func ReadAvailDataInfo(b []byte) (AvailDataInfo, error) {
	if len(b) < AvailDataInfoSize {
		return AvailDataInfo{}, fmt.Errorf("%w: avail-data-info needs %d bytes, got %d", ErrShortPayload, AvailDataInfoSize, len(b))
	}
	return decodeAvailDataInfo(b), nil
}

// Encode returns the checksummed wire form.
func (a AvailDataInfo) Encode() []byte {
	b := make([]byte, AvailDataInfoSize)
	a.Put(b)
	AddChecksum(b)
	return b
}

// Put writes the fields into b[1:17] and leaves b[0] untouched.
func (a AvailDataInfo) Put(b []byte) {
	binary.LittleEndian.PutUint64(b[1:9], a.Version)
	binary.LittleEndian.PutUint32(b[9:13], a.Size)
	b[13] = byte(a.Type)
	b[14] = a.TypeArg
	binary.LittleEndian.PutUint16(b[15:17], a.NextCheckIn)
}

// ---- BLOCK REQUEST ----

// PartMask is the 48-bit requested-parts bitmap. Part c lives at byte c/8, bit c%8.
type PartMask [BlockReqPartsBytes]byte

// Has reports whether part i is requested.
func (m PartMask) Has(i int) bool {
	if i < 0 || i >= BlockReqPartsBytes*8 {
		return false
	}
	return m[i/8]&(1<<(i%8)) != 0
}

// Set marks part i as requested.
func (m *PartMask) Set(i int) {
	if i < 0 || i >= BlockReqPartsBytes*8 {
		return
	}
	m[i/8] |= 1 << (i % 8)
}

// Parts returns the requested part indices below BlockMaxParts, ascending.
func (m PartMask) Parts() []int {
	var out []int
	for i := 0; i < BlockMaxParts; i++ {
		if m.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Count is the number of requested parts below BlockMaxParts.
func (m PartMask) Count() int {
	return len(m.Parts())
}

// MaskOf builds a mask from part indices.
func MaskOf(parts ...int) PartMask {
	var m PartMask
	for _, p := range parts {
		m.Set(p)
	}
	return m
}

// BlockRequest asks for (a subset of) one block.
type BlockRequest struct {
	Version uint64
	BlockID uint8
	Type    uint8
	Parts   PartMask
}

// DecodeBlockRequest parses and verifies a block request body.
func DecodeBlockRequest(b []byte) (BlockRequest, error) {
	if err := checkPayload("block-request", b, BlockRequestSize); err != nil {
		return BlockRequest{}, err
	}
	var r BlockRequest
	r.Version = binary.LittleEndian.Uint64(b[1:9])
	r.BlockID = b[9]
	r.Type = b[10]
	copy(r.Parts[:], b[11:BlockRequestSize])
	return r, nil
}

// Encode returns the checksummed wire form.
func (r BlockRequest) Encode() []byte {
	b := make([]byte, BlockRequestSize)
	binary.LittleEndian.PutUint64(b[1:9], r.Version)
	b[9] = r.BlockID
	b[10] = r.Type
	copy(b[11:], r.Parts[:])
	AddChecksum(b)
	return b
}

// BlockRequestAck tells the tag how long to wait before listening for parts.
type BlockRequestAck struct {
	PleaseWaitMs uint16
}

func DecodeBlockRequestAck(b []byte) (BlockRequestAck, error) {
	if err := checkPayload("block-request-ack", b, BlockRequestAckSize); err != nil {
		return BlockRequestAck{}, err
	}
	return BlockRequestAck{PleaseWaitMs: binary.LittleEndian.Uint16(b[1:3])}, nil
}

func (a BlockRequestAck) Encode() []byte {
	b := make([]byte, BlockRequestAckSize)
	binary.LittleEndian.PutUint16(b[1:3], a.PleaseWaitMs)
	AddChecksum(b)
	return b
}

// ---- BLOCK PART ----

// BlockPart carries one slice of the buffered block.
type BlockPart struct {
	BlockID uint8
	Part    uint8
	Data    [BlockPartDataSize]byte
}

func DecodeBlockPart(b []byte) (BlockPart, error) {
	if err := checkPayload("block-part", b, BlockPartSize); err != nil {
		return BlockPart{}, err
	}
	var p BlockPart
	p.BlockID = b[1]
	p.Part = b[2]
	copy(p.Data[:], b[3:BlockPartSize])
	return p, nil
}

func (p BlockPart) Encode() []byte {
	b := make([]byte, BlockPartSize)
	b[1] = p.BlockID
	b[2] = p.Part
	copy(b[3:], p.Data[:])
	AddChecksum(b)
	return b
}

// ---- EVENT ----

// EventData is the host-staged broadcast payload served in event mode.
type EventData struct {
	ID   uint8
	Body [EventBodySize]byte
}

func DecodeEventData(b []byte) (EventData, error) {
	if err := checkPayload("event-data", b, EventDataSize); err != nil {
		return EventData{}, err
	}
	var e EventData
	e.ID = b[1]
	copy(e.Body[:], b[2:EventDataSize])
	return e, nil
}

func (e EventData) Encode() []byte {
	b := make([]byte, EventDataSize)
	b[1] = e.ID
	copy(b[2:], e.Body[:])
	AddChecksum(b)
	return b
}
