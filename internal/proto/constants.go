// internal/proto/constants.go
package proto

// Radio payload type tags.
// The type byte immediately follows the MAC header of every frame.
const (
	PktAvailDataShortReq byte = 0xE3
	PktBlockRequest      byte = 0xE4
	PktAvailDataReq      byte = 0xE5
	PktAvailDataInfo     byte = 0xE6
	PktBlockPartialReq   byte = 0xE7
	PktBlockPart         byte = 0xE8
	PktBlockRequestAck   byte = 0xE9
	PktXferComplete      byte = 0xEA
	PktXferCompleteAck   byte = 0xEB
	PktCancelXfer        byte = 0xEC
	PktPing              byte = 0xED
	PktPong              byte = 0xEE
	PktEventPong         byte = 0xC1
	PktEventDataReq      byte = 0xC2
	PktEventData         byte = 0xC3
)

// DataType tells the tag what kind of content an offer carries.
type DataType uint8

const (
	DataTypeNoUpdate       DataType = 0
	DataTypeImage          DataType = 1
	DataTypeRawImage       DataType = 2
	DataTypeFirmwareUpdate DataType = 3
)

func (d DataType) String() string {
	switch d {
	case DataTypeNoUpdate:
		return "no-update"
	case DataTypeImage:
		return "image"
	case DataTypeRawImage:
		return "raw-image"
	case DataTypeFirmwareUpdate:
		return "firmware-update"
	default:
		return "unknown"
	}
}

// ---- BLOCK GEOMETRY ----

// BlockDataSize is the content carried by one block.
const BlockDataSize = 4096

// BlockHeaderSize is the blockData header (size u16 + checksum u16) preceding the data.
const BlockHeaderSize = 4

// BlockXferSize is what the host streams into the block buffer per fetch.
const BlockXferSize = BlockDataSize + BlockHeaderSize

// BlockPartDataSize is the data carried by one block part frame.
const BlockPartDataSize = 99

// BlockMaxParts is the number of parts a block is split into.
const BlockMaxParts = 42

// BlockBufferSize covers every part, including the slack past BlockXferSize.
const BlockBufferSize = BlockMaxParts * BlockPartDataSize

// BlockReqPartsBytes is the size of the requested-parts bitmap.
const BlockReqPartsBytes = 6

// ---- EVENT PAYLOAD ----

// EventBodySize is the fixed body of a staged event payload.
const EventBodySize = 100

// ---- PAYLOAD SIZES ----

const (
	AvailDataReqSize    = 9
	AvailDataInfoSize   = 17
	BlockRequestSize    = 11 + BlockReqPartsBytes
	BlockRequestAckSize = 3
	BlockPartSize       = 3 + BlockPartDataSize
	EventDataSize       = 2 + EventBodySize
)
