// internal/host/messages.go
package host

import (
	"encoding/binary"
	"fmt"

	"github.com/tamzrod/tag-ap/internal/proto"
)

// ---- inbound headers ----

const (
	HdrPushOffer    = "SDA>"
	HdrCancel       = "CXD>"
	HdrEventPayload = "UED>"
	HdrEventOn      = "EEM>"
	HdrEventOff     = "SEM>"
	HdrVersion      = "VER?"
	HdrReady        = "RDY?"
	HdrReset        = "RSET"

	// HdrBlockData precedes a block streamed in after a fetch request.
	HdrBlockData = ">D>"
)

// ---- outbound tags ----

const (
	ReplyAck       = "ACK>\n"
	ReplyNak       = "NOK>\n"
	ReplyQueueFull = "NOQ>\n"
	ReplyReady     = "RDY>\n"

	TagVersion      = "VER>"
	TagMAC          = "MAC>"
	TagFetchRequest = "RQB>"
	TagAvailRelay   = "ADR>"
	TagXferComplete = "XFC>"
	TagXferTimeout  = "XTO>"
)

// Host message sizes, checksum byte included.
const (
	PendingDataSize  = proto.AvailDataInfoSize + 2 + 8 // 27
	FetchRequestSize = 1 + 8 + 1                       // 10
	AvailRelaySize   = 1 + 8 + proto.AvailDataReqSize  // 18
	XferNoticeSize   = 1 + 8                           // 9
)

// ---- pending data (SDA> / CXD>) ----

// PendingData is the offer record pushed by the host.
//
//	[0]      checksum over [1:27]
//	[1:17]   AvailDataInfo without its own checksum byte
//	[17:19]  attemptsLeft
//	[19:27]  target MAC
type PendingData struct {
	Offer        proto.AvailDataInfo
	AttemptsLeft uint16
	MAC          proto.MAC
}

// DecodePendingData verifies and parses a pending-data record.
func DecodePendingData(b []byte) (PendingData, error) {
	if len(b) < PendingDataSize {
		return PendingData{}, fmt.Errorf("%w: pending-data needs %d bytes, got %d", proto.ErrShortPayload, PendingDataSize, len(b))
	}
	if !proto.Verify(b[:PendingDataSize]) {
		return PendingData{}, fmt.Errorf("%w: pending-data", proto.ErrChecksum)
	}
	offer, err := proto.ReadAvailDataInfo(b[:proto.AvailDataInfoSize])
	if err != nil {
		return PendingData{}, err
	}
	var pd PendingData
	pd.Offer = offer
	pd.AttemptsLeft = binary.LittleEndian.Uint16(b[17:19])
	copy(pd.MAC[:], b[19:27])
	return pd, nil
}

// Encode returns the checksummed wire form.
func (pd PendingData) Encode() []byte {
	b := make([]byte, PendingDataSize)
	pd.Offer.Put(b)
	binary.LittleEndian.PutUint16(b[17:19], pd.AttemptsLeft)
	copy(b[19:27], pd.MAC[:])
	proto.AddChecksum(b)
	return b
}

// ---- notifications ----

// FetchRequest asks the host for one block of one content version.
type FetchRequest struct {
	Version uint64
	BlockID uint8
}

func (r FetchRequest) Encode() []byte {
	b := make([]byte, FetchRequestSize)
	binary.LittleEndian.PutUint64(b[1:9], r.Version)
	b[9] = r.BlockID
	proto.AddChecksum(b)
	return b
}

// DecodeFetchRequest is used by host-side tools and tests.
func DecodeFetchRequest(b []byte) (FetchRequest, error) {
	if len(b) < FetchRequestSize {
		return FetchRequest{}, fmt.Errorf("%w: fetch-request", proto.ErrShortPayload)
	}
	if !proto.Verify(b[:FetchRequestSize]) {
		return FetchRequest{}, fmt.Errorf("%w: fetch-request", proto.ErrChecksum)
	}
	return FetchRequest{
		Version: binary.LittleEndian.Uint64(b[1:9]),
		BlockID: b[9],
	}, nil
}

// AvailRelay forwards a tag check-in to the host.
type AvailRelay struct {
	Src proto.MAC
	Req proto.AvailDataReq
}

func (r AvailRelay) Encode() []byte {
	b := make([]byte, AvailRelaySize)
	copy(b[1:9], r.Src[:])
	copy(b[9:], r.Req.Encode())
	proto.AddChecksum(b)
	return b
}

// XferNotice carries the tag address of XFC> and XTO>.
type XferNotice struct {
	Src proto.MAC
}

func (n XferNotice) Encode() []byte {
	b := make([]byte, XferNoticeSize)
	copy(b[1:9], n.Src[:])
	proto.AddChecksum(b)
	return b
}
