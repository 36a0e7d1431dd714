// internal/proto/frame_test.go
package proto

import (
	"bytes"
	"errors"
	"testing"
)

var (
	tagMAC = MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11}
	apMAC  = MAC{0, 1, 2, 3, 4, 5, 6, 7}
)

func TestNormalFrameControlBytes(t *testing.T) {
	raw, err := EncodeNormal(NormalHeader{Seq: 1, PAN: 0x4447, Dst: tagMAC, Src: apMAC}, PktPong, nil)
	if err != nil {
		t.Fatalf("EncodeNormal err=%v", err)
	}
	if raw[0] != 0x41 || raw[1] != 0xCC {
		t.Fatalf("fcs = %02X %02X, want 41 CC", raw[0], raw[1])
	}
	if len(raw) != NormalHeaderSize+1 {
		t.Fatalf("len = %d, want %d", len(raw), NormalHeaderSize+1)
	}
}

func TestClassify(t *testing.T) {
	normal, _ := EncodeNormal(NormalHeader{Src: tagMAC}, PktBlockRequest, make([]byte, BlockRequestSize))
	bcast, _ := EncodeBroadcast(BroadcastHeader{Src: tagMAC, DstAddr: BroadcastAddr}, PktAvailDataReq, make([]byte, AvailDataReqSize))

	tests := []struct {
		name     string
		raw      []byte
		wantKind FrameKind
		wantType byte
	}{
		{name: "normal", raw: normal, wantKind: FrameNormal, wantType: PktBlockRequest},
		{name: "broadcast", raw: bcast, wantKind: FrameBroadcast, wantType: PktAvailDataReq},
		{name: "nil", raw: nil, wantKind: FrameUnknown},
		{name: "header only", raw: normal[:NormalHeaderSize], wantKind: FrameUnknown},
		{name: "ack frame type", raw: append([]byte{0x02, 0xCC}, normal[2:]...), wantKind: FrameUnknown},
		{name: "short source", raw: append([]byte{0x41, 0x8C}, normal[2:]...), wantKind: FrameUnknown},
		{name: "broadcast with pan compression", raw: append([]byte{0x41, 0xC8}, bcast[2:]...), wantKind: FrameUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, typ := Classify(tt.raw)
			if kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", kind, tt.wantKind)
			}
			if kind != FrameUnknown && typ != tt.wantType {
				t.Fatalf("type = 0x%02X, want 0x%02X", typ, tt.wantType)
			}
		})
	}
}

func TestNormalRoundTrip(t *testing.T) {
	body := []byte{1, 2, 3}
	h := NormalHeader{Seq: 200, PAN: 0x1234, Dst: tagMAC, Src: apMAC}
	raw, err := EncodeNormal(h, PktBlockRequestAck, body)
	if err != nil {
		t.Fatalf("EncodeNormal err=%v", err)
	}

	f, err := ParseNormal(raw)
	if err != nil {
		t.Fatalf("ParseNormal err=%v", err)
	}
	if f.Header != h {
		t.Fatalf("header = %+v, want %+v", f.Header, h)
	}
	if f.Type != PktBlockRequestAck {
		t.Fatalf("type = 0x%02X", f.Type)
	}
	if !bytes.Equal(f.Body, body) {
		t.Fatalf("body = %v, want %v", f.Body, body)
	}
}

func TestBroadcastRoundTrip(t *testing.T) {
	h := BroadcastHeader{Seq: 9, DstPAN: 0x4447, DstAddr: BroadcastAddr, SrcPAN: 0x4447, Src: tagMAC}
	raw, err := EncodeBroadcast(h, PktPing, nil)
	if err != nil {
		t.Fatalf("EncodeBroadcast err=%v", err)
	}
	if len(raw) != ShortAvailReqFrameSize {
		t.Fatalf("len = %d, want %d", len(raw), ShortAvailReqFrameSize)
	}

	f, err := ParseBroadcast(raw)
	if err != nil {
		t.Fatalf("ParseBroadcast err=%v", err)
	}
	if f.Header != h {
		t.Fatalf("header = %+v, want %+v", f.Header, h)
	}
	if len(f.Body) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(f.Body))
	}
}

func TestParseWrongShape(t *testing.T) {
	bcast, _ := EncodeBroadcast(BroadcastHeader{Src: tagMAC}, PktPing, nil)
	if _, err := ParseNormal(bcast); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("ParseNormal(broadcast) err=%v, want ErrUnknownFrame", err)
	}
	normal, _ := EncodeNormal(NormalHeader{Src: tagMAC}, PktXferComplete, nil)
	if _, err := ParseBroadcast(normal); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("ParseBroadcast(normal) err=%v, want ErrUnknownFrame", err)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	_, err := EncodeNormal(NormalHeader{}, PktBlockPart, make([]byte, MaxFrameSize))
	if !errors.Is(err, ErrPayloadTooBig) {
		t.Fatalf("err=%v, want ErrPayloadTooBig", err)
	}

	// the largest payload the AP sends must fit
	if _, err := EncodeNormal(NormalHeader{}, PktBlockPart, make([]byte, BlockPartSize)); err != nil {
		t.Fatalf("block part does not fit a frame: %v", err)
	}
}

func TestParseMAC(t *testing.T) {
	for _, s := range []string{"AA:BB:CC:DD:EE:FF:00:11", "aabbccddeeff0011", "AA-BB-CC-DD-EE-FF-00-11"} {
		m, err := ParseMAC(s)
		if err != nil {
			t.Fatalf("ParseMAC(%q) err=%v", s, err)
		}
		if m != tagMAC {
			t.Fatalf("ParseMAC(%q) = %v", s, m)
		}
	}
	if tagMAC.String() != "AA:BB:CC:DD:EE:FF:00:11" {
		t.Fatalf("String() = %s", tagMAC.String())
	}
	if tagMAC.Hex() != "AABBCCDDEEFF0011" {
		t.Fatalf("Hex() = %s", tagMAC.Hex())
	}
	if _, err := ParseMAC("AABB"); err == nil {
		t.Fatalf("expected error for short mac")
	}
	if _, err := ParseMAC("ZZBBCCDDEEFF0011"); err == nil {
		t.Fatalf("expected error for non-hex mac")
	}
}
