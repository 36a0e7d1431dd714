// internal/transfer/session_test.go
package transfer

import (
	"testing"
	"time"

	"github.com/tamzrod/tag-ap/internal/clock"
	"github.com/tamzrod/tag-ap/internal/host"
	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/registry"
)

var (
	tagA = proto.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11}
	tagB = proto.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x22}
)

const testVersion = 0x1122334455667788

type sentFrame struct {
	dst   proto.MAC
	pan   uint16
	ptype byte
	body  []byte
}

type fakeSender struct {
	frames []sentFrame
}

func (f *fakeSender) SendNormal(dst proto.MAC, pan uint16, ptype byte, body []byte) error {
	b := make([]byte, len(body))
	copy(b, body)
	f.frames = append(f.frames, sentFrame{dst: dst, pan: pan, ptype: ptype, body: b})
	return nil
}

func (f *fakeSender) take() []sentFrame {
	out := f.frames
	f.frames = nil
	return out
}

type fakeHost struct {
	fetches     []host.FetchRequest
	completions []proto.MAC
}

func (f *fakeHost) FetchRequest(r host.FetchRequest) error {
	f.fetches = append(f.fetches, r)
	return nil
}

func (f *fakeHost) XferComplete(src proto.MAC) error {
	f.completions = append(f.completions, src)
	return nil
}

type fixture struct {
	s    *Session
	reg  *registry.Registry
	tx   *fakeSender
	host *fakeHost
	now  clock.Tick
}

func newFixture(t *testing.T, offers ...proto.MAC) *fixture {
	t.Helper()
	reg := registry.New(0)
	for _, m := range offers {
		if _, err := reg.Upsert(registry.Entry{
			Offer:        proto.AvailDataInfo{Version: testVersion, Size: 4096, Type: proto.DataTypeImage},
			AttemptsLeft: 10,
			MAC:          m,
		}); err != nil {
			t.Fatalf("seed registry: %v", err)
		}
	}
	f := &fixture{reg: reg, tx: &fakeSender{}, host: &fakeHost{}, now: 1000}
	f.s = New(DefaultParams(), reg, f.tx, f.host, logger.Nop())
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = clock.Add(f.now, d) }

func (f *fixture) request(src proto.MAC, block uint8, force bool, parts ...int) Result {
	req := proto.BlockRequest{Version: testVersion, BlockID: block, Type: 1, Parts: proto.MaskOf(parts...)}
	hdr := proto.NormalHeader{PAN: 0x4447, Src: src}
	return f.s.HandleBlockRequest(f.now, hdr, req.Encode(), force)
}

func ackWait(t *testing.T, fr sentFrame) uint16 {
	t.Helper()
	if fr.ptype != proto.PktBlockRequestAck {
		t.Fatalf("expected block-request-ack, got type %02X", fr.ptype)
	}
	ack, err := proto.DecodeBlockRequestAck(fr.body)
	if err != nil {
		t.Fatalf("bad ack body: %v", err)
	}
	return ack.PleaseWaitMs
}

func TestFirstRequestFetchesBlockZero(t *testing.T) {
	f := newFixture(t, tagA)

	res := f.request(tagA, 0, true, 0, 1)
	if res.Outcome != Accepted || !res.Fetch {
		t.Fatalf("expected accepted fetch, got %+v", res)
	}
	if res.SessionID == "" {
		t.Fatalf("new session must carry an id")
	}

	frames := f.tx.take()
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if w := ackWait(t, frames[0]); w != 200 {
		t.Fatalf("expected 200ms wait for block 0, got %d", w)
	}
	if frames[0].dst != tagA || frames[0].pan != 0x4447 {
		t.Fatalf("ack addressed wrong: %+v", frames[0])
	}
	if len(f.host.fetches) != 1 || f.host.fetches[0] != (host.FetchRequest{Version: testVersion, BlockID: 0}) {
		t.Fatalf("unexpected fetches %+v", f.host.fetches)
	}
}

func TestAckDelays(t *testing.T) {
	f := newFixture(t, tagA)

	f.request(tagA, 0, true, 0)
	f.advance(300 * time.Millisecond)
	f.s.Service(f.now)
	f.tx.take()

	// new block id, nothing scheduled
	f.request(tagA, 1, false, 0)
	if w := ackWait(t, f.tx.take()[0]); w != 100 {
		t.Fatalf("expected 100ms for fetch of block 1, got %d", w)
	}

	// send still scheduled
	f.advance(10 * time.Millisecond)
	f.request(tagA, 2, false, 0)
	if w := ackWait(t, f.tx.take()[0]); w != 50 {
		t.Fatalf("expected 50ms while a send is scheduled, got %d", w)
	}

	f.advance(100 * time.Millisecond)
	f.s.Service(f.now)
	f.tx.take()

	// cache hit, partial request
	f.request(tagA, 2, false, 1)
	if w := ackWait(t, f.tx.take()[0]); w != 50 {
		t.Fatalf("expected 50ms on cache hit, got %d", w)
	}
	if len(f.host.fetches) != 3 {
		t.Fatalf("cache hit must not fetch, got %d fetches", len(f.host.fetches))
	}
}

func TestExclusivityGate(t *testing.T) {
	f := newFixture(t, tagA, tagB)

	first := f.request(tagA, 0, true, 0)
	f.tx.take()

	f.advance(500 * time.Millisecond)
	res := f.request(tagB, 0, true, 0)
	if res.Outcome != Rejected {
		t.Fatalf("tag B must be rejected within cool-down, got %v", res.Outcome)
	}
	frames := f.tx.take()
	if len(frames) != 1 || frames[0].ptype != proto.PktCancelXfer || frames[0].dst != tagB {
		t.Fatalf("expected cancel to tag B, got %+v", frames)
	}
	if f.s.Info().Active != tagA {
		t.Fatalf("active tag must remain A")
	}

	// A refreshes its lock
	f.advance(1000 * time.Millisecond)
	f.request(tagA, 0, false, 1)
	f.tx.take()

	f.advance(1000 * time.Millisecond)
	if res := f.request(tagB, 0, true, 0); res.Outcome != Rejected {
		t.Fatalf("A refreshed the lock, B must still be rejected")
	}
	f.tx.take()

	f.advance(1300 * time.Millisecond)
	res = f.request(tagB, 0, true, 0)
	if res.Outcome != Accepted {
		t.Fatalf("B must be accepted after cool-down, got %v", res.Outcome)
	}
	if f.s.Info().Active != tagB {
		t.Fatalf("active tag must be B")
	}
	if res.SessionID == first.SessionID {
		t.Fatalf("a new tag must start a new session")
	}
}

func TestNoOfferCancels(t *testing.T) {
	f := newFixture(t)

	res := f.request(tagA, 0, true, 0)
	if res.Outcome != NoOffer {
		t.Fatalf("expected no-offer, got %v", res.Outcome)
	}
	frames := f.tx.take()
	if len(frames) != 1 || frames[0].ptype != proto.PktCancelXfer {
		t.Fatalf("expected a cancel frame, got %+v", frames)
	}
	if len(f.host.fetches) != 0 {
		t.Fatalf("no fetch expected")
	}
}

func TestBadChecksumDropped(t *testing.T) {
	f := newFixture(t, tagA)

	body := proto.BlockRequest{Version: testVersion}.Encode()
	body[0] ^= 0xFF
	res := f.s.HandleBlockRequest(f.now, proto.NormalHeader{Src: tagA}, body, true)
	if res.Outcome != BadChecksum {
		t.Fatalf("expected bad-checksum, got %v", res.Outcome)
	}
	if len(f.tx.take()) != 0 {
		t.Fatalf("corrupt request must be dropped silently")
	}
	if f.s.Info().HasActive {
		t.Fatalf("corrupt request must not take the lock")
	}
}

func TestForceRefetchDebounce(t *testing.T) {
	f := newFixture(t, tagA)

	f.request(tagA, 3, true, 0)
	f.tx.take()

	f.advance(200 * time.Millisecond)
	if res := f.request(tagA, 3, true, 0); res.Fetch {
		t.Fatalf("forced refetch within debounce must be ignored")
	}

	f.advance(200 * time.Millisecond)
	if res := f.request(tagA, 3, true, 0); !res.Fetch {
		t.Fatalf("forced refetch after debounce must fetch")
	}

	f.advance(500 * time.Millisecond)
	if res := f.request(tagA, 3, false, 0); res.Fetch {
		t.Fatalf("partial request for the buffered block must not fetch")
	}
}

func TestFragmentationAscending(t *testing.T) {
	f := newFixture(t, tagA)

	for i := range f.s.Block() {
		f.s.Block()[i] = byte(i / proto.BlockPartDataSize)
	}

	f.request(tagA, 5, false, 7, 0, 3)
	f.tx.take()

	if n := f.s.Service(f.now); n != 0 {
		t.Fatalf("deadline not reached, nothing must be sent")
	}

	f.advance(100 * time.Millisecond)
	if n := f.s.Service(f.now); n != 3 {
		t.Fatalf("expected 3 parts, got %d", n)
	}

	frames := f.tx.take()
	want := []uint8{0, 3, 7}
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i, fr := range frames {
		if fr.ptype != proto.PktBlockPart || fr.dst != tagA {
			t.Fatalf("frame %d: unexpected %+v", i, fr)
		}
		part, err := proto.DecodeBlockPart(fr.body)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if part.BlockID != 5 || part.Part != want[i] {
			t.Fatalf("frame %d: got block=%d part=%d", i, part.BlockID, part.Part)
		}
		if part.Data[0] != want[i] || part.Data[proto.BlockPartDataSize-1] != want[i] {
			t.Fatalf("frame %d: data taken from wrong offset", i)
		}
	}

	if f.s.Service(f.now) != 0 {
		t.Fatalf("deadline is one-shot")
	}
}

func TestFragmentationEmptyMask(t *testing.T) {
	f := newFixture(t, tagA)

	f.request(tagA, 0, true)
	f.tx.take()

	f.advance(200 * time.Millisecond)
	if n := f.s.Service(f.now); n != 1 {
		t.Fatalf("expected part 0 only, got %d frames", n)
	}
	part, err := proto.DecodeBlockPart(f.tx.take()[0].body)
	if err != nil || part.Part != 0 {
		t.Fatalf("expected part 0, got %+v err=%v", part, err)
	}
}

func TestDeadlineAcrossWrap(t *testing.T) {
	f := newFixture(t, tagA)
	f.now = clock.Tick(0xFFFFFFF0)

	f.request(tagA, 1, false, 0)
	f.tx.take()

	f.advance(50 * time.Millisecond)
	if f.s.Service(f.now) != 0 {
		t.Fatalf("deadline fired early across wrap")
	}
	f.advance(50 * time.Millisecond)
	if f.s.Service(f.now) != 1 {
		t.Fatalf("deadline did not fire across wrap")
	}
}

func TestXferCompleteIdempotent(t *testing.T) {
	f := newFixture(t, tagA)
	hdr := proto.NormalHeader{PAN: 0x4447, Src: tagA}

	if !f.s.HandleXferComplete(hdr) {
		t.Fatalf("first completion must notify")
	}
	if f.s.HandleXferComplete(hdr) {
		t.Fatalf("duplicate completion must not notify")
	}

	frames := f.tx.take()
	if len(frames) != 2 {
		t.Fatalf("expected 2 acks, got %d", len(frames))
	}
	for _, fr := range frames {
		if fr.ptype != proto.PktXferCompleteAck || fr.dst != tagA {
			t.Fatalf("unexpected frame %+v", fr)
		}
	}
	if len(f.host.completions) != 1 {
		t.Fatalf("expected 1 host notice, got %d", len(f.host.completions))
	}
	if f.reg.FindSlotForMac(tagA) != -1 {
		t.Fatalf("completion must release the registry entry")
	}

	f.s.ResetAckTracker()
	if !f.s.HandleXferComplete(hdr) {
		t.Fatalf("completion after tracker reset must notify again")
	}
}

func TestBlockLoad(t *testing.T) {
	f := newFixture(t)

	block := proto.EncodeBlock([]byte("hello"))
	f.s.BeginBlockLoad()
	for i, b := range block {
		f.s.LoadBlockByte(i, b)
	}
	if !f.s.EndBlockLoad() {
		t.Fatalf("valid block rejected")
	}

	f.s.BeginBlockLoad()
	f.s.LoadBlockByte(proto.BlockHeaderSize, 'j')
	if f.s.EndBlockLoad() {
		t.Fatalf("corrupted block accepted")
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, tagA)
	f.request(tagA, 0, true, 0)
	f.s.Reset()

	info := f.s.Info()
	if info.HasActive || info.Buffered || info.SendPending || info.SessionID != "" {
		t.Fatalf("reset left state behind: %+v", info)
	}
	if f.s.Stats() != (Stats{}) {
		t.Fatalf("reset must clear counters")
	}
}
