// internal/radio/stub_test.go
package radio

import (
	"bytes"
	"testing"
)

func TestStubRoundTrip(t *testing.T) {
	s := NewStub()
	buf := make([]byte, 128)

	if n, err := s.Rx(buf); n != 0 || err != nil {
		t.Fatalf("empty stub should return 0, got n=%d err=%v", n, err)
	}

	s.Inject([]byte{1, 2, 3})
	s.Inject([]byte{4, 5})

	n, _ := s.Rx(buf)
	if !bytes.Equal(buf[:n], []byte{1, 2, 3}) {
		t.Fatalf("expected first frame, got %x", buf[:n])
	}
	n, _ = s.Rx(buf)
	if !bytes.Equal(buf[:n], []byte{4, 5}) {
		t.Fatalf("expected second frame, got %x", buf[:n])
	}

	frame := []byte{9, 9}
	_ = s.Tx(frame)
	frame[0] = 0
	sent := s.TakeSent()
	if len(sent) != 1 || sent[0][0] != 9 {
		t.Fatalf("tx log must hold a copy, got %x", sent)
	}
	if len(s.Sent()) != 0 {
		t.Fatalf("TakeSent should clear the log")
	}

	_ = s.Nudge()
	if s.Nudges() != 1 {
		t.Fatalf("expected 1 nudge, got %d", s.Nudges())
	}

	_ = s.Close()
	if err := s.Tx(frame); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestQueueDropsOldest(t *testing.T) {
	var q queue
	for i := 0; i < queueCapacity+2; i++ {
		q.push([]byte{byte(i)})
	}
	if q.dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", q.dropped)
	}
	f, ok := q.pop()
	if !ok || f[0] != 2 {
		t.Fatalf("expected oldest surviving frame 2, got %v", f)
	}
}
