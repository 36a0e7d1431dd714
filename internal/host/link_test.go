// internal/host/link_test.go
package host

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/tag-ap/internal/logger"
)

// fakePort feeds reads from a pipe and records writes.
type fakePort struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu  sync.Mutex
	out bytes.Buffer
}

func newFakePort() *fakePort {
	r, w := io.Pipe()
	return &fakePort{r: r, w: w}
}

func (p *fakePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *fakePort) Close() error { return p.r.Close() }

func waitDrain(t *testing.T, l *Link, want int) []byte {
	t.Helper()
	var got []byte
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: got %d of %d bytes", len(got), want)
		}
		got = append(got, l.Drain(nil)...)
		time.Sleep(time.Millisecond)
	}
	return got
}

func TestLinkDrain(t *testing.T) {
	port := newFakePort()
	l := NewLink(port, logger.Nop(), 0)
	defer l.Close()

	go port.w.Write([]byte("RDY?VER?"))

	got := waitDrain(t, l, 8)
	if string(got) != "RDY?VER?" {
		t.Fatalf("unexpected bytes %q", got)
	}
	if rest := l.Drain(nil); len(rest) != 0 {
		t.Fatalf("queue should be empty, got %q", rest)
	}
}

func TestLinkOverflowDrops(t *testing.T) {
	port := newFakePort()
	l := NewLink(port, logger.Nop(), 4)
	defer l.Close()

	if _, err := port.w.Write([]byte("ABCDEF")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for l.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected dropped bytes")
		}
		time.Sleep(time.Millisecond)
	}
	if got := string(l.Drain(nil)); got != "ABCD" {
		t.Fatalf("expected first 4 bytes kept, got %q", got)
	}
	if l.Dropped() != 2 {
		t.Fatalf("expected 2 dropped, got %d", l.Dropped())
	}
}

func TestLinkWriteAndClose(t *testing.T) {
	port := newFakePort()
	l := NewLink(port, logger.Nop(), 0)

	if err := NewNotifier(l).Ack(); err != nil {
		t.Fatalf("ack failed: %v", err)
	}
	port.mu.Lock()
	out := port.out.String()
	port.mu.Unlock()
	if out != ReplyAck {
		t.Fatalf("unexpected output %q", out)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if l.Err() == nil {
		t.Fatalf("reader error should be recorded after close")
	}
}
