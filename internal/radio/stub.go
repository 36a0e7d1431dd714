// internal/radio/stub.go
package radio

import (
	"sync"
)

// Stub is an in-memory driver for tests and dry runs.
type Stub struct {
	mu     sync.Mutex
	rx     queue
	sent   [][]byte
	nudges int
	closed bool
}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Tx(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.sent = append(s.sent, clone(frame))
	return nil
}

func (s *Stub) Rx(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	frame, ok := s.rx.pop()
	if !ok {
		return 0, nil
	}
	return copy(buf, frame), nil
}

func (s *Stub) Nudge() error {
	s.mu.Lock()
	s.nudges++
	s.mu.Unlock()
	return nil
}

func (s *Stub) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Inject queues a frame as if it had been received over the air.
func (s *Stub) Inject(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rx.push(clone(frame))
}

// Sent returns a copy of every transmitted frame, oldest first.
func (s *Stub) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	for i, f := range s.sent {
		out[i] = clone(f)
	}
	return out
}

// TakeSent returns the transmitted frames and clears the log.
func (s *Stub) TakeSent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sent
	s.sent = nil
	return out
}

// Nudges is the number of Nudge calls.
func (s *Stub) Nudges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nudges
}
