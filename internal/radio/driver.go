// internal/radio/driver.go
package radio

import "errors"

// Driver is the transceiver as seen by the AP loop.
// Rx never blocks: it returns 0 when no frame is pending.
type Driver interface {
	Tx(frame []byte) error
	Rx(buf []byte) (int, error)
	// Nudge forces the transceiver back into receive mode.
	Nudge() error
	Close() error
}

var ErrClosed = errors.New("radio: closed")

// ---- frame queue ----

const queueCapacity = 64

// queue is a bounded FIFO of frames. When full the oldest frame is dropped.
type queue struct {
	data       [queueCapacity][]byte
	head, tail int
	count      int
	dropped    uint64
}

func (q *queue) push(frame []byte) {
	if q.count == queueCapacity {
		q.data[q.head] = nil
		q.head = (q.head + 1) % queueCapacity
		q.count--
		q.dropped++
	}
	q.data[q.tail] = frame
	q.tail = (q.tail + 1) % queueCapacity
	q.count++
}

func (q *queue) pop() ([]byte, bool) {
	if q.count == 0 {
		return nil, false
	}
	frame := q.data[q.head]
	q.data[q.head] = nil
	q.head = (q.head + 1) % queueCapacity
	q.count--
	return frame, true
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
