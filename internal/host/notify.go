// internal/host/notify.go
package host

import (
	"fmt"
	"io"

	"github.com/tamzrod/tag-ap/internal/proto"
)

// Notifier writes replies and notifications to the host.
// Every message goes out in a single Write.
type Notifier struct {
	w io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) write(b []byte) error {
	if _, err := n.w.Write(b); err != nil {
		return fmt.Errorf("host: write: %w", err)
	}
	return nil
}

func (n *Notifier) tagged(tag string, body []byte) error {
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag...)
	out = append(out, body...)
	return n.write(out)
}

// ---- replies ----

func (n *Notifier) Ack() error       { return n.write([]byte(ReplyAck)) }
func (n *Notifier) Nak() error       { return n.write([]byte(ReplyNak)) }
func (n *Notifier) QueueFull() error { return n.write([]byte(ReplyQueueFull)) }
func (n *Notifier) Ready() error     { return n.write([]byte(ReplyReady)) }

// Version replies VER> with four uppercase hex digits.
func (n *Notifier) Version(v uint16) error {
	return n.write([]byte(fmt.Sprintf("%s%04X\n", TagVersion, v)))
}

// MAC announces the AP address as 16 uppercase hex digits.
func (n *Notifier) MAC(m proto.MAC) error {
	return n.write([]byte(TagMAC + m.Hex() + "\n"))
}

// ---- notifications ----

func (n *Notifier) FetchRequest(r FetchRequest) error {
	return n.tagged(TagFetchRequest, r.Encode())
}

func (n *Notifier) AvailRelay(r AvailRelay) error {
	return n.tagged(TagAvailRelay, r.Encode())
}

func (n *Notifier) XferComplete(src proto.MAC) error {
	return n.tagged(TagXferComplete, XferNotice{Src: src}.Encode())
}

func (n *Notifier) XferTimeout(src proto.MAC) error {
	return n.tagged(TagXferTimeout, XferNotice{Src: src}.Encode())
}
