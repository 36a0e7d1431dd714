// internal/radio/udp.go
package radio

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/proto"
)

// nudgeDatagram asks the bridge to put its transceiver back into receive mode.
var nudgeDatagram = []byte{0x00}

// UDP bridges frames to an external transceiver process, one frame per datagram.
// A one-byte datagram is a control message and never a frame.
type UDP struct {
	conn *net.UDPConn
	log  logger.Logger

	mu   sync.Mutex
	peer *net.UDPAddr
	rx   queue

	done chan struct{}
}

// ListenUDP binds listen and sends to peer. An empty peer replies to
// whoever sent the most recent datagram.
func ListenUDP(listen, peer string, log logger.Logger) (*UDP, error) {
	laddr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("radio: listen address %q: %w", listen, err)
	}
	var paddr *net.UDPAddr
	if peer != "" {
		paddr, err = net.ResolveUDPAddr("udp", peer)
		if err != nil {
			return nil, fmt.Errorf("radio: peer address %q: %w", peer, err)
		}
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("radio: listen %s: %w", listen, err)
	}

	u := &UDP{
		conn: conn,
		log:  log,
		peer: paddr,
		done: make(chan struct{}),
	}
	go u.readLoop(paddr == nil)
	return u, nil
}

// LocalAddr is the bound address.
func (u *UDP) LocalAddr() net.Addr { return u.conn.LocalAddr() }

func (u *UDP) readLoop(learnPeer bool) {
	defer close(u.done)
	buf := make([]byte, proto.MaxFrameSize+1)
	for {
		n, from, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				u.log.Warn("radio: udp read failed", "err", err)
			}
			return
		}
		if n <= 1 {
			continue
		}
		if n > proto.MaxFrameSize {
			u.log.Debug("radio: oversized datagram dropped", "len", n, "from", from.String())
			continue
		}
		u.mu.Lock()
		if learnPeer {
			u.peer = from
		}
		u.rx.push(clone(buf[:n]))
		u.mu.Unlock()
	}
}

func (u *UDP) Rx(buf []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	frame, ok := u.rx.pop()
	if !ok {
		return 0, nil
	}
	return copy(buf, frame), nil
}

func (u *UDP) Tx(frame []byte) error {
	u.mu.Lock()
	peer := u.peer
	u.mu.Unlock()
	if peer == nil {
		// no bridge has spoken yet
		return nil
	}
	if _, err := u.conn.WriteToUDP(frame, peer); err != nil {
		return fmt.Errorf("radio: udp write: %w", err)
	}
	return nil
}

func (u *UDP) Nudge() error {
	return u.Tx(nudgeDatagram)
}

func (u *UDP) Close() error {
	err := u.conn.Close()
	<-u.done
	return err
}
