// internal/host/link.go
package host

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/tag-ap/internal/logger"
)

// DefaultQueueSize bounds the bytes buffered between the reader goroutine and Drain.
const DefaultQueueSize = 16 * 1024

// SerialConfig describes the UART to the host.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	Timeout  time.Duration
}

func (c SerialConfig) serial() *serial.Config {
	return &serial.Config{
		Address:  c.Device,
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		StopBits: c.StopBits,
		Parity:   c.Parity,
		Timeout:  c.Timeout,
	}
}

// Link is the host transport. A reader goroutine buffers incoming bytes;
// the AP loop drains them without blocking.
type Link struct {
	port io.ReadWriteCloser
	log  logger.Logger

	mu      sync.Mutex
	queue   []byte
	limit   int
	dropped uint64
	err     error

	wmu  sync.Mutex
	done chan struct{}
}

// Open opens the serial device and starts the reader.
func Open(cfg SerialConfig, log logger.Logger) (*Link, error) {
	port, err := serial.Open(cfg.serial())
	if err != nil {
		return nil, fmt.Errorf("host: open %s: %w", cfg.Device, err)
	}
	return NewLink(port, log, DefaultQueueSize), nil
}

// NewLink wraps an already open port and starts the reader.
func NewLink(port io.ReadWriteCloser, log logger.Logger, queueSize int) *Link {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	l := &Link{
		port:  port,
		log:   log,
		limit: queueSize,
		done:  make(chan struct{}),
	}
	go l.readLoop()
	return l
}

func (l *Link) readLoop() {
	defer close(l.done)
	buf := make([]byte, 256)
	for {
		n, err := l.port.Read(buf)
		if n > 0 {
			l.push(buf[:n])
		}
		if err == nil {
			continue
		}
		if errors.Is(err, serial.ErrTimeout) {
			continue
		}
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		if !errors.Is(err, io.EOF) {
			l.log.Warn("host: reader stopped", "err", err)
		}
		return
	}
}

func (l *Link) push(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room := l.limit - len(l.queue)
	if room < len(b) {
		l.dropped += uint64(len(b) - max(room, 0))
		b = b[:max(room, 0)]
	}
	l.queue = append(l.queue, b...)
}

// Drain moves every buffered byte into dst[:0] and returns it.
// It never blocks.
func (l *Link) Drain(dst []byte) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	dst = append(dst[:0], l.queue...)
	l.queue = l.queue[:0]
	return dst
}

// Dropped is the number of bytes lost to queue overflow.
func (l *Link) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Err returns the error that stopped the reader, if any.
func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Write sends bytes to the host.
func (l *Link) Write(p []byte) (int, error) {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	return l.port.Write(p)
}

// Close closes the port and waits for the reader to exit.
func (l *Link) Close() error {
	err := l.port.Close()
	<-l.done
	return err
}
