// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// EndpointClient is a single TCP connection to one status endpoint.
// It serializes requests because it mutates SlaveId per write.
// A failed write drops the connection; the next write reconnects.
type EndpointClient struct {
	mu        sync.Mutex
	handler   *modbus.TCPClientHandler
	client    modbus.Client
	connected bool
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// NewEndpointClient prepares a client. The first connection is attempted
// eagerly so a bad endpoint shows up at startup, but a down endpoint is not fatal.
func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	c := &EndpointClient{
		handler: h,
		client:  modbus.NewClient(h),
	}
	c.connected = h.Connect() == nil
	return c, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return c.handler.Close()
}

// WriteRegisters writes holding registers with FC16.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		if err := c.handler.Connect(); err != nil {
			return fmt.Errorf("writer modbus: connect %s: %w", c.handler.Address, err)
		}
		c.connected = true
	}

	c.handler.SlaveId = unitID

	qty := uint16(len(regs))
	payload := PackRegisters(regs)

	if _, err := c.client.WriteMultipleRegisters(addr, qty, payload); err != nil {
		_ = c.handler.Close()
		c.connected = false
		return err
	}
	return nil
}

// PackRegisters encodes registers big-endian, as Modbus carries them.
func PackRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
