// internal/ap/engine.go
package ap

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/tamzrod/tag-ap/internal/clock"
	"github.com/tamzrod/tag-ap/internal/host"
	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/radio"
	"github.com/tamzrod/tag-ap/internal/registry"
	"github.com/tamzrod/tag-ap/internal/transfer"
	"github.com/tamzrod/tag-ap/internal/version"
)

// HostLink is the buffered host transport.
type HostLink interface {
	io.Writer
	// Drain moves every buffered byte into dst[:0] without blocking.
	Drain(dst []byte) []byte
}

// Config is the runtime config the engine needs.
type Config struct {
	MAC              proto.MAC
	ProtocolVersion  uint16
	RegistryCapacity int
	Transfer         transfer.Params

	// Housekeeping is the sweep interval. The sweep fires 100 ms early.
	Housekeeping time.Duration
	// NudgeEvery is the number of idle iterations between radio nudges.
	NudgeEvery int
	// IdleSleep is how long Run waits after an iteration that did nothing.
	IdleSleep time.Duration
}

const housekeepingSlack = 100 * time.Millisecond

// DefaultConfig returns the stock timings for mac.
func DefaultConfig(mac proto.MAC) Config {
	return Config{
		MAC:              mac,
		ProtocolVersion:  version.Protocol,
		RegistryCapacity: registry.DefaultCapacity,
		Transfer:         transfer.DefaultParams(),
		Housekeeping:     60 * time.Second,
		NudgeEvery:       10000,
		IdleSleep:        time.Millisecond,
	}
}

// Engine is the access-point protocol loop. PollOnce and Run must be called
// from a single goroutine; Snapshot is safe from any goroutine.
type Engine struct {
	cfg   Config
	clk   clock.Clock
	radio radio.Driver
	link  HostLink
	note  *host.Notifier
	reg   *registry.Registry
	xfer  *transfer.Session
	log   logger.Logger

	rx        host.State
	event     proto.EventData
	seq       uint8
	nudge     int
	lastSweep clock.Tick
	startedAt time.Time

	rxBuf   []byte
	hostBuf []byte

	counters Counters

	snapMu sync.RWMutex
	snap   Snapshot
}

// New wires an engine. The MAC must be provisioned.
func New(cfg Config, clk clock.Clock, drv radio.Driver, link HostLink, log logger.Logger) (*Engine, error) {
	if cfg.MAC.IsZero() {
		return nil, errors.New("ap: mac address not provisioned")
	}
	if cfg.NudgeEvery <= 0 {
		cfg.NudgeEvery = 10000
	}
	if cfg.Housekeeping <= housekeepingSlack {
		return nil, errors.New("ap: housekeeping interval must exceed 100ms")
	}

	e := &Engine{
		cfg:     cfg,
		clk:     clk,
		radio:   drv,
		link:    link,
		note:    host.NewNotifier(link),
		reg:     registry.New(cfg.RegistryCapacity),
		log:     log.With("ap", cfg.MAC.String()),
		rxBuf:   make([]byte, proto.MaxFrameSize+2),
		hostBuf: make([]byte, 0, 512),
	}
	e.xfer = transfer.New(cfg.Transfer, e.reg, e, e.note, e.log)
	return e, nil
}

// Start announces the AP to the host and arms the loop timers.
func (e *Engine) Start() {
	e.startedAt = time.Now()
	e.nudge = e.cfg.NudgeEvery
	e.lastSweep = e.clk.Now()
	e.announce()
	e.publish()
}

func (e *Engine) announce() {
	if err := e.note.Ready(); err != nil {
		e.log.Warn("ap: announce failed", "err", err)
		return
	}
	_ = e.note.MAC(e.cfg.MAC)
	_ = e.note.Version(e.cfg.ProtocolVersion)
	e.log.Info("ap: ready", "version", e.cfg.ProtocolVersion, "capacity", e.reg.Capacity())
}

// Reset clears every piece of volatile state and re-announces.
func (e *Engine) Reset() {
	e.reg.Clear()
	e.xfer.Reset()
	e.rx = host.State{}
	e.event = proto.EventData{}
	e.seq = 0
	e.counters = Counters{}
	e.log.Warn("ap: reset requested by host")
	e.Start()
}

// PollOnce runs one loop iteration:
// one radio frame, every buffered host byte, the send deadline,
// the nudge counter, then housekeeping when due.
// It reports whether the iteration did any work.
func (e *Engine) PollOnce() bool {
	work := false

	n, err := e.radio.Rx(e.rxBuf)
	if err != nil {
		e.counters.RadioErrors++
		e.log.Warn("ap: radio rx failed", "err", err)
	}
	if n > 0 {
		e.handleFrame(e.rxBuf[:n])
		e.nudge = e.cfg.NudgeEvery
		work = true
	}

	e.hostBuf = e.link.Drain(e.hostBuf)
	if len(e.hostBuf) > 0 {
		e.counters.HostBytes += uint64(len(e.hostBuf))
		for _, c := range e.hostBuf {
			e.handleHostByte(c)
		}
		work = true
	}

	if e.xfer.Service(e.clk.Now()) > 0 {
		work = true
	}

	e.nudge--
	if e.nudge <= 0 {
		e.nudge = e.cfg.NudgeEvery
		e.counters.Nudges++
		if err := e.radio.Nudge(); err != nil {
			e.log.Warn("ap: radio nudge failed", "err", err)
		}
	}

	now := e.clk.Now()
	if clock.Since(now, e.lastSweep) >= e.cfg.Housekeeping-housekeepingSlack {
		e.housekeeping()
		e.lastSweep = now
		work = true
	}

	if work {
		e.publish()
	}
	return work
}

// Run starts the engine and polls until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.Start()

	idle := time.NewTimer(e.cfg.IdleSleep)
	idle.Stop()
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if e.PollOnce() || e.cfg.IdleSleep <= 0 {
			continue
		}

		idle.Reset(e.cfg.IdleSleep)
		select {
		case <-ctx.Done():
			return
		case <-idle.C:
		}
	}
}

func (e *Engine) housekeeping() {
	expired := e.reg.Sweep()
	for _, mac := range expired {
		e.counters.Timeouts++
		if err := e.note.XferTimeout(mac); err != nil {
			e.log.Warn("ap: timeout notice failed", "tag", mac.String(), "err", err)
		}
	}
	e.counters.Sweeps++
	e.log.Debug("ap: housekeeping", "expired", len(expired), "live", e.reg.Live())
}

// SendNormal transmits one unicast frame from the AP to dst.
func (e *Engine) SendNormal(dst proto.MAC, pan uint16, ptype byte, body []byte) error {
	hdr := proto.NormalHeader{Seq: e.seq, PAN: pan, Dst: dst, Src: e.cfg.MAC}
	e.seq++
	frame, err := proto.EncodeNormal(hdr, ptype, body)
	if err != nil {
		return err
	}
	if err := e.radio.Tx(frame); err != nil {
		e.counters.RadioErrors++
		return err
	}
	e.counters.TxFrames++
	return nil
}

// Registry exposes the pending-offer table for diagnostics in tests.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// EventMode reports whether the event fast path is active.
func (e *Engine) EventMode() bool { return e.rx.EventMode }
