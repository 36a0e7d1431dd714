// internal/clock/clock.go
package clock

import (
	"sync"
	"time"
)

// Tick is a free-running millisecond counter. It wraps at 2^32.
// Never compare two ticks directly; use Since / Reached.
type Tick uint32

// Clock is the tick source polled by the AP loop.
type Clock interface {
	Now() Tick
}

// Since returns the time elapsed from then to now, modulo 2^32 ms.
func Since(now, then Tick) time.Duration {
	return time.Duration(uint32(now-then)) * time.Millisecond
}

// Add offsets a tick by d (truncated to milliseconds).
func Add(t Tick, d time.Duration) Tick {
	return t + Tick(d/time.Millisecond)
}

// Reached reports whether now is at or past deadline.
// Valid while the two ticks are less than 2^31 ms apart.
func Reached(now, deadline Tick) bool {
	return int32(uint32(now-deadline)) >= 0
}

// ---- system clock ----

// System derives ticks from the monotonic clock.
type System struct {
	start time.Time
}

// NewSystem starts a tick counter at zero.
func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Now() Tick {
	return Tick(uint32(time.Since(s.start) / time.Millisecond))
}

// ---- manual clock ----

// Manual is a clock driven by tests.
type Manual struct {
	mu  sync.Mutex
	now Tick
}

// NewManual starts a manual clock at t.
func NewManual(t Tick) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() Tick {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = Add(m.now, d)
	m.mu.Unlock()
}

// ---- one-shot deadline ----

// Deadline is a one-shot absolute-time timer checked by polling.
type Deadline struct {
	at    Tick
	armed bool
}

// Arm (re)schedules the deadline at now+d.
func (d *Deadline) Arm(now Tick, after time.Duration) {
	d.at = Add(now, after)
	d.armed = true
}

// Disarm cancels the deadline.
func (d *Deadline) Disarm() {
	d.armed = false
}

// Armed reports whether the deadline is scheduled.
func (d *Deadline) Armed() bool {
	return d.armed
}

// Due reports whether the deadline is armed and reached.
func (d *Deadline) Due(now Tick) bool {
	return d.armed && Reached(now, d.at)
}
