// internal/registry/registry.go
package registry

import (
	"errors"

	"github.com/tamzrod/tag-ap/internal/proto"
)

// DefaultCapacity is the number of pending offers the AP can hold.
const DefaultCapacity = 64

// ErrFull is returned when an offer for a new tag finds no free slot.
var ErrFull = errors.New("registry: full")

// Entry is one pending offer for one tag.
//
// AttemptsLeft is a housekeeping-cycle countdown:
//
//	0  free slot
//	1  last cycle, expires on the next sweep
//	>1 live
type Entry struct {
	Offer        proto.AvailDataInfo
	AttemptsLeft uint16
	MAC          proto.MAC
}

// Live reports whether the slot holds an offer.
func (e Entry) Live() bool { return e.AttemptsLeft != 0 }

// Registry is a fixed-capacity table of pending offers keyed by tag MAC.
// It is not safe for concurrent use; the AP loop owns it.
type Registry struct {
	slots []Entry
}

// New creates an empty registry. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{slots: make([]Entry, capacity)}
}

// Capacity is the fixed number of slots.
func (r *Registry) Capacity() int { return len(r.slots) }

// FindSlotForMac returns the live slot for mac, or -1.
func (r *Registry) FindSlotForMac(mac proto.MAC) int {
	for i := range r.slots {
		if r.slots[i].Live() && r.slots[i].MAC == mac {
			return i
		}
	}
	return -1
}

// FindFreeSlot returns the first free slot, or -1.
func (r *Registry) FindFreeSlot() int {
	for i := range r.slots {
		if !r.slots[i].Live() {
			return i
		}
	}
	return -1
}

// Upsert stores e, overwriting the live entry for the same MAC if there is one,
// else taking the first free slot. A full registry is left untouched.
func (r *Registry) Upsert(e Entry) (int, error) {
	slot := r.FindSlotForMac(e.MAC)
	if slot == -1 {
		slot = r.FindFreeSlot()
	}
	if slot == -1 {
		return -1, ErrFull
	}
	r.slots[slot] = e
	return slot, nil
}

// Lookup returns the live entry for mac.
func (r *Registry) Lookup(mac proto.MAC) (Entry, bool) {
	slot := r.FindSlotForMac(mac)
	if slot == -1 {
		return Entry{}, false
	}
	return r.slots[slot], true
}

// Release frees the live entry for mac. It reports whether one existed.
func (r *Registry) Release(mac proto.MAC) bool {
	slot := r.FindSlotForMac(mac)
	if slot == -1 {
		return false
	}
	r.slots[slot].AttemptsLeft = 0
	return true
}

// CancelVersion frees every live entry whose offer carries version ver.
// It returns the number of entries freed.
func (r *Registry) CancelVersion(ver uint64) int {
	n := 0
	for i := range r.slots {
		if r.slots[i].Live() && r.slots[i].Offer.Version == ver {
			r.slots[i].AttemptsLeft = 0
			n++
		}
	}
	return n
}

// Sweep runs one housekeeping cycle and returns the MACs whose entries expired.
// Entries on their last attempt are freed; live ones lose one attempt and,
// when non-zero, one minute of their advisory check-in interval.
func (r *Registry) Sweep() []proto.MAC {
	var expired []proto.MAC
	for i := range r.slots {
		e := &r.slots[i]
		switch {
		case e.AttemptsLeft == 1:
			expired = append(expired, e.MAC)
			e.AttemptsLeft = 0
		case e.AttemptsLeft > 1:
			e.AttemptsLeft--
			if e.Offer.NextCheckIn != 0 {
				e.Offer.NextCheckIn--
			}
		}
	}
	return expired
}

// Live returns the number of live entries.
func (r *Registry) Live() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].Live() {
			n++
		}
	}
	return n
}

// Entries returns a copy of every live entry in slot order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, r.Live())
	for _, e := range r.slots {
		if e.Live() {
			out = append(out, e)
		}
	}
	return out
}

// Clear frees every slot.
func (r *Registry) Clear() {
	for i := range r.slots {
		r.slots[i] = Entry{}
	}
}
