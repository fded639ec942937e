// Package paramstore holds the per-instance parameter table touched only
// from the audio thread (spec.md §3 ParameterSlot, §4.1 step 4).
//
// The table never needs a mutex: every field the audio thread writes is
// also only ever read by the audio thread. Where a value can be *read* off
// the audio thread (e.g. for a UI meter), it is stored with atomics, the
// same pattern the teacher uses for AudioEngine.inputLevel and
// AudioEngine.notifScale (atomic.Uint32 storing math.Float32bits).
package paramstore

import (
	"math"
	"sync/atomic"
)

// NoBus marks a ParameterSlot as not bound to a control bus.
const NoBus = -1

// Slot is one parameter's last-sent value and optional control-bus binding.
type Slot struct {
	// lastValue is NaN until the first SetLast call, matching the "NaN
	// sentinel" invariant in spec.md §3.
	lastValue atomic.Uint32 // math.Float32bits
	busIndex  atomic.Int32
}

// Store is a fixed-size table of ParameterSlots, one per plugin parameter.
type Store struct {
	slots []Slot
}

// New returns a Store sized for n parameters, all unset (NaN, unbound).
func New(n int) *Store {
	s := &Store{slots: make([]Slot, n)}
	for i := range s.slots {
		s.slots[i].lastValue.Store(math.Float32bits(float32(math.NaN())))
		s.slots[i].busIndex.Store(NoBus)
	}
	return s
}

// Len returns the number of parameter slots.
func (s *Store) Len() int { return len(s.slots) }

// Last returns the last value sent to parameter i, or NaN if never set.
func (s *Store) Last(i int) float32 {
	return math.Float32frombits(s.slots[i].lastValue.Load())
}

// SetLast records the value most recently sent to the backend for
// parameter i. Called after a successful SetParameter.
func (s *Store) SetLast(i int, v float32) {
	s.slots[i].lastValue.Store(math.Float32bits(v))
}

// Bus returns the control-bus index bound to parameter i, or NoBus.
func (s *Store) Bus(i int) int {
	return int(s.slots[i].busIndex.Load())
}

// Map binds parameter i to a control bus. Per spec.md §3(c), an explicit
// SetLast via a direct set call must invalidate this back to NoBus — callers
// that implement "explicit set" (host.Instance.SetParam) must call Unmap
// themselves; Map/SetLast do not do it for each other automatically so that
// the audio-thread bus-read path (which also calls SetLast) does not
// unintentionally unmap itself.
func (s *Store) Map(i, bus int) {
	s.slots[i].busIndex.Store(int32(bus))
}

// Unmap clears parameter i's control-bus binding.
func (s *Store) Unmap(i int) {
	s.slots[i].busIndex.Store(NoBus)
}

// InRange reports whether i is a valid parameter index.
func (s *Store) InRange(i int) bool {
	return i >= 0 && i < len(s.slots)
}
