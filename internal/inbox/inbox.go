// Package inbox implements the Event Inbox: a mutex-protected queue that
// captures plugin-originated events posted from the GUI thread, drained by
// the audio thread using a non-blocking try-lock (spec.md §4.4).
//
// The producer/consumer split mirrors client/internal/jitter's single-writer-
// many-reads-per-tick shape, but jitter.Buffer has a fixed-size ring sized
// for steady playback; the Event Inbox has no capacity bound (events are
// rare — at most one editor per instance) so it grows a plain slice and
// swaps it out wholesale on drain, minimizing the time the lock is held.
package inbox

import "sync"

// Kind distinguishes the three event shapes spec.md §3 defines.
type Kind int

const (
	KindParamAutomated Kind = iota
	KindMIDI
	KindSysex
)

// Event is a tagged variant of a plugin-originated callback captured on the
// GUI thread for later delivery on the audio thread.
type Event struct {
	Kind Kind

	// KindParamAutomated
	ParamIndex int32
	ParamValue float32

	// KindMIDI
	MIDIStatus, MIDIData1, MIDIData2 byte

	// KindMIDI / KindSysex
	DeltaFrames int32

	// KindSysex
	Sysex []byte
}

// Inbox is the mutex-protected event queue.
type Inbox struct {
	mu     sync.Mutex
	events []Event
}

// New returns an empty Inbox.
func New() *Inbox {
	return &Inbox{}
}

// Push appends an event, blocking until the lock is acquired. Called from
// the GUI thread (the only producer); blocking here is fine because the GUI
// thread is allowed to block (spec.md §5).
func (b *Inbox) Push(e Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

// TryDrain attempts to swap out the current queue without blocking. It
// returns (events, true) on success, or (nil, false) if the audio thread
// could not acquire the lock this tick — per spec.md §4.4, events simply
// remain enqueued for a future tick in that case.
func (b *Inbox) TryDrain() ([]Event, bool) {
	if !b.mu.TryLock() {
		return nil, false
	}
	events := b.events
	b.events = nil
	b.mu.Unlock()
	return events, true
}

// Len reports the current queue length. Intended for tests/metrics, not the
// audio-thread hot path (it takes the lock).
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
