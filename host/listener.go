package host

import (
	"pluginhost/internal/backend"
	"pluginhost/internal/inbox"
	"pluginhost/internal/protocol"
)

// threadKind classifies which of the instance's three driving goroutines a
// Listener Adapter callback arrived on (spec.md §4.2).
type threadKind int

const (
	threadAudio threadKind = iota
	threadWorker
	threadOther // GUI thread, or any goroutine the instance never bound
)

// currentThread compares the calling goroutine's id against the ids bound
// in bindAudioThread/Start. Any unrecognized goroutine — which in practice
// means the GUI thread, since that is the only other goroutine expected to
// call into a Backend's listener — is treated the same as the GUI thread:
// routed through the Event Inbox, the one path that is always safe
// regardless of which thread it actually is.
func (h *Instance) currentThread() threadKind {
	id := goroutineID()
	if id != 0 && id == h.audioGoroutine.Load() {
		return threadAudio
	}
	if id != 0 && id == h.workerGoroutine.Load() {
		return threadWorker
	}
	return threadOther
}

// bindAudioThread records the calling goroutine as "the audio thread" the
// first time Next runs. Guarded by sync.Once so the
// goroutineID() call — not free, since it parses a runtime stack trace —
// happens at most once over the instance's lifetime rather than on every
// audio block.
func (h *Instance) bindAudioThread() {
	h.bindAudioOnce.Do(func() {
		h.audioGoroutine.Store(goroutineID())
	})
}

// ListenerAdapter is the backend.Listener every Instance registers via
// SetListener. It is the thread router spec.md §4.2 describes: a plugin
// backend calls these methods from whatever thread it likes, and delivery
// is routed to the correct destination depending on which of the
// instance's own goroutines that turns out to be.
type ListenerAdapter struct {
	h *Instance
}

func newListenerAdapter(h *Instance) *ListenerAdapter {
	return &ListenerAdapter{h: h}
}

var _ backend.Listener = (*ListenerAdapter)(nil)

// ParameterAutomated is called by a plugin backend when it changes a
// parameter on its own (plugin-originated automation, not a SetParam the
// host itself issued). Audio-thread origin delivers the /param and /auto
// replies inline; worker-thread origin defers delivery to the audio
// thread via a one-shot reply Command; anything else (the GUI thread, via
// an editor control) is queued on the Event Inbox for the next Next call
// to drain.
func (l *ListenerAdapter) ParameterAutomated(index int32, value float32) {
	switch l.h.currentThread() {
	case threadAudio:
		l.h.deliverParamInline(index, value)
	case threadWorker:
		l.h.postParamReply(index, value)
	default:
		l.h.inbox.Push(inbox.Event{
			Kind:       inbox.KindParamAutomated,
			ParamIndex: index,
			ParamValue: value,
		})
	}
}

// MIDIEvent is called by a plugin backend emitting an output MIDI message.
// Worker-thread origin is dropped: spec.md §4.2 scopes Listener-originated
// MIDI/sysex to the audio and GUI threads only (a plugin has no business
// generating output MIDI from its own worker-thread housekeeping calls).
func (l *ListenerAdapter) MIDIEvent(status, data1, data2 byte, deltaFrames int32) {
	switch l.h.currentThread() {
	case threadAudio:
		l.h.deliverMIDIInline(status, data1, data2)
	case threadWorker:
	default:
		l.h.inbox.Push(inbox.Event{
			Kind:        inbox.KindMIDI,
			MIDIStatus:  status,
			MIDIData1:   data1,
			MIDIData2:   data2,
			DeltaFrames: deltaFrames,
		})
	}
}

// SysexEvent is the sysex counterpart to MIDIEvent.
func (l *ListenerAdapter) SysexEvent(data []byte, deltaFrames int32) {
	switch l.h.currentThread() {
	case threadAudio:
		l.h.deliverSysexInline(data)
	case threadWorker:
	default:
		l.h.inbox.Push(inbox.Event{
			Kind:        inbox.KindSysex,
			Sysex:       append([]byte(nil), data...),
			DeltaFrames: deltaFrames,
		})
	}
}

// deliverParamInline sends /param (the value plus its current display
// string) followed by /auto (the bare automation notice), and records the
// value in the parameter store the same way an explicit SetParam does —
// automation and explicit sets both count as "the last value sent".
func (h *Instance) deliverParamInline(index int32, value float32) {
	display := ""
	if h.b != nil {
		display = h.b.ParameterDisplay(index)
	}
	h.reply(protocol.Message{Type: protocol.ReplyParam, Index: index, Value: value, Display: display})
	h.reply(protocol.Message{Type: protocol.ReplyAuto, Index: index, Value: value})
	if h.params.InRange(int(index)) {
		h.params.SetLast(int(index), value)
	}
}

func (h *Instance) deliverMIDIInline(status, data1, data2 byte) {
	h.reply(protocol.Message{Type: protocol.ReplyMIDI, Status: status, Data1: data1, Data2: data2})
}

func (h *Instance) deliverSysexInline(data []byte) {
	h.reply(protocol.Message{Type: protocol.ReplySysex, Bytes: append([]byte(nil), data...)})
}

// postParamReply defers inline delivery to the audio thread via a
// reply-only Command, since the worker thread cannot safely touch
// h.params or emit replies itself (spec.md §4.2/§4.3: only the audio
// thread drains and runs RT stages).
func (h *Instance) postParamReply(index int32, value float32) {
	h.cmdQ.PostReply(func() bool {
		h.deliverParamInline(index, value)
		return true
	})
}
