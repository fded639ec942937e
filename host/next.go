package host

import (
	"pluginhost/internal/inbox"
	"pluginhost/internal/paramstore"
)

// ParamWrite is one UGen-style audio-rate parameter write the embedding
// engine wants applied this block (spec.md §4.1 step 4b), distinct from
// the control-bus bindings step 4a reads automatically.
type ParamWrite struct {
	Index int32
	Value float32
}

// SetBypass is the audio-rate bypass control spec.md §4.1 step 2
// describes: read once per block, transitioning Ready<->Bypassed without
// triggering an implicit reset ("bypass is explicit — rationale:
// RT-safety"). Call before Next.
func (h *Instance) SetBypass(bypass bool) {
	switch h.State() {
	case StateReady:
		if bypass {
			h.bypass = true
			h.setState(StateBypassed)
		}
	case StateBypassed:
		if !bypass {
			h.bypass = false
			h.setState(StateReady)
		}
	}
}

// Next is the audio-thread processing routine (spec.md §4.1): binds
// engine buffers to the plugin, applies pending parameter writes, calls
// the backend, and forwards captured GUI-thread events. inputs/outputs
// are the embedding engine's per-channel buffers; controlBuses is indexed
// by the bus numbers mapParam bound (spec.md §3(b)); paramWrites are this
// block's direct UGen-style parameter inputs (step 4b).
func (h *Instance) Next(inputs, outputs [][]float32, numFrames int, controlBuses []float32, paramWrites []ParamWrite) {
	h.bindAudioThread()

	// Step 1: no output buffer bound at all -> silence (nothing to do).
	if len(outputs) == 0 {
		return
	}
	for _, out := range outputs {
		clearF32(out[:numFrames])
	}

	switch h.State() {
	case StateReady:
		h.processReady(inputs, outputs, numFrames, controlBuses, paramWrites)
	case StateBypassed:
		copyThrough(inputs, outputs, numFrames)
	default:
		// Empty/Loading/Closing: already zero-filled above.
	}
}

func (h *Instance) processReady(inputs, outputs [][]float32, numFrames int, controlBuses []float32, paramWrites []ParamWrite) {
	if h.b == nil || !h.b.HasPrecision(false) {
		copyThrough(inputs, outputs, numFrames)
		return
	}

	// 4a: bus-mapped parameters.
	for i := 0; i < h.params.Len(); i++ {
		bus := h.params.Bus(i)
		if bus == paramstore.NoBus || bus >= len(controlBuses) {
			continue
		}
		v := controlBuses[bus]
		if v == h.params.Last(i) {
			continue
		}
		if err := h.b.SetParameter(int32(i), v); err != nil {
			h.log.Warn("next: bus-mapped set_parameter failed", "index", i, "error", err)
			continue
		}
		h.params.SetLast(i, v)
	}

	// 4b: direct UGen-style parameter writes, skipping bus-mapped slots.
	for _, w := range paramWrites {
		i := int(w.Index)
		if !h.params.InRange(i) || h.params.Bus(i) != paramstore.NoBus {
			continue
		}
		if w.Value == h.params.Last(i) {
			continue
		}
		if err := h.b.SetParameter(w.Index, w.Value); err != nil {
			h.log.Warn("next: param write failed", "index", i, "error", err)
			continue
		}
		h.params.SetLast(i, w.Value)
	}

	// 4c.
	pluginIn, pluginOut, outIsScratch := h.bindChannels(inputs, outputs, numFrames)
	if err := h.b.Process(pluginIn, pluginOut, numFrames); err != nil {
		h.log.Warn("next: process failed", "error", err)
	}
	if outIsScratch {
		n := len(outputs)
		if len(pluginOut) < n {
			n = len(pluginOut)
		}
		for c := 0; c < n; c++ {
			copy(outputs[c][:numFrames], pluginOut[c][:numFrames])
		}
	}

	// 4d: forward any GUI-thread-originated events captured since the
	// last tick. Tried only when an editor actually exists.
	if h.editorWindow != nil {
		h.drainInboxReplies()
	}
}

// drainInboxReplies delivers every Event pushed onto the inbox since the
// last Next call (GUI-thread-originated parameter/MIDI/sysex activity),
// using the same inline delivery path audio-thread-originated callbacks
// use (spec.md §4.2: the inbox exists precisely so the audio thread can
// fold GUI-thread events into its own delivery path without blocking).
func (h *Instance) drainInboxReplies() {
	events, _ := h.inbox.TryDrain()
	for _, e := range events {
		switch e.Kind {
		case inbox.KindParamAutomated:
			h.deliverParamInline(e.ParamIndex, e.ParamValue)
		case inbox.KindMIDI:
			h.deliverMIDIInline(e.MIDIStatus, e.MIDIData1, e.MIDIData2)
		case inbox.KindSysex:
			h.deliverSysexInline(e.Sysex)
		}
	}
}

// bindChannels binds the engine's own buffers to the plugin directly when
// channel counts match; otherwise it uses the pre-allocated scratch
// buffers, copying the engine's inputs in first. outIsScratch tells the
// caller whether it must copy pluginOut back to the engine's outputs.
func (h *Instance) bindChannels(inputs, outputs [][]float32, numFrames int) (pluginIn, pluginOut [][]float32, outIsScratch bool) {
	if len(inputs) == h.info.NumInputs {
		pluginIn = inputs
	} else {
		pluginIn = h.scratchIn
		for c := range pluginIn {
			if c < len(inputs) {
				copy(pluginIn[c][:numFrames], inputs[c][:numFrames])
			} else {
				clearF32(pluginIn[c][:numFrames])
			}
		}
	}

	if len(outputs) == h.info.NumOutputs {
		return pluginIn, outputs, false
	}
	pluginOut = h.scratchOut
	for c := range pluginOut {
		clearF32(pluginOut[c][:numFrames])
	}
	return pluginIn, pluginOut, true
}

func copyThrough(inputs, outputs [][]float32, numFrames int) {
	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	for c := 0; c < n; c++ {
		copy(outputs[c][:numFrames], inputs[c][:numFrames])
	}
}

func clearF32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// allocateChannels returns n channels of cap-frames scratch buffers,
// allocated once at Open time so Next never allocates.
func allocateChannels(n, frames int) [][]float32 {
	if n <= 0 {
		return nil
	}
	if frames <= 0 {
		frames = 1
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, frames)
	}
	return out
}
