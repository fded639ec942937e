package host

import "pluginhost/internal/protocol"

// SendMIDI, SendSysex, SetTempo, SetTimeSig, SetTransportPlaying,
// SetTransportPos, GetTransportPos, CanDo, and VendorSpecific all pass
// straight through to the backend on the calling (audio) thread — every
// one of them is documented RT-safe in the backend contract (spec.md §4.1,
// §6 "Backend capability set").

func (h *Instance) SendMIDI(status, data1, data2 byte) {
	if !h.requireReady("send_midi") {
		return
	}
	if err := h.b.SendMIDI(status, data1, data2); err != nil {
		h.log.Warn("send_midi failed", "error", err)
	}
}

func (h *Instance) SendSysex(data []byte) {
	if !h.requireReady("send_sysex") {
		return
	}
	if err := h.b.SendSysex(data); err != nil {
		h.log.Warn("send_sysex failed", "error", err)
	}
}

func (h *Instance) SetTempo(bpm float64) {
	if !h.requireReady("set_tempo") {
		return
	}
	if err := h.b.SetTempoBPM(bpm); err != nil {
		h.log.Warn("set_tempo failed", "error", err)
	}
}

func (h *Instance) SetTimeSig(numerator, denominator int32) {
	if !h.requireReady("set_time_sig") {
		return
	}
	if err := h.b.SetTimeSignature(numerator, denominator); err != nil {
		h.log.Warn("set_time_sig failed", "error", err)
	}
}

func (h *Instance) SetTransportPlaying(playing bool) {
	if !h.requireReady("set_transport_playing") {
		return
	}
	if err := h.b.SetTransportPlaying(playing); err != nil {
		h.log.Warn("set_transport_playing failed", "error", err)
	}
}

func (h *Instance) SetTransportPos(beats float64) {
	if !h.requireReady("set_transport_pos") {
		return
	}
	if err := h.b.SetTransportPosition(beats); err != nil {
		h.log.Warn("set_transport_pos failed", "error", err)
	}
}

func (h *Instance) GetTransportPos() {
	if !h.requireReady("get_transport_pos") {
		return
	}
	pos, err := h.b.TransportPosition()
	if err != nil {
		h.log.Warn("get_transport_pos failed", "error", err)
		return
	}
	h.reply(protocol.Message{Type: protocol.ReplyTransport, Position: pos})
}

func (h *Instance) CanDo(key string) {
	if !h.requireReady("can_do") {
		return
	}
	h.reply(protocol.Message{Type: protocol.ReplyCanDo, CanDoString: key, Result: h.b.CanDo(key)})
}

func (h *Instance) VendorSpecific(index, value int32, ptr []byte, opt float32) {
	if !h.requireReady("vendor_method") {
		return
	}
	result := h.b.VendorSpecific(index, value, ptr, opt)
	h.reply(protocol.Message{Type: protocol.ReplyVendorMethod, VendorIndex: index, VendorValue: value, Result: result})
}
