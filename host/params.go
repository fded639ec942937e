package host

import "pluginhost/internal/protocol"

// SetParam sets parameter i to v on the backend, updates the parameter
// slot, and replies `/param {index, value, display}` (spec.md §4.1
// "setParam(i, f)"). Out-of-range indices are logged and dropped, as is
// any call against an instance with no backend loaded.
func (h *Instance) SetParam(i int32, v float32) {
	if !h.requireReady("set_param") || !h.params.InRange(int(i)) {
		h.log.Warn("set_param dropped: index out of range", "index", i)
		return
	}
	if err := h.b.SetParameter(i, v); err != nil {
		h.log.Warn("set_param failed", "index", i, "error", err)
		return
	}
	h.params.SetLast(int(i), v)
	h.params.Unmap(int(i)) // explicit set invalidates any bus binding (spec.md §3(c))
	h.reply(protocol.Message{Type: protocol.ReplyParam, Index: i, Value: v, Display: h.b.ParameterDisplay(i)})
}

// SetParamString sets parameter i via the backend's string-entry form
// (e.g. a program-list or text-entry parameter).
func (h *Instance) SetParamString(i int32, s string) {
	if !h.requireReady("set_param_string") || !h.params.InRange(int(i)) {
		h.log.Warn("set_param_string dropped: index out of range", "index", i)
		return
	}
	if err := h.b.SetParameterString(i, s); err != nil {
		h.log.Warn("set_param_string failed", "index", i, "error", err)
		return
	}
	v, _ := h.b.GetParameter(i)
	h.params.SetLast(int(i), v)
	h.params.Unmap(int(i))
	h.reply(protocol.Message{Type: protocol.ReplyParam, Index: i, Value: v, Display: h.b.ParameterDisplay(i)})
}

// MapParam binds parameter i to the embedding engine's control bus, read
// every block by Next (spec.md §3(b), §4.1 "mapParam"). Pure audio-thread
// bookkeeping; no worker interaction. nChan is accepted for protocol
// completeness (the multi-channel binding width is the embedding engine's
// concern) but is not part of ParameterSlot's own state.
func (h *Instance) MapParam(i int32, bus int32, nChan int32) {
	if !h.params.InRange(int(i)) {
		h.log.Warn("map_param dropped: index out of range", "index", i)
		return
	}
	_ = nChan
	h.params.Map(int(i), int(bus))
}

// UnmapParam clears parameter i's control-bus binding.
func (h *Instance) UnmapParam(i int32) {
	if !h.params.InRange(int(i)) {
		h.log.Warn("unmap_param dropped: index out of range", "index", i)
		return
	}
	h.params.Unmap(int(i))
}

// GetParam replies `/set {value}` with parameter i's last-sent value.
func (h *Instance) GetParam(i int32) {
	if !h.params.InRange(int(i)) {
		h.log.Warn("get_param dropped: index out of range", "index", i)
		return
	}
	h.reply(protocol.Message{Type: protocol.ReplySet, Index: i, Value: h.params.Last(int(i))})
}

// GetParamN replies `/setn {count, values...}` with count consecutive
// parameters' last-sent values starting at onset.
func (h *Instance) GetParamN(onset, count int32) {
	values := make([]float32, 0, count)
	for i := onset; i < onset+count; i++ {
		if !h.params.InRange(int(i)) {
			h.log.Warn("getn_param: index out of range, truncating", "index", i)
			break
		}
		values = append(values, h.params.Last(int(i)))
	}
	h.reply(protocol.Message{Type: protocol.ReplySetN, Onset: int64(onset), Count: int32(len(values)), Values: values})
}

// QueryParams replies `/param {index, value, display}` once per parameter
// in [onset, onset+count) (spec.md §6 "param_query").
func (h *Instance) QueryParams(onset, count int32) {
	if !h.requireReady("param_query") {
		return
	}
	for i := onset; i < onset+count; i++ {
		if !h.params.InRange(int(i)) {
			h.log.Warn("param_query: index out of range, stopping", "index", i)
			return
		}
		h.reply(protocol.Message{
			Type:    protocol.ReplyParam,
			Index:   i,
			Value:   h.params.Last(int(i)),
			Display: h.b.ParameterDisplay(i),
		})
	}
}

// requireReady logs and returns false when the instance has no backend
// loaded, for the handful of operations that are meaningless without one.
func (h *Instance) requireReady(op string) bool {
	if h.b == nil {
		h.log.Warn(op + " dropped: no plugin loaded")
		return false
	}
	return true
}
