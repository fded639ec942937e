package host

import "pluginhost/internal/protocol"

// SendProgramData accumulates a streamed preset/bank upload (spec.md §4.1
// "sendProgramData"). onset=0 starts a new upload and records total;
// subsequent calls must arrive in order. Once the buffer reaches total,
// the accumulated bytes are applied via a SetProgramData/SetBankData-
// equivalent worker command.
func (h *Instance) SendProgramData(total, onset int64, chunk []byte, isBank bool) {
	if onset == 0 {
		h.currentUpload = uploadState{active: true, isBank: isBank, total: total, buf: make([]byte, 0, total)}
	}
	if !h.currentUpload.active || h.currentUpload.isBank != isBank {
		h.log.Warn("program_data_set dropped: no matching upload in progress")
		return
	}
	if onset != int64(len(h.currentUpload.buf)) {
		h.log.Warn("program_data_set dropped: out-of-order packet",
			"want_onset", len(h.currentUpload.buf), "got_onset", onset)
		return
	}
	h.currentUpload.buf = append(h.currentUpload.buf, chunk...)
	if int64(len(h.currentUpload.buf)) < h.currentUpload.total {
		return
	}

	data := h.currentUpload.buf
	h.currentUpload = uploadState{}

	if !h.requireReady("program_data_set") {
		return
	}
	b := h.b
	info := h.info
	var applyErr error
	cmd := h.cmdQ.New("program_data_set", func() bool {
		if isBank {
			applyErr = applyBankFile(b, info, data)
		} else {
			applyErr = applyProgramFile(b, info, data)
		}
		return true
	}, func() bool {
		if applyErr != nil {
			h.log.Warn("program_data_set failed", "error", applyErr)
		}
		return true
	})
	h.cmdQ.Submit(cmd)
}

// ReceiveProgramData serializes the current program/bank on the worker
// thread, then streams it back as a sequence of `/program_data` or
// `/bank_data` replies, each carrying at most packetBudget bytes, tagged
// {total, onset, size} (spec.md §4.1 "receiveProgramData").
func (h *Instance) ReceiveProgramData(packetBudget int, isBank bool) {
	op := "program_data_get"
	replyType := protocol.ReplyProgramData
	if isBank {
		op = "bank_data_get"
		replyType = protocol.ReplyBankData
	}
	if !h.requireReady(op) {
		return
	}
	if packetBudget <= 0 {
		packetBudget = 4096
	}
	b := h.b
	info := h.info
	var data []byte
	var captureErr error
	cmd := h.cmdQ.New(op, func() bool {
		if isBank {
			data, captureErr = captureBankFile(b, info)
		} else {
			data, captureErr = captureProgramFile(b, info)
		}
		return true
	}, func() bool {
		if captureErr != nil {
			h.log.Warn(op+" failed", "error", captureErr)
			return true
		}
		total := int64(len(data))
		onset := int64(0)
		for {
			end := onset + int64(packetBudget)
			if end > total {
				end = total
			}
			h.reply(protocol.Message{
				Type:  replyType,
				Total: total,
				Onset: onset,
				Size:  end - onset,
				Bytes: data[onset:end],
			})
			if end >= total {
				break
			}
			onset = end
		}
		return true
	})
	h.cmdQ.Submit(cmd)
}
