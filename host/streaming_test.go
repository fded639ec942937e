package host

import (
	"bytes"
	"testing"

	"pluginhost/internal/protocol"
)

func TestReceiveProgramDataStreamsInBudgetedPackets(t *testing.T) {
	h, _, replies := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })
	expectReply(t, replies, protocol.ReplyOpen)

	h.SetParam(0, 0.9)
	expectReply(t, replies, protocol.ReplyParam)

	h.ReceiveProgramData(8, false)

	var got bytes.Buffer
	var total int64 = -1
	for {
		msg := expectReply(t, replies, protocol.ReplyProgramData)
		if total == -1 {
			total = msg.Total
		}
		if msg.Onset != int64(got.Len()) {
			t.Fatalf("out-of-order packet: onset=%d have=%d", msg.Onset, got.Len())
		}
		got.Write(msg.Bytes)
		if int64(got.Len()) >= total {
			break
		}
	}
	if int64(got.Len()) != total {
		t.Fatalf("assembled %d bytes, want %d", got.Len(), total)
	}
}

func TestSendProgramDataAppliesOnceComplete(t *testing.T) {
	h, fb, replies := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })
	expectReply(t, replies, protocol.ReplyOpen)

	h.SetParam(0, 0.42)
	expectReply(t, replies, protocol.ReplyParam)

	// Capture the current program, reset the parameter, then stream the
	// captured bytes back in two chunks.
	h.ReceiveProgramData(4096, false)
	capture := expectReply(t, replies, protocol.ReplyProgramData)
	data := capture.Bytes

	h.SetParam(0, 0.0)
	expectReply(t, replies, protocol.ReplyParam)

	mid := len(data) / 2
	h.SendProgramData(int64(len(data)), 0, data[:mid], false)
	h.SendProgramData(int64(len(data)), int64(mid), data[mid:], false)

	pumpUntil(t, h, func() bool {
		v, _ := fb.GetParameter(0)
		return v == 0.42
	})
}
