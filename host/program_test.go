package host

import (
	"os"
	"path/filepath"
	"testing"

	"pluginhost/internal/protocol"
)

func TestWriteProgramThenReadProgramRoundTrips(t *testing.T) {
	h, fb, replies := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })
	expectReply(t, replies, protocol.ReplyOpen)

	h.SetParam(0, 0.25)
	h.SetParam(1, 0.5)
	expectReply(t, replies, protocol.ReplyParam)
	expectReply(t, replies, protocol.ReplyParam)

	path := filepath.Join(t.TempDir(), "preset.fxp")
	h.WriteProgram(path)
	pumpUntil(t, h, func() bool {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		return false
	})
	msg := expectReply(t, replies, protocol.ReplyProgramWrite)
	if !msg.OK {
		t.Fatalf("program write failed: %+v", msg)
	}

	// Change parameters, then read the saved preset back.
	h.SetParam(0, 0.0)
	h.SetParam(1, 0.0)
	expectReply(t, replies, protocol.ReplyParam)
	expectReply(t, replies, protocol.ReplyParam)

	h.ReadProgram(path)
	readMsg := expectReply(t, replies, protocol.ReplyProgramRead)
	if !readMsg.OK {
		t.Fatalf("program read failed: %+v", readMsg)
	}
	expectReply(t, replies, protocol.ReplyProgramName)

	v0, _ := fb.GetParameter(0)
	v1, _ := fb.GetParameter(1)
	if v0 != 0.25 || v1 != 0.5 {
		t.Fatalf("preset round-trip mismatch: v0=%v v1=%v", v0, v1)
	}
}

func TestWriteBankRestoresOriginalProgram(t *testing.T) {
	h, fb, replies := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })
	expectReply(t, replies, protocol.ReplyOpen)

	h.SetProgram(1)
	expectReply(t, replies, protocol.ReplyProgramIndex)
	expectReply(t, replies, protocol.ReplyProgramName)

	path := filepath.Join(t.TempDir(), "bank.fxb")
	h.WriteBank(path)
	pumpUntil(t, h, func() bool {
		_, err := os.Stat(path)
		return err == nil
	})
	msg := expectReply(t, replies, protocol.ReplyBankWrite)
	if !msg.OK {
		t.Fatalf("bank write failed: %+v", msg)
	}
	if fb.Program() != 1 {
		t.Fatalf("expected original program restored to 1, got %d", fb.Program())
	}
}
