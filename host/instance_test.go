package host

import (
	"testing"
	"time"

	"pluginhost/internal/backend"
	"pluginhost/internal/protocol"
	"pluginhost/internal/window"
)

func fakeInfo() *backend.Info {
	return &backend.Info{
		Name:          "Test Plugin",
		Kind:          backend.KindV2,
		UniqueID:      backend.UniqueID{'T', 'E', 'S', 'T'},
		NumInputs:     2,
		NumOutputs:    2,
		NumParameters: 4,
		NumPrograms:   2,
		Capabilities:  backend.Capabilities{HasEditor: true},
		Parameters: []backend.ParamInfo{
			{ID: 0, Name: "Gain"}, {ID: 1, Name: "Pan"}, {ID: 2, Name: "Mix"}, {ID: 3, Name: "Tone"},
		},
	}
}

// newTestInstance returns a started Instance whose Loader always hands back
// the same backend.Fake, with a reply channel tests can drain.
func newTestInstance(t *testing.T, bridgeMode BridgeMode) (*Instance, *backend.Fake, chan protocol.Message) {
	t.Helper()
	fb := backend.NewFake(fakeInfo())
	replies := make(chan protocol.Message, 64)
	h := New(Config{
		InstanceID: "test",
		Loader: LoaderFunc(func(path string) (backend.Backend, backend.Info, error) {
			return fb, *fb.Info(), nil
		}),
		WindowBackend: window.NewFake(),
		BridgeMode:    bridgeMode,
		NumParameters: 4,
		SampleRateHz:  44100,
		BlockSize:     512,
		Reply:         func(m protocol.Message) { replies <- m },
	})
	h.Start()

	stopPump := make(chan struct{})
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopPump:
				return
			case <-ticker.C:
				h.DrainReplies()
			}
		}
	}()
	t.Cleanup(func() {
		close(stopPump)
		<-pumpDone
		h.Stop()
	})
	return h, fb, replies
}

// pumpUntil repeatedly calls DrainReplies (the engine-thread side of the
// Command return path) until cond is satisfied or the deadline passes.
func pumpUntil(t *testing.T, h *Instance, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.DrainReplies()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func expectReply(t *testing.T, replies chan protocol.Message, wantType string) protocol.Message {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-replies:
			if m.Type == wantType {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reply %q", wantType)
		}
	}
}

func TestOpenTransitionsToReady(t *testing.T) {
	h, _, replies := newTestInstance(t, BridgeModeDirect)

	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })

	msg := expectReply(t, replies, protocol.ReplyOpen)
	if !msg.OK {
		t.Fatalf("open reply OK=false")
	}
}

func TestOpenWithEditorCreatesWindow(t *testing.T) {
	h, _, replies := newTestInstance(t, BridgeModeGUIThread)

	h.Open("/fake/plugin.so", true)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })

	msg := expectReply(t, replies, protocol.ReplyOpen)
	if !msg.OK || !msg.HasEditor {
		t.Fatalf("expected open with editor, got %+v", msg)
	}
}

func TestCloseReturnsToEmpty(t *testing.T) {
	h, _, _ := newTestInstance(t, BridgeModeDirect)

	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })

	h.Close()
	pumpUntil(t, h, func() bool { return h.State() == StateEmpty })
}

func TestSetParamUpdatesBackendAndReplies(t *testing.T) {
	h, fb, replies := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })
	expectReply(t, replies, protocol.ReplyOpen)

	h.SetParam(1, 0.75)
	msg := expectReply(t, replies, protocol.ReplyParam)
	if msg.Index != 1 || msg.Value != 0.75 {
		t.Fatalf("unexpected /param reply: %+v", msg)
	}
	v, err := fb.GetParameter(1)
	if err != nil || v != 0.75 {
		t.Fatalf("backend parameter not updated: v=%v err=%v", v, err)
	}
}

func TestMapParamThenExplicitSetUnmapsBus(t *testing.T) {
	h, _, _ := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })

	h.MapParam(2, 0, 1)
	buses := []float32{0.33}
	ins := [][]float32{make([]float32, 8), make([]float32, 8)}
	outs := [][]float32{make([]float32, 8), make([]float32, 8)}
	h.Next(ins, outs, 8, buses, nil)

	if h.params.Last(2) != 0.33 {
		t.Fatalf("expected bus-mapped param to update from control bus, got %v", h.params.Last(2))
	}

	// An explicit SetParam unmaps it; a later bus value must not overwrite.
	h.SetParam(2, 0.1)
	buses[0] = 0.9
	h.Next(ins, outs, 8, buses, nil)
	if h.params.Last(2) != 0.1 {
		t.Fatalf("explicit set should have unmapped bus binding, got %v", h.params.Last(2))
	}
}

func TestBypassTransitionCopiesThrough(t *testing.T) {
	h, fb, _ := newTestInstance(t, BridgeModeDirect)
	h.Open("/fake/plugin.so", false)
	pumpUntil(t, h, func() bool { return h.State() == StateReady })

	fb.ProcessFunc = func(inputs, outputs [][]float32, numFrames int) {
		t.Fatalf("Process must not be called while bypassed")
	}

	h.SetBypass(true)
	if h.State() != StateBypassed {
		t.Fatalf("expected StateBypassed, got %v", h.State())
	}

	in := [][]float32{{1, 2, 3, 4}}
	out := [][]float32{make([]float32, 4)}
	h.Next(in, out, 4, nil, nil)
	for i, v := range out[0] {
		if v != in[0][i] {
			t.Fatalf("bypass copy-through mismatch at %d: got %v want %v", i, v, in[0][i])
		}
	}

	h.SetBypass(false)
	if h.State() != StateReady {
		t.Fatalf("expected StateReady after un-bypass, got %v", h.State())
	}
}

func TestDispatchRoutesOpenAndSetParam(t *testing.T) {
	h, _, replies := newTestInstance(t, BridgeModeDirect)

	h.Dispatch(protocol.Message{Type: protocol.CmdOpen, Path: "/fake/plugin.so"})
	pumpUntil(t, h, func() bool { return h.State() == StateReady })
	expectReply(t, replies, protocol.ReplyOpen)

	h.Dispatch(protocol.Message{Type: protocol.CmdSet, Index: 0, Value: 0.5})
	msg := expectReply(t, replies, protocol.ReplyParam)
	if msg.Index != 0 || msg.Value != 0.5 {
		t.Fatalf("unexpected dispatch /param reply: %+v", msg)
	}
}
