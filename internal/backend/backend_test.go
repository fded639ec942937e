package backend

import "testing"

func testInfo() *Info {
	return &Info{
		Path:          "/plugins/test.vst",
		Name:          "Test Synth",
		Kind:          KindV2,
		NumInputs:     2,
		NumOutputs:    2,
		NumParameters: 4,
		NumPrograms:   2,
		Capabilities:  Capabilities{HasEditor: true, SinglePrecision: true},
		Parameters: []ParamInfo{
			{ID: 0, Name: "Gain", Label: "dB"},
			{ID: 1, Name: "Cutoff", Label: "Hz"},
			{ID: 2, Name: "Resonance", Label: ""},
			{ID: 3, Name: "Mix", Label: "%"},
		},
	}
}

func TestFakeSetGetParameter(t *testing.T) {
	f := NewFake(testInfo())

	if err := f.SetParameter(1, 0.5); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	v, err := f.GetParameter(1)
	if err != nil {
		t.Fatalf("GetParameter: %v", err)
	}
	if v != 0.5 {
		t.Errorf("GetParameter(1) = %v, want 0.5", v)
	}
}

func TestFakeSetParameterOutOfRange(t *testing.T) {
	f := NewFake(testInfo())
	if err := f.SetParameter(99, 0.1); err == nil {
		t.Error("expected error for out-of-range parameter index")
	}
}

func TestFakeEditorRequiresCapability(t *testing.T) {
	info := testInfo()
	info.Capabilities.HasEditor = false
	f := NewFake(info)
	if err := f.EditorOpen(0); err == nil {
		t.Error("expected error opening editor on a plugin without one")
	}
}

func TestFakeProgramChunkRoundTrip(t *testing.T) {
	f := NewFake(testInfo())
	want := []byte{1, 2, 3, 4, 5}
	if err := f.SetProgramChunkData(want); err != nil {
		t.Fatalf("SetProgramChunkData: %v", err)
	}
	got, err := f.ProgramChunkData()
	if err != nil {
		t.Fatalf("ProgramChunkData: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("chunk length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

type listenerSpy struct {
	params []float32
}

func (l *listenerSpy) ParameterAutomated(index int32, value float32) {
	l.params = append(l.params, value)
}
func (l *listenerSpy) MIDIEvent(status, d1, d2 byte, deltaFrames int32) {}
func (l *listenerSpy) SysexEvent(data []byte, deltaFrames int32)       {}

func TestFakeEmitParameterAutomated(t *testing.T) {
	f := NewFake(testInfo())
	spy := &listenerSpy{}
	f.SetListener(spy)
	f.EmitParameterAutomated(2, 0.75)
	if len(spy.params) != 1 || spy.params[0] != 0.75 {
		t.Errorf("listener did not observe automation: %+v", spy.params)
	}
}
