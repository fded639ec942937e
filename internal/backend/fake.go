package backend

import "sync"

// Fake is an in-process Backend implementation used by tests in place of a
// real native plugin module, mirroring the small hand-rolled test-seam
// interfaces (paStream, opusEncoder) the teacher repo uses to exercise its
// audio engine without real hardware.
type Fake struct {
	mu sync.Mutex

	info *Info

	sampleRate float64
	blockSize  int
	precision  map[bool]bool
	suspended  bool

	params   []float32
	displays []string
	program  int32
	progName []string

	componentState  []byte
	controllerState []byte

	transportPlaying bool
	transportPos     float64
	tempo            float64
	tsNum, tsDen     int32

	listener Listener

	editorOpen bool
	editorRect Rect

	lastMIDI  [3]byte
	lastSysex []byte

	// ProcessFunc, if set, is invoked by Process instead of the default
	// passthrough; ProcessDouble always passes through. Lets tests observe exactly what the host
	// fed the backend on a given block.
	ProcessFunc func(inputs, outputs [][]float32, numFrames int)
}

// NewFake returns a Fake backend with info.NumParameters parameters, all
// zeroed, and info.NumPrograms programs (at least one), each named "Init".
func NewFake(info *Info) *Fake {
	n := info.NumParameters
	progs := info.NumPrograms
	if progs == 0 {
		progs = 1
	}
	names := make([]string, progs)
	for i := range names {
		names[i] = "Init"
	}
	return &Fake{
		info:      info,
		params:    make([]float32, n),
		displays:  make([]string, n),
		progName:  names,
		precision: map[bool]bool{false: true, true: info.Capabilities.DoublePrecision},
	}
}

func (f *Fake) Kind() Kind  { return f.info.Kind }
func (f *Fake) Info() *Info { return f.info }

func (f *Fake) Destroy() error { return nil }

func (f *Fake) SetSampleRate(hz float64) error { f.mu.Lock(); defer f.mu.Unlock(); f.sampleRate = hz; return nil }
func (f *Fake) SetBlockSize(n int) error       { f.mu.Lock(); defer f.mu.Unlock(); f.blockSize = n; return nil }
func (f *Fake) SetPrecision(double bool) error { return nil }
func (f *Fake) HasPrecision(double bool) bool  { return f.precision[double] }

func (f *Fake) Suspend() error { f.mu.Lock(); defer f.mu.Unlock(); f.suspended = true; return nil }
func (f *Fake) Resume() error  { f.mu.Lock(); defer f.mu.Unlock(); f.suspended = false; return nil }

// Process copies input to output (identity) unless ProcessFunc is set.
func (f *Fake) Process(inputs, outputs [][]float32, numFrames int) error {
	if f.ProcessFunc != nil {
		f.ProcessFunc(inputs, outputs, numFrames)
		return nil
	}
	for ch := range outputs {
		if ch < len(inputs) {
			copy(outputs[ch][:numFrames], inputs[ch][:numFrames])
		}
	}
	return nil
}

func (f *Fake) ProcessDouble(inputs, outputs [][]float64, numFrames int) error {
	for ch := range outputs {
		if ch < len(inputs) {
			copy(outputs[ch][:numFrames], inputs[ch][:numFrames])
		}
	}
	return nil
}

func (f *Fake) SetParameter(i int32, v float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(i) < 0 || int(i) >= len(f.params) {
		return errOutOfRange
	}
	f.params[i] = v
	return nil
}

func (f *Fake) SetParameterString(i int32, display string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(i) < 0 || int(i) >= len(f.displays) {
		return errOutOfRange
	}
	f.displays[i] = display
	return nil
}

func (f *Fake) GetParameter(i int32) (float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(i) < 0 || int(i) >= len(f.params) {
		return 0, errOutOfRange
	}
	return f.params[i], nil
}

func (f *Fake) ParameterName(i int32) string {
	if int(i) < 0 || int(i) >= len(f.info.Parameters) {
		return ""
	}
	return f.info.Parameters[i].Name
}

func (f *Fake) ParameterLabel(i int32) string {
	if int(i) < 0 || int(i) >= len(f.info.Parameters) {
		return ""
	}
	return f.info.Parameters[i].Label
}

func (f *Fake) ParameterDisplay(i int32) string {
	v, err := f.GetParameter(i)
	if err != nil {
		return ""
	}
	return formatFloat(v)
}

func (f *Fake) SetProgram(i int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(i) < 0 || int(i) >= len(f.progName) {
		return errOutOfRange
	}
	f.program = i
	return nil
}
func (f *Fake) Program() int32 { f.mu.Lock(); defer f.mu.Unlock(); return f.program }
func (f *Fake) ProgramName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progName[f.program]
}
func (f *Fake) ProgramNameIndexed(i int32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(i) < 0 || int(i) >= len(f.progName) {
		return ""
	}
	return f.progName[i]
}
func (f *Fake) SetProgramName(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progName[f.program] = name
	return nil
}

func (f *Fake) ProgramChunkData() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.componentState))
	copy(out, f.componentState)
	return out, nil
}
func (f *Fake) SetProgramChunkData(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.componentState = append([]byte(nil), data...)
	return nil
}
func (f *Fake) BankChunkData() ([]byte, error)     { return f.ProgramChunkData() }
func (f *Fake) SetBankChunkData(data []byte) error { return f.SetProgramChunkData(data) }

func (f *Fake) ComponentState() ([]byte, error)     { return f.ProgramChunkData() }
func (f *Fake) SetComponentState(data []byte) error { return f.SetProgramChunkData(data) }
func (f *Fake) ControllerState() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.controllerState))
	copy(out, f.controllerState)
	return out, nil
}
func (f *Fake) SetControllerState(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controllerState = append([]byte(nil), data...)
	return nil
}

func (f *Fake) SendMIDI(status, d1, d2 byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMIDI = [3]byte{status, d1, d2}
	return nil
}
func (f *Fake) SendSysex(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSysex = append([]byte(nil), data...)
	return nil
}

func (f *Fake) SetTempoBPM(bpm float64) error { f.mu.Lock(); defer f.mu.Unlock(); f.tempo = bpm; return nil }
func (f *Fake) SetTimeSignature(num, den int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tsNum, f.tsDen = num, den
	return nil
}
func (f *Fake) SetTransportPlaying(playing bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transportPlaying = playing
	return nil
}
func (f *Fake) SetTransportPosition(beats float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transportPos = beats
	return nil
}
func (f *Fake) TransportPosition() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transportPos, nil
}

func (f *Fake) CanDo(key string) int32 { return 0 }
func (f *Fake) VendorSpecific(index, value int32, ptr []byte, opt float32) int32 { return 0 }

func (f *Fake) EditorOpen(parent uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.info.Capabilities.HasEditor {
		return errNoEditor
	}
	f.editorOpen = true
	return nil
}
func (f *Fake) EditorClose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editorOpen = false
	return nil
}
func (f *Fake) EditorRect() Rect { return f.editorRect }

func (f *Fake) SetListener(l Listener) { f.mu.Lock(); defer f.mu.Unlock(); f.listener = l }

// EmitParameterAutomated lets tests simulate a plugin-originated automation
// callback on whatever goroutine calls it.
func (f *Fake) EmitParameterAutomated(index int32, value float32) {
	f.mu.Lock()
	l := f.listener
	f.mu.Unlock()
	if l != nil {
		l.ParameterAutomated(index, value)
	}
}

// EmitMIDI lets tests simulate a plugin-originated MIDI callback.
func (f *Fake) EmitMIDI(status, d1, d2 byte, deltaFrames int32) {
	f.mu.Lock()
	l := f.listener
	f.mu.Unlock()
	if l != nil {
		l.MIDIEvent(status, d1, d2, deltaFrames)
	}
}

var _ Backend = (*Fake)(nil)
