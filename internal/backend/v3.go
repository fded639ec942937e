package backend

// NativeV3 is the minimal component/controller/processor surface a VST3-
// style native module exposes. Real VST3 hosts juggle three COM-style
// interfaces (IComponent, IEditController, IAudioProcessor); NativeV3
// collapses them to the calls the host actually drives, leaving the COM
// lifetime/threading rules to the out-of-scope native bridge.
type NativeV3 interface {
	Destroy() error

	SetSampleRate(hz float64) error
	SetBlockSize(frames int) error
	SetPrecision(double bool) error
	HasPrecision(double bool) bool

	Suspend() error
	Resume() error

	Process(inputs, outputs [][]float32, numFrames int) error
	ProcessDouble(inputs, outputs [][]float64, numFrames int) error

	SetParameter(index int32, value float32) error
	SetParameterString(index int32, display string) error
	GetParameter(index int32) (float32, error)
	ParameterName(index int32) string
	ParameterLabel(index int32) string
	ParameterDisplay(index int32) string

	SetProgram(index int32) error
	Program() int32
	ProgramName() string
	ProgramNameIndexed(index int32) string
	SetProgramName(name string) error

	// ComponentState and ControllerState round-trip the two independent
	// state streams a VST3 plugin exposes (§4.6: 'Comp' and 'Cont' chunks).
	ComponentState() ([]byte, error)
	SetComponentState(data []byte) error
	ControllerState() ([]byte, error)
	SetControllerState(data []byte) error

	SendMIDI(status, data1, data2 byte) error
	SendSysex(data []byte) error

	SetTempoBPM(bpm float64) error
	SetTimeSignature(numerator, denominator int32) error
	SetTransportPlaying(playing bool) error
	SetTransportPosition(beats float64) error
	TransportPosition() (float64, error)

	CanDo(key string) int32
	VendorSpecific(index int32, value int32, ptr []byte, opt float32) int32

	EditorOpen(parent uintptr) error
	EditorClose() error
	EditorRect() Rect

	SetListener(l Listener)
}

// V3 adapts a NativeV3 handle to the Backend interface. Unlike V2, V3 has
// no single "chunk" blob: program/bank data is the component+controller
// state pair, serialized by internal/preset's V3 codec, not by the
// Backend itself.
type V3 struct {
	info *Info
	h    NativeV3
}

// NewV3 wraps a native V3 handle. info.Kind must be KindV3.
func NewV3(info *Info, h NativeV3) *V3 {
	return &V3{info: info, h: h}
}

func (b *V3) Kind() Kind  { return KindV3 }
func (b *V3) Info() *Info { return b.info }

func (b *V3) Destroy() error { return b.h.Destroy() }

func (b *V3) SetSampleRate(hz float64) error { return b.h.SetSampleRate(hz) }
func (b *V3) SetBlockSize(frames int) error  { return b.h.SetBlockSize(frames) }
func (b *V3) SetPrecision(double bool) error { return b.h.SetPrecision(double) }
func (b *V3) HasPrecision(double bool) bool  { return b.h.HasPrecision(double) }

func (b *V3) Suspend() error { return b.h.Suspend() }
func (b *V3) Resume() error  { return b.h.Resume() }

func (b *V3) Process(in, out [][]float32, n int) error       { return b.h.Process(in, out, n) }
func (b *V3) ProcessDouble(in, out [][]float64, n int) error { return b.h.ProcessDouble(in, out, n) }

func (b *V3) SetParameter(i int32, v float32) error             { return b.h.SetParameter(i, v) }
func (b *V3) SetParameterString(i int32, display string) error { return b.h.SetParameterString(i, display) }
func (b *V3) GetParameter(i int32) (float32, error)             { return b.h.GetParameter(i) }
func (b *V3) ParameterName(i int32) string                      { return b.h.ParameterName(i) }
func (b *V3) ParameterLabel(i int32) string                     { return b.h.ParameterLabel(i) }
func (b *V3) ParameterDisplay(i int32) string                   { return b.h.ParameterDisplay(i) }

func (b *V3) SetProgram(i int32) error         { return b.h.SetProgram(i) }
func (b *V3) Program() int32                   { return b.h.Program() }
func (b *V3) ProgramName() string              { return b.h.ProgramName() }
func (b *V3) ProgramNameIndexed(i int32) string { return b.h.ProgramNameIndexed(i) }
func (b *V3) SetProgramName(name string) error { return b.h.SetProgramName(name) }

// ProgramChunkData/BankChunkData are not meaningful for V3 in isolation —
// host/program.go reads both ComponentState and ControllerState directly
// (via SplitState) and hands them to internal/preset's V3 codec. These exist only to satisfy Backend for code
// that doesn't care about the Kind; they report component state.
func (b *V3) ProgramChunkData() ([]byte, error)     { return b.h.ComponentState() }
func (b *V3) SetProgramChunkData(data []byte) error { return b.h.SetComponentState(data) }
func (b *V3) BankChunkData() ([]byte, error)        { return b.h.ComponentState() }
func (b *V3) SetBankChunkData(data []byte) error    { return b.h.SetComponentState(data) }

// ComponentState and ControllerState expose the two independent V3 state
// streams directly, for the host to compose into internal/preset's
// chunk-list layout (§4.6).
func (b *V3) ComponentState() ([]byte, error)      { return b.h.ComponentState() }
func (b *V3) SetComponentState(data []byte) error  { return b.h.SetComponentState(data) }
func (b *V3) ControllerState() ([]byte, error)     { return b.h.ControllerState() }
func (b *V3) SetControllerState(data []byte) error { return b.h.SetControllerState(data) }

func (b *V3) SendMIDI(status, d1, d2 byte) error { return b.h.SendMIDI(status, d1, d2) }
func (b *V3) SendSysex(data []byte) error        { return b.h.SendSysex(data) }

func (b *V3) SetTempoBPM(bpm float64) error            { return b.h.SetTempoBPM(bpm) }
func (b *V3) SetTimeSignature(num, den int32) error    { return b.h.SetTimeSignature(num, den) }
func (b *V3) SetTransportPlaying(playing bool) error   { return b.h.SetTransportPlaying(playing) }
func (b *V3) SetTransportPosition(beats float64) error { return b.h.SetTransportPosition(beats) }
func (b *V3) TransportPosition() (float64, error)      { return b.h.TransportPosition() }

func (b *V3) CanDo(key string) int32 { return b.h.CanDo(key) }
func (b *V3) VendorSpecific(index, value int32, ptr []byte, opt float32) int32 {
	return b.h.VendorSpecific(index, value, ptr, opt)
}

func (b *V3) EditorOpen(parent uintptr) error { return b.h.EditorOpen(parent) }
func (b *V3) EditorClose() error              { return b.h.EditorClose() }
func (b *V3) EditorRect() Rect                { return b.h.EditorRect() }

func (b *V3) SetListener(l Listener) { b.h.SetListener(l) }

var _ Backend = (*V3)(nil)
