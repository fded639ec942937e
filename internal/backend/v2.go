package backend

import "fmt"

// NativeV2 is the minimal dispatcher/process surface a VST2-style native
// module exposes. The actual ABI (effect struct, opcode dispatch, process
// replacing callback) lives outside this module; NativeV2 is the seam a
// real cgo bridge would implement.
type NativeV2 interface {
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
	GetParameter(index int32) (float32, error)
	ParameterName(index int32) string
	ParameterLabel(index int32) string
	ParameterDisplay(index int32) string

	SetProgram(index int32) error
	Program() int32
	ProgramName() string
	ProgramNameIndexed(index int32) string
	SetProgramName(name string) error

	ChunkData(isBank bool) ([]byte, error)
	SetChunkData(isBank bool, data []byte) error

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

// V2 adapts a NativeV2 handle to the Backend interface.
type V2 struct {
	info *Info
	h    NativeV2
}

// NewV2 wraps a native V2 handle. info.Kind must be KindV2.
func NewV2(info *Info, h NativeV2) *V2 {
	return &V2{info: info, h: h}
}

func (b *V2) Kind() Kind  { return KindV2 }
func (b *V2) Info() *Info { return b.info }

func (b *V2) Destroy() error { return b.h.Destroy() }

func (b *V2) SetSampleRate(hz float64) error   { return b.h.SetSampleRate(hz) }
func (b *V2) SetBlockSize(frames int) error    { return b.h.SetBlockSize(frames) }
func (b *V2) SetPrecision(double bool) error   { return b.h.SetPrecision(double) }
func (b *V2) HasPrecision(double bool) bool    { return b.h.HasPrecision(double) }

func (b *V2) Suspend() error { return b.h.Suspend() }
func (b *V2) Resume() error  { return b.h.Resume() }

func (b *V2) Process(in, out [][]float32, n int) error       { return b.h.Process(in, out, n) }
func (b *V2) ProcessDouble(in, out [][]float64, n int) error { return b.h.ProcessDouble(in, out, n) }

func (b *V2) SetParameter(i int32, v float32) error { return b.h.SetParameter(i, v) }

// SetParameterString is not part of the V2 dispatcher surface; V2 plugins
// only accept normalized float values. Callers get a clear rejection rather
// than a silent no-op.
func (b *V2) SetParameterString(i int32, display string) error {
	return fmt.Errorf("backend: v2 plugins do not accept string parameter values (index %d)", i)
}
func (b *V2) GetParameter(i int32) (float32, error) { return b.h.GetParameter(i) }
func (b *V2) ParameterName(i int32) string          { return b.h.ParameterName(i) }
func (b *V2) ParameterLabel(i int32) string         { return b.h.ParameterLabel(i) }
func (b *V2) ParameterDisplay(i int32) string       { return b.h.ParameterDisplay(i) }

func (b *V2) SetProgram(i int32) error           { return b.h.SetProgram(i) }
func (b *V2) Program() int32                     { return b.h.Program() }
func (b *V2) ProgramName() string                { return b.h.ProgramName() }
func (b *V2) ProgramNameIndexed(i int32) string   { return b.h.ProgramNameIndexed(i) }
func (b *V2) SetProgramName(name string) error   { return b.h.SetProgramName(name) }

func (b *V2) ProgramChunkData() ([]byte, error)       { return b.h.ChunkData(false) }
func (b *V2) SetProgramChunkData(data []byte) error   { return b.h.SetChunkData(false, data) }
func (b *V2) BankChunkData() ([]byte, error)          { return b.h.ChunkData(true) }
func (b *V2) SetBankChunkData(data []byte) error      { return b.h.SetChunkData(true, data) }

func (b *V2) SendMIDI(status, d1, d2 byte) error { return b.h.SendMIDI(status, d1, d2) }
func (b *V2) SendSysex(data []byte) error        { return b.h.SendSysex(data) }

func (b *V2) SetTempoBPM(bpm float64) error                 { return b.h.SetTempoBPM(bpm) }
func (b *V2) SetTimeSignature(num, den int32) error         { return b.h.SetTimeSignature(num, den) }
func (b *V2) SetTransportPlaying(playing bool) error        { return b.h.SetTransportPlaying(playing) }
func (b *V2) SetTransportPosition(beats float64) error      { return b.h.SetTransportPosition(beats) }
func (b *V2) TransportPosition() (float64, error)           { return b.h.TransportPosition() }

func (b *V2) CanDo(key string) int32 { return b.h.CanDo(key) }
func (b *V2) VendorSpecific(index, value int32, ptr []byte, opt float32) int32 {
	return b.h.VendorSpecific(index, value, ptr, opt)
}

func (b *V2) EditorOpen(parent uintptr) error { return b.h.EditorOpen(parent) }
func (b *V2) EditorClose() error              { return b.h.EditorClose() }
func (b *V2) EditorRect() Rect                { return b.h.EditorRect() }

func (b *V2) SetListener(l Listener) { b.h.SetListener(l) }

var _ Backend = (*V2)(nil)
