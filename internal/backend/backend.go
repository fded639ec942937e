// Package backend defines the capability set exposed by a loaded plugin
// module. The plugin ABIs themselves (VST2-style dispatcher/process
// pointers, VST3-style component/controller/processor objects) are external
// collaborators: this package only pins down the polymorphic surface the
// host drives them through, plus a V2/V3 adapter pair and an in-memory fake
// used by tests in place of real native modules.
package backend

import (
	"fmt"
)

// Kind identifies which plugin ABI a Backend was negotiated against.
type Kind int

const (
	KindV2 Kind = iota
	KindV3
)

func (k Kind) String() string {
	switch k {
	case KindV2:
		return "v2"
	case KindV3:
		return "v3"
	default:
		return fmt.Sprintf("backend.Kind(%d)", int(k))
	}
}

// UniqueID is a plugin identity: 32 bits for V2, 128 bits (16 bytes) for V3.
// V2 ids are stored in the low 4 bytes; the rest is zero.
type UniqueID [16]byte

// ParamInfo describes one plugin parameter, ordered as declared by the
// plugin at probe time.
type ParamInfo struct {
	ID    int32
	Name  string
	Label string
}

// Capabilities are the boolean flags PluginInfo carries.
type Capabilities struct {
	HasEditor        bool
	IsSynth          bool
	SinglePrecision  bool
	DoublePrecision  bool
	MidiInput        bool
	MidiOutput       bool
	SysexInput       bool
	SysexOutput      bool
	HasChunkData     bool
}

// Info is the immutable-after-probe description of a plugin module (§3
// PluginInfo). Probing itself is out of scope; Info is produced by an
// external probe step and consumed read-only by the host.
type Info struct {
	Path           string
	Name           string
	Vendor         string
	Category       string
	Version        string
	Kind           Kind
	UniqueID       UniqueID
	NumInputs      int
	NumOutputs     int
	NumParameters  int
	NumPrograms    int
	Capabilities   Capabilities
	Parameters     []ParamInfo
	ProgramNames   []string
}

// Rect describes an editor window's requested geometry in pixels.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Listener receives plugin-originated callbacks. A Backend implementation
// must never assume which goroutine/thread invokes these methods; routing
// calls to the correct thread is the Listener Adapter's job (host package),
// not the Backend's.
type Listener interface {
	ParameterAutomated(index int32, value float32)
	MIDIEvent(status, data1, data2 byte, deltaFrames int32)
	SysexEvent(data []byte, deltaFrames int32)
}

// Backend is the uniform capability set consumed from an external plugin
// module (spec.md §6). Both the V2 and V3 adapters implement it; the host
// branches on Info().Kind only to choose the preset format (FXP/FXB for V2,
// the chunk-list container for V3).
type Backend interface {
	Kind() Kind
	Info() *Info

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

	ProgramChunkData() ([]byte, error)
	SetProgramChunkData(data []byte) error
	BankChunkData() ([]byte, error)
	SetBankChunkData(data []byte) error

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

// SplitState is implemented by backends that keep V3 component state and
// controller state as two distinct blobs rather than collapsing both into
// ProgramChunkData/BankChunkData. The host type-asserts for this when
// writing a V3 preset container so it can emit both `'Comp'` and `'Cont'`
// chunks; backends that don't implement it fall back to ProgramChunkData
// alone.
type SplitState interface {
	ComponentState() ([]byte, error)
	SetComponentState(data []byte) error
	ControllerState() ([]byte, error)
	SetControllerState(data []byte) error
}
