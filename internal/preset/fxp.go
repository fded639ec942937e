// Package preset implements the two preset/bank binary codecs spec.md §4.5
// and §4.6 describe: a big-endian, fixed-header layout compatible with the
// classic VST2 FXP/FXB format, and a length-prefixed chunk-list layout for
// VST3 component/controller state.
//
// Both codecs are pure functions over byte slices and plain Go structs —
// they never touch a backend.Backend directly, the same separation the
// teacher keeps between server/recording.go (container format) and the
// audio pipeline that produces the samples it writes. The write side here
// follows recording.go's shape too: write the data, then an index/trailer,
// then patch any header field that depended on where the trailer landed.
package preset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// magicCcnK is the container magic shared by every FXP/FXB header ('CcnK').
const magicCcnK = 0x43636e4b

// The sub-magics spelled out explicitly for clarity (ASCII 'FxCk' etc, as
// big-endian uint32 the same way magicCcnK is).
var (
	subMagicFxCk = tag4("FxCk") // parameter-list program
	subMagicFPCh = tag4("FPCh") // chunk program
	subMagicFxBk = tag4("FxBk") // parameter-list bank
	subMagicFBCh = tag4("FBCh") // chunk bank
)

func tag4(s string) uint32 {
	if len(s) != 4 {
		panic("preset: tag must be 4 bytes")
	}
	return binary.BigEndian.Uint32([]byte(s))
}

const (
	fxpFormatVersion = 1

	programHeaderSize = 56  // through the 28-byte name field
	bankHeaderSize     = 156 // through the 124 reserved bytes
	programNameLen     = 28
	bankReservedLen     = 124
)

// Program is one FXP program: either a parameter vector or an opaque chunk,
// never both (spec.md §4.5: "Parameter list" vs "Chunk form").
type Program struct {
	PluginID      int32
	PluginVersion int32
	Name          string
	Params        []float32 // nil when Chunk is set
	Chunk         []byte    // nil when Params is set
}

// IsChunk reports which of Params/Chunk this Program carries.
func (p Program) IsChunk() bool { return p.Chunk != nil }

// EncodeProgram serializes p as an FXP byte stream.
func EncodeProgram(p Program) ([]byte, error) {
	if p.Params != nil && p.Chunk != nil {
		return nil, fmt.Errorf("preset: program has both Params and Chunk set")
	}

	var body bytes.Buffer
	var subMagic uint32
	var numParams int32

	if p.IsChunk() {
		subMagic = subMagicFPCh
		if err := binary.Write(&body, binary.BigEndian, int32(len(p.Chunk))); err != nil {
			return nil, err
		}
		body.Write(p.Chunk)
	} else {
		subMagic = subMagicFxCk
		numParams = int32(len(p.Params))
		for _, v := range p.Params {
			if err := binary.Write(&body, binary.BigEndian, v); err != nil {
				return nil, err
			}
		}
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(magicCcnK))
	byteSizeOffset := out.Len()
	binary.Write(&out, binary.BigEndian, int32(0)) // patched below
	binary.Write(&out, binary.BigEndian, subMagic)
	binary.Write(&out, binary.BigEndian, int32(fxpFormatVersion))
	binary.Write(&out, binary.BigEndian, p.PluginID)
	binary.Write(&out, binary.BigEndian, p.PluginVersion)
	binary.Write(&out, binary.BigEndian, numParams)
	out.Write(fixedName(p.Name, programNameLen))
	out.Write(body.Bytes())

	buf := out.Bytes()
	// byte-size excludes the first 8 bytes (magic + the byte-size field
	// itself), per spec.md §4.5.
	byteSize := int32(len(buf) - 8)
	binary.BigEndian.PutUint32(buf[byteSizeOffset:byteSizeOffset+4], uint32(byteSize))
	return buf, nil
}

// DecodeProgram parses an FXP byte stream. wantChunk must match whether the
// target plugin uses chunk-form presets (backend.Info.Capabilities.HasChunkData);
// a mismatch is rejected per spec.md §4.5's read invariants, rather than
// silently accepted in the wrong form.
func DecodeProgram(data []byte, wantChunk bool) (Program, error) {
	if len(data) < programHeaderSize {
		return Program{}, fmt.Errorf("preset: program data too short (%d bytes)", len(data))
	}
	r := bytes.NewReader(data)

	var magic uint32
	binary.Read(r, binary.BigEndian, &magic)
	if magic != magicCcnK {
		return Program{}, fmt.Errorf("preset: bad program magic %08x", magic)
	}

	var byteSize int32
	binary.Read(r, binary.BigEndian, &byteSize)
	if int(byteSize)+8 > len(data) {
		return Program{}, fmt.Errorf("preset: declared byte-size %d exceeds supplied data (%d bytes)", byteSize, len(data))
	}

	var subMagic uint32
	binary.Read(r, binary.BigEndian, &subMagic)
	isChunk := subMagic == subMagicFPCh
	if !isChunk && subMagic != subMagicFxCk {
		return Program{}, fmt.Errorf("preset: unrecognized program sub-magic %08x", subMagic)
	}
	if isChunk != wantChunk {
		return Program{}, fmt.Errorf("preset: program form mismatch (chunk=%v, plugin wants chunk=%v)", isChunk, wantChunk)
	}

	var version, pluginID, pluginVersion, numParams int32
	binary.Read(r, binary.BigEndian, &version)
	binary.Read(r, binary.BigEndian, &pluginID)
	binary.Read(r, binary.BigEndian, &pluginVersion)
	binary.Read(r, binary.BigEndian, &numParams)

	nameBuf := make([]byte, programNameLen)
	if _, err := r.Read(nameBuf); err != nil {
		return Program{}, fmt.Errorf("preset: reading program name: %w", err)
	}

	out := Program{PluginID: pluginID, PluginVersion: pluginVersion, Name: trimName(nameBuf)}

	rest := data[len(data)-r.Len():]
	if isChunk {
		if len(rest) < 4 {
			return Program{}, fmt.Errorf("preset: missing chunk size")
		}
		chunkSize := int32(binary.BigEndian.Uint32(rest))
		rest = rest[4:]
		if int(chunkSize) != len(rest) {
			return Program{}, fmt.Errorf("preset: chunk size %d does not match remaining body %d", chunkSize, len(rest))
		}
		out.Chunk = append([]byte(nil), rest...)
	} else {
		if int(numParams)*4 != len(rest) {
			return Program{}, fmt.Errorf("preset: parameter count %d*4 != remaining body %d", numParams, len(rest))
		}
		out.Params = make([]float32, numParams)
		for i := range out.Params {
			out.Params[i] = float32frombytes(rest[i*4 : i*4+4])
		}
	}
	return out, nil
}

func fixedName(name string, size int) []byte {
	b := make([]byte, size)
	n := copy(b, name)
	_ = n // remaining bytes already zero (null padding)
	return b
}

func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func float32frombytes(b []byte) float32 {
	bits := binary.BigEndian.Uint32(b)
	return math.Float32frombits(bits)
}
