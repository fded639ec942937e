package preset

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Bank is an FXB bank: either a list of parameter-list Programs, or a single
// opaque chunk covering the whole bank (spec.md §4.5's bank equivalents).
type Bank struct {
	PluginID       int32
	PluginVersion  int32
	CurrentProgram int32
	Programs       []Program // nil when Chunk is set
	Chunk          []byte    // nil when Programs is set
}

// IsChunk reports which of Programs/Chunk this Bank carries.
func (b Bank) IsChunk() bool { return b.Chunk != nil }

// EncodeBank serializes b as an FXB byte stream.
func EncodeBank(b Bank) ([]byte, error) {
	if b.Programs != nil && b.Chunk != nil {
		return nil, fmt.Errorf("preset: bank has both Programs and Chunk set")
	}

	var body bytes.Buffer
	var subMagic uint32
	var numPrograms int32

	if b.IsChunk() {
		subMagic = subMagicFBCh
		if err := binary.Write(&body, binary.BigEndian, int32(len(b.Chunk))); err != nil {
			return nil, err
		}
		body.Write(b.Chunk)
	} else {
		subMagic = subMagicFxBk
		numPrograms = int32(len(b.Programs))
		for i, p := range b.Programs {
			if p.IsChunk() {
				return nil, fmt.Errorf("preset: bank program %d is chunk-form; parameter-list banks require parameter-list programs", i)
			}
			pbuf, err := EncodeProgram(p)
			if err != nil {
				return nil, fmt.Errorf("preset: encoding bank program %d: %w", i, err)
			}
			body.Write(pbuf)
		}
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(magicCcnK))
	byteSizeOffset := out.Len()
	binary.Write(&out, binary.BigEndian, int32(0)) // patched below
	binary.Write(&out, binary.BigEndian, subMagic)
	binary.Write(&out, binary.BigEndian, int32(fxpFormatVersion))
	binary.Write(&out, binary.BigEndian, b.PluginID)
	binary.Write(&out, binary.BigEndian, b.PluginVersion)
	binary.Write(&out, binary.BigEndian, numPrograms)
	binary.Write(&out, binary.BigEndian, b.CurrentProgram)
	out.Write(make([]byte, bankReservedLen))
	out.Write(body.Bytes())

	buf := out.Bytes()
	byteSize := int32(len(buf) - 8)
	binary.BigEndian.PutUint32(buf[byteSizeOffset:byteSizeOffset+4], uint32(byteSize))
	return buf, nil
}

// DecodeBank parses an FXB byte stream. wantChunk has the same meaning as in
// DecodeProgram.
func DecodeBank(data []byte, wantChunk bool) (Bank, error) {
	if len(data) < bankHeaderSize {
		return Bank{}, fmt.Errorf("preset: bank data too short (%d bytes)", len(data))
	}
	r := bytes.NewReader(data)

	var magic uint32
	binary.Read(r, binary.BigEndian, &magic)
	if magic != magicCcnK {
		return Bank{}, fmt.Errorf("preset: bad bank magic %08x", magic)
	}

	var byteSize int32
	binary.Read(r, binary.BigEndian, &byteSize)
	if int(byteSize)+8 > len(data) {
		return Bank{}, fmt.Errorf("preset: declared byte-size %d exceeds supplied data (%d bytes)", byteSize, len(data))
	}

	var subMagic uint32
	binary.Read(r, binary.BigEndian, &subMagic)
	isChunk := subMagic == subMagicFBCh
	if !isChunk && subMagic != subMagicFxBk {
		return Bank{}, fmt.Errorf("preset: unrecognized bank sub-magic %08x", subMagic)
	}
	if isChunk != wantChunk {
		return Bank{}, fmt.Errorf("preset: bank form mismatch (chunk=%v, plugin wants chunk=%v)", isChunk, wantChunk)
	}

	var version, pluginID, pluginVersion, numPrograms, currentProgram int32
	binary.Read(r, binary.BigEndian, &version)
	binary.Read(r, binary.BigEndian, &pluginID)
	binary.Read(r, binary.BigEndian, &pluginVersion)
	binary.Read(r, binary.BigEndian, &numPrograms)
	binary.Read(r, binary.BigEndian, &currentProgram)

	reserved := make([]byte, bankReservedLen)
	if _, err := r.Read(reserved); err != nil {
		return Bank{}, fmt.Errorf("preset: reading bank reserved field: %w", err)
	}

	out := Bank{PluginID: pluginID, PluginVersion: pluginVersion, CurrentProgram: currentProgram}
	rest := data[len(data)-r.Len():]

	if isChunk {
		if len(rest) < 4 {
			return Bank{}, fmt.Errorf("preset: missing bank chunk size")
		}
		chunkSize := int32(binary.BigEndian.Uint32(rest))
		rest = rest[4:]
		if int(chunkSize) != len(rest) {
			return Bank{}, fmt.Errorf("preset: bank chunk size %d does not match remaining body %d", chunkSize, len(rest))
		}
		out.Chunk = append([]byte(nil), rest...)
		return out, nil
	}

	out.Programs = make([]Program, 0, numPrograms)
	for i := int32(0); i < numPrograms; i++ {
		if len(rest) < 8 {
			return Bank{}, fmt.Errorf("preset: bank program %d: truncated before header", i)
		}
		progByteSize := int32(binary.BigEndian.Uint32(rest[4:8]))
		total := int(progByteSize) + 8
		if total > len(rest) {
			return Bank{}, fmt.Errorf("preset: bank program %d: declared size %d exceeds remaining bank data", i, progByteSize)
		}
		p, err := DecodeProgram(rest[:total], false)
		if err != nil {
			return Bank{}, fmt.Errorf("preset: bank program %d: %w", i, err)
		}
		out.Programs = append(out.Programs, p)
		rest = rest[total:]
	}
	if len(rest) != 0 {
		return Bank{}, fmt.Errorf("preset: %d trailing bytes after %d bank programs", len(rest), numPrograms)
	}
	return out, nil
}
