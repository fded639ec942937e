package preset

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// V3 preset containers (spec.md §4.6) are a fixed header (magic, format
// version, 32-byte class id, and a list-offset field) followed by the
// component-state/controller-state blobs the header's list-offset points
// past, followed by a trailing "List" index chunk that records each blob's
// offset and size.
//
// The header's list-offset can't be known until the blobs and the index
// itself have been written, so EncodeContainer writes it as a placeholder
// and patches it in afterward — the same "write body, then index, then
// patch a header field" shape EncodeProgram uses for its byte-size field,
// grounded the same way on server/recording.go's OGG/Opus container writer.
const (
	magicVST3      = "VST3"
	magicList      = "List"
	classIDLen     = 32
	v3FormatVersion = 1

	headerSize = 4 + 4 + classIDLen + 8 // magic + version + classID + listOffset

	// EntryIDComponentState and EntryIDControllerState are the chunk ids a
	// host dispatches V3 state to: the backend component and controller
	// respectively (spec.md §4.6: "dispatches 'Comp' chunks to the backend
	// component, 'Cont' chunks to the backend controller").
	EntryIDComponentState  = "Comp"
	EntryIDControllerState = "Cont"
)

// ChunkEntry is one named, offset-addressed region of a V3 container.
type ChunkEntry struct {
	ID     string // 4 bytes, e.g. "Comp", "Cont"
	Offset int64
	Size   int64
}

// Container is a decoded V3 preset/state file: a class id plus the raw
// bytes of every chunk the trailing index named.
type Container struct {
	Version int32
	ClassID [classIDLen]byte
	Entries []ChunkEntry
	Data    []byte // the whole container; use Chunk to slice a named entry out
}

// Chunk returns the bytes of the named entry, or (nil, false) if absent.
func (c Container) Chunk(id string) ([]byte, bool) {
	for _, e := range c.Entries {
		if e.ID == id {
			return c.Data[e.Offset : e.Offset+e.Size], true
		}
	}
	return nil, false
}

// EncodeContainer writes classID plus the named chunks (in the given
// order) as a V3 container. Chunk ids are dispatched by the caller (the
// host routes `'Comp'` to the backend component and `'Cont'` to the
// controller, per spec.md §4.6); this function just lays out bytes.
func EncodeContainer(classID [classIDLen]byte, chunks []ChunkEntry, payloads map[string][]byte) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(magicVST3)
	binary.Write(&out, binary.BigEndian, int32(v3FormatVersion))
	out.Write(classID[:])
	listOffsetFieldPos := out.Len()
	binary.Write(&out, binary.BigEndian, int64(0)) // patched below

	resolved := make([]ChunkEntry, 0, len(chunks))
	for _, c := range chunks {
		data, ok := payloads[c.ID]
		if !ok {
			return nil, fmt.Errorf("preset: no payload supplied for chunk %q", c.ID)
		}
		offset := int64(out.Len())
		out.Write(data)
		resolved = append(resolved, ChunkEntry{ID: c.ID, Offset: offset, Size: int64(len(data))})
	}

	listOffset := int64(out.Len())
	out.WriteString(magicList)
	binary.Write(&out, binary.BigEndian, int32(len(resolved)))
	for _, e := range resolved {
		var idBytes [4]byte
		copy(idBytes[:], e.ID)
		out.Write(idBytes[:])
		binary.Write(&out, binary.BigEndian, e.Offset)
		binary.Write(&out, binary.BigEndian, e.Size)
	}

	buf := out.Bytes()
	binary.BigEndian.PutUint64(buf[listOffsetFieldPos:listOffsetFieldPos+8], uint64(listOffset))
	return buf, nil
}

// DecodeContainer reads a V3 container written by EncodeContainer: it
// reads the header's list-offset field, jumps straight to the index, and
// only then knows where each chunk's payload lives. The caller is
// responsible for comparing ClassID against the target plugin's unique id
// (spec.md §4.6: "Reading verifies the class id equals the plugin's unique
// id") since this package has no notion of which plugin is being loaded.
func DecodeContainer(data []byte) (Container, error) {
	if len(data) < headerSize {
		return Container{}, fmt.Errorf("preset: v3 container too short (%d bytes)", len(data))
	}
	if string(data[:4]) != magicVST3 {
		return Container{}, fmt.Errorf("preset: bad v3 magic %q", data[:4])
	}
	version := int32(binary.BigEndian.Uint32(data[4:8]))

	var classID [classIDLen]byte
	copy(classID[:], data[8:8+classIDLen])

	listOffsetField := data[8+classIDLen : headerSize]
	listOffset := int64(binary.BigEndian.Uint64(listOffsetField))
	if listOffset < 0 || listOffset+4 > int64(len(data)) {
		return Container{}, fmt.Errorf("preset: v3 list-offset %d out of range", listOffset)
	}
	if string(data[listOffset:listOffset+4]) != magicList {
		return Container{}, fmt.Errorf("preset: no %q tag at declared list-offset %d", magicList, listOffset)
	}

	r := bytes.NewReader(data[listOffset+4:])
	var count int32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return Container{}, fmt.Errorf("preset: reading v3 index entry count: %w", err)
	}
	entries := make([]ChunkEntry, 0, count)
	for i := int32(0); i < count; i++ {
		var idBytes [4]byte
		var offset, size int64
		if _, err := r.Read(idBytes[:]); err != nil {
			return Container{}, fmt.Errorf("preset: v3 index entry %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &offset); err != nil {
			return Container{}, fmt.Errorf("preset: v3 index entry %d offset: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return Container{}, fmt.Errorf("preset: v3 index entry %d size: %w", i, err)
		}
		if offset < headerSize || size < 0 || offset+size > listOffset {
			return Container{}, fmt.Errorf("preset: v3 index entry %d (%s) out of range", i, trimName(idBytes[:]))
		}
		entries = append(entries, ChunkEntry{ID: trimName(idBytes[:]), Offset: offset, Size: size})
	}

	return Container{Version: version, ClassID: classID, Entries: entries, Data: data}, nil
}
