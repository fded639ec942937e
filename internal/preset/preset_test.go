package preset

import (
	"bytes"
	"testing"
)

func TestProgramParamRoundTrip(t *testing.T) {
	p := Program{
		PluginID:      1234,
		PluginVersion: 1,
		Name:          "Lead Patch",
		Params:        []float32{0, 0.25, 0.5, 1},
	}
	buf, err := EncodeProgram(p)
	if err != nil {
		t.Fatalf("EncodeProgram: %v", err)
	}
	if len(buf) != programHeaderSize+len(p.Params)*4 {
		t.Fatalf("encoded length = %d, want %d", len(buf), programHeaderSize+len(p.Params)*4)
	}

	got, err := DecodeProgram(buf, false)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	if got.Name != p.Name || got.PluginID != p.PluginID || len(got.Params) != len(p.Params) {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, p)
	}
	for i := range p.Params {
		if got.Params[i] != p.Params[i] {
			t.Errorf("param %d = %v, want %v", i, got.Params[i], p.Params[i])
		}
	}
}

func TestProgramChunkRoundTrip(t *testing.T) {
	p := Program{PluginID: 7, Name: "Chunky", Chunk: []byte{1, 2, 3, 4, 5}}
	buf, err := EncodeProgram(p)
	if err != nil {
		t.Fatalf("EncodeProgram: %v", err)
	}
	got, err := DecodeProgram(buf, true)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	if !bytes.Equal(got.Chunk, p.Chunk) {
		t.Fatalf("chunk = %v, want %v", got.Chunk, p.Chunk)
	}
}

func TestDecodeProgramFormMismatchRejected(t *testing.T) {
	p := Program{PluginID: 1, Params: []float32{1}}
	buf, _ := EncodeProgram(p)
	if _, err := DecodeProgram(buf, true); err == nil {
		t.Fatal("expected error decoding a parameter-list program as chunk-form")
	}
}

func TestDecodeProgramRejectsBadMagic(t *testing.T) {
	buf, _ := EncodeProgram(Program{Params: []float32{1}})
	buf[0] = 0
	if _, err := DecodeProgram(buf, false); err == nil {
		t.Fatal("expected error on corrupted magic")
	}
}

func TestDecodeProgramRejectsTruncatedData(t *testing.T) {
	buf, _ := EncodeProgram(Program{Params: []float32{1, 2, 3}})
	if _, err := DecodeProgram(buf[:len(buf)-4], false); err == nil {
		t.Fatal("expected error on truncated parameter body")
	}
}

func TestBankParamRoundTrip(t *testing.T) {
	b := Bank{
		PluginID:       99,
		PluginVersion:  2,
		CurrentProgram: 1,
		Programs: []Program{
			{Name: "A", Params: []float32{0, 1}},
			{Name: "B", Params: []float32{0.5, 0.75}},
		},
	}
	buf, err := EncodeBank(b)
	if err != nil {
		t.Fatalf("EncodeBank: %v", err)
	}
	got, err := DecodeBank(buf, false)
	if err != nil {
		t.Fatalf("DecodeBank: %v", err)
	}
	if len(got.Programs) != 2 {
		t.Fatalf("got %d programs, want 2", len(got.Programs))
	}
	if got.Programs[0].Name != "A" || got.Programs[1].Name != "B" {
		t.Fatalf("program names = %q, %q", got.Programs[0].Name, got.Programs[1].Name)
	}
	if got.CurrentProgram != 1 {
		t.Errorf("CurrentProgram = %d, want 1", got.CurrentProgram)
	}
}

func TestBankChunkRoundTrip(t *testing.T) {
	b := Bank{PluginID: 5, Chunk: []byte("opaque-bank-state")}
	buf, err := EncodeBank(b)
	if err != nil {
		t.Fatalf("EncodeBank: %v", err)
	}
	got, err := DecodeBank(buf, true)
	if err != nil {
		t.Fatalf("DecodeBank: %v", err)
	}
	if !bytes.Equal(got.Chunk, b.Chunk) {
		t.Fatalf("chunk = %q, want %q", got.Chunk, b.Chunk)
	}
}

func TestEncodeBankRejectsChunkProgramInParamBank(t *testing.T) {
	b := Bank{Programs: []Program{{Chunk: []byte{1}}}}
	if _, err := EncodeBank(b); err == nil {
		t.Fatal("expected error encoding a chunk-form program inside a parameter-list bank")
	}
}

func TestDecodeBankRejectsTrailingGarbage(t *testing.T) {
	b := Bank{Programs: []Program{{Params: []float32{1}}}}
	buf, _ := EncodeBank(b)
	buf = append(buf, 0xFF)
	// DecodeBank measures the body from the supplied data, not from
	// byteSize, so the extra byte is left over after the declared programs
	// either way; byteSize is bumped so the header matches the data and only
	// the trailing-bytes check can reject it.
	byteSize := int32(len(buf) - 8)
	buf[4], buf[5], buf[6], buf[7] = byte(byteSize>>24), byte(byteSize>>16), byte(byteSize>>8), byte(byteSize)
	if _, err := DecodeBank(buf, false); err == nil {
		t.Fatal("expected error on trailing bytes after declared program count")
	}
}

func TestV3ContainerRoundTrip(t *testing.T) {
	var classID [32]byte
	copy(classID[:], "test-class-id")

	comp := []byte{1, 2, 3, 4}
	cont := []byte{5, 6, 7, 8, 9}
	buf, err := EncodeContainer(classID,
		[]ChunkEntry{{ID: EntryIDComponentState}, {ID: EntryIDControllerState}},
		map[string][]byte{EntryIDComponentState: comp, EntryIDControllerState: cont},
	)
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}

	got, err := DecodeContainer(buf)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if got.ClassID != classID {
		t.Fatalf("ClassID mismatch")
	}
	gotComp, ok := got.Chunk(EntryIDComponentState)
	if !ok || !bytes.Equal(gotComp, comp) {
		t.Fatalf("component state = %v, ok=%v, want %v", gotComp, ok, comp)
	}
	gotCont, ok := got.Chunk(EntryIDControllerState)
	if !ok || !bytes.Equal(gotCont, cont) {
		t.Fatalf("controller state = %v, ok=%v, want %v", gotCont, ok, cont)
	}
}

func TestV3ContainerMissingChunkReturnsFalse(t *testing.T) {
	var classID [32]byte
	buf, err := EncodeContainer(classID, []ChunkEntry{{ID: EntryIDComponentState}}, map[string][]byte{EntryIDComponentState: {1}})
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}
	got, err := DecodeContainer(buf)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if _, ok := got.Chunk(EntryIDControllerState); ok {
		t.Fatal("expected Chunk to report false for an entry not in the container")
	}
}

func TestV3ContainerRejectsBadMagic(t *testing.T) {
	var classID [32]byte
	buf, _ := EncodeContainer(classID, nil, map[string][]byte{})
	buf[0] = 'X'
	if _, err := DecodeContainer(buf); err == nil {
		t.Fatal("expected error on corrupted v3 magic")
	}
}
