package host

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"

	"pluginhost/internal/backend"
	"pluginhost/internal/preset"
	"pluginhost/internal/protocol"
)

// v2PluginID packs the low 4 bytes of a backend.UniqueID as the int32 id
// FXP/FXB headers carry (spec.md §3: "unique-id (V2: 32-bit...)").
func v2PluginID(id backend.UniqueID) int32 {
	return int32(binary.BigEndian.Uint32(id[:4]))
}

// v3ClassID renders a backend.UniqueID as the 32-byte ASCII class id V3
// preset containers carry: the 16-byte id hex-encoded, which is exactly
// 32 ASCII bytes.
func v3ClassID(id backend.UniqueID) [32]byte {
	var out [32]byte
	hex.Encode(out[:], id[:])
	return out
}

// SetProgram selects program i and replies `/program_index` +
// `/program_name` on success (spec.md §4.1 "setProgram(i)").
func (h *Instance) SetProgram(i int32) {
	if !h.requireReady("program_set") {
		return
	}
	b := h.b
	var setErr error
	cmd := h.cmdQ.New("program_set", func() bool {
		setErr = b.SetProgram(i)
		return true
	}, func() bool {
		if setErr != nil {
			h.log.Warn("program_set failed", "index", i, "error", setErr)
			return true
		}
		h.reply(protocol.Message{Type: protocol.ReplyProgramIndex, Index: b.Program()})
		h.reply(protocol.Message{Type: protocol.ReplyProgramName, Index: b.Program(), Name: b.ProgramName()})
		return true
	})
	h.cmdQ.Submit(cmd)
}

// QueryPrograms replies `/program_name {i, name}` once per program in
// [onset, onset+count) (spec.md §6 "program_query").
func (h *Instance) QueryPrograms(onset, count int32) {
	if !h.requireReady("program_query") {
		return
	}
	b := h.b
	total := int32(b.Info().NumPrograms)
	cmd := h.cmdQ.New("program_query", func() bool { return true }, func() bool {
		for i := onset; i < onset+count && i < total; i++ {
			h.reply(protocol.Message{Type: protocol.ReplyProgramName, Index: i, Name: b.ProgramNameIndexed(i)})
		}
		return true
	})
	h.cmdQ.Submit(cmd)
}

// SetProgramName renames the current program and replies `/program_name`.
func (h *Instance) SetProgramName(name string) {
	if !h.requireReady("program_name") {
		return
	}
	b := h.b
	var err error
	cmd := h.cmdQ.New("program_name", func() bool {
		err = b.SetProgramName(name)
		return true
	}, func() bool {
		if err != nil {
			h.log.Warn("program_name failed", "error", err)
			return true
		}
		h.reply(protocol.Message{Type: protocol.ReplyProgramName, Index: b.Program(), Name: b.ProgramName()})
		return true
	})
	h.cmdQ.Submit(cmd)
}

// ReadProgram loads an FXP (V2) or V3 state container from path and
// applies it to the backend, replying `/program_read {ok}` followed by
// `/program_name` on success (spec.md §4.1 "readProgram(path)").
func (h *Instance) ReadProgram(path string) {
	h.readPreset(path, false)
}

// WriteProgram serializes the backend's current program to path, replying
// `/program_write {ok}`.
func (h *Instance) WriteProgram(path string) {
	h.writePreset(path, false)
}

// ReadBank is ReadProgram's bank equivalent, replying `/bank_read {ok}`.
func (h *Instance) ReadBank(path string) {
	h.readPreset(path, true)
}

// WriteBank is WriteProgram's bank equivalent, replying `/bank_write {ok}`.
func (h *Instance) WriteBank(path string) {
	h.writePreset(path, true)
}

func (h *Instance) readPreset(path string, isBank bool) {
	readOp := "program_read"
	replyType := protocol.ReplyProgramRead
	if isBank {
		readOp = "bank_read"
		replyType = protocol.ReplyBankRead
	}
	if !h.requireReady(readOp) {
		return
	}
	b := h.b
	info := h.info
	var applyErr error
	cmd := h.cmdQ.New(readOp, func() bool {
		data, err := os.ReadFile(path)
		if err != nil {
			applyErr = err
			return true
		}
		if isBank {
			applyErr = applyBankFile(b, info, data)
		} else {
			applyErr = applyProgramFile(b, info, data)
		}
		return true
	}, func() bool {
		ok := applyErr == nil
		if !ok {
			h.log.Warn(readOp+" failed", "path", path, "error", applyErr)
		}
		h.reply(protocol.Message{Type: replyType, OK: ok})
		if ok {
			h.reply(protocol.Message{Type: protocol.ReplyProgramName, Index: b.Program(), Name: b.ProgramName()})
		}
		return true
	})
	h.cmdQ.Submit(cmd)
}

func (h *Instance) writePreset(path string, isBank bool) {
	op := "program_write"
	replyType := protocol.ReplyProgramWrite
	if isBank {
		op = "bank_write"
		replyType = protocol.ReplyBankWrite
	}
	if !h.requireReady(op) {
		return
	}
	b := h.b
	info := h.info
	var writeErr error
	cmd := h.cmdQ.New(op, func() bool {
		var data []byte
		var err error
		if isBank {
			data, err = captureBankFile(b, info)
		} else {
			data, err = captureProgramFile(b, info)
		}
		if err != nil {
			writeErr = err
			return true
		}
		writeErr = os.WriteFile(path, data, 0o644)
		return true
	}, func() bool {
		ok := writeErr == nil
		if !ok {
			h.log.Warn(op+" failed", "path", path, "error", writeErr)
		}
		h.reply(protocol.Message{Type: replyType, OK: ok})
		return true
	})
	h.cmdQ.Submit(cmd)
}

// applyProgramFile decodes and applies a single-program preset file,
// dispatching on the plugin's backend kind.
func applyProgramFile(b backend.Backend, info backend.Info, data []byte) error {
	switch info.Kind {
	case backend.KindV2:
		p, err := preset.DecodeProgram(data, info.Capabilities.HasChunkData)
		if err != nil {
			return err
		}
		if err := b.SetProgramName(p.Name); err != nil {
			return err
		}
		if p.IsChunk() {
			return b.SetProgramChunkData(p.Chunk)
		}
		for i, v := range p.Params {
			if err := b.SetParameter(int32(i), v); err != nil {
				return err
			}
		}
		return nil
	default:
		c, err := preset.DecodeContainer(data)
		if err != nil {
			return err
		}
		if c.ClassID != v3ClassID(info.UniqueID) {
			return fmt.Errorf("preset: v3 class id does not match plugin %q", info.Name)
		}
		return applyV3Container(b, c)
	}
}

// applyV3Container dispatches 'Comp'/'Cont' chunks to the backend's split
// component/controller state when it implements backend.SplitState,
// falling back to the single-blob ProgramChunkData for backends that
// don't separate the two (spec.md §4.6).
func applyV3Container(b backend.Backend, c preset.Container) error {
	if split, ok := b.(backend.SplitState); ok {
		if comp, found := c.Chunk(preset.EntryIDComponentState); found {
			if err := split.SetComponentState(comp); err != nil {
				return err
			}
		}
		if cont, found := c.Chunk(preset.EntryIDControllerState); found {
			if err := split.SetControllerState(cont); err != nil {
				return err
			}
		}
		return nil
	}
	if comp, found := c.Chunk(preset.EntryIDComponentState); found {
		return b.SetProgramChunkData(comp)
	}
	return nil
}

// captureProgramFile reads the backend's current program into an
// FXP/V3-container byte stream.
func captureProgramFile(b backend.Backend, info backend.Info) ([]byte, error) {
	switch info.Kind {
	case backend.KindV2:
		p := preset.Program{
			PluginID:      v2PluginID(info.UniqueID),
			PluginVersion: 1,
			Name:          b.ProgramName(),
		}
		if info.Capabilities.HasChunkData {
			chunk, err := b.ProgramChunkData()
			if err != nil {
				return nil, err
			}
			p.Chunk = chunk
		} else {
			p.Params = make([]float32, info.NumParameters)
			for i := range p.Params {
				v, err := b.GetParameter(int32(i))
				if err != nil {
					return nil, err
				}
				p.Params[i] = v
			}
		}
		return preset.EncodeProgram(p)
	default:
		return captureV3Container(b, info)
	}
}

func captureV3Container(b backend.Backend, info backend.Info) ([]byte, error) {
	classID := v3ClassID(info.UniqueID)
	entries := []preset.ChunkEntry{{ID: preset.EntryIDComponentState}}
	payloads := map[string][]byte{}

	if split, ok := b.(backend.SplitState); ok {
		comp, err := split.ComponentState()
		if err != nil {
			return nil, err
		}
		cont, err := split.ControllerState()
		if err != nil {
			return nil, err
		}
		payloads[preset.EntryIDComponentState] = comp
		entries = append(entries, preset.ChunkEntry{ID: preset.EntryIDControllerState})
		payloads[preset.EntryIDControllerState] = cont
	} else {
		comp, err := b.ProgramChunkData()
		if err != nil {
			return nil, err
		}
		payloads[preset.EntryIDComponentState] = comp
	}
	return preset.EncodeContainer(classID, entries, payloads)
}

// applyBankFile decodes and applies a bank preset file. V2 banks restore
// every program's parameter snapshot and the originally active program
// (spec.md §4.5 "write invariants"); V3 bank writes have no defined wire
// format (spec.md §9(b)), so reading one is equally undefined and rejected.
func applyBankFile(b backend.Backend, info backend.Info, data []byte) error {
	if info.Kind != backend.KindV2 {
		return backend.ErrBankDataWriteNotImplemented
	}
	bank, err := preset.DecodeBank(data, info.Capabilities.HasChunkData)
	if err != nil {
		return err
	}
	if bank.IsChunk() {
		return b.SetBankChunkData(bank.Chunk)
	}
	for i, p := range bank.Programs {
		if err := b.SetProgram(int32(i)); err != nil {
			return err
		}
		if err := b.SetProgramName(p.Name); err != nil {
			return err
		}
		for pi, v := range p.Params {
			if err := b.SetParameter(int32(pi), v); err != nil {
				return err
			}
		}
	}
	return b.SetProgram(bank.CurrentProgram)
}

// captureBankFile serializes every program into an FXB bank, restoring
// the originally active program afterward (spec.md §4.5). V3 bank writes
// are not implemented (spec.md §9(b)).
func captureBankFile(b backend.Backend, info backend.Info) ([]byte, error) {
	if info.Kind != backend.KindV2 {
		return nil, backend.ErrBankDataWriteNotImplemented
	}
	if info.Capabilities.HasChunkData {
		chunk, err := b.BankChunkData()
		if err != nil {
			return nil, err
		}
		return preset.EncodeBank(preset.Bank{
			PluginID:       v2PluginID(info.UniqueID),
			PluginVersion:  1,
			CurrentProgram: b.Program(),
			Chunk:          chunk,
		})
	}

	original := b.Program()
	programs := make([]preset.Program, info.NumPrograms)
	for i := range programs {
		if err := b.SetProgram(int32(i)); err != nil {
			return nil, err
		}
		params := make([]float32, info.NumParameters)
		for pi := range params {
			v, err := b.GetParameter(int32(pi))
			if err != nil {
				return nil, err
			}
			params[pi] = v
		}
		programs[i] = preset.Program{
			PluginID:      v2PluginID(info.UniqueID),
			PluginVersion: 1,
			Name:          b.ProgramNameIndexed(int32(i)),
			Params:        params,
		}
	}
	if err := b.SetProgram(original); err != nil {
		return nil, err
	}
	return preset.EncodeBank(preset.Bank{
		PluginID:       v2PluginID(info.UniqueID),
		PluginVersion:  1,
		CurrentProgram: original,
		Programs:       programs,
	})
}
