package host

import "pluginhost/internal/protocol"

// Dispatch routes one incoming control Message to the matching Instance
// method (spec.md §6 "Control surface"). Must be called from the same
// thread as Next/DrainReplies; unrecognized tags are logged and dropped.
func (h *Instance) Dispatch(msg protocol.Message) {
	switch msg.Type {
	case protocol.CmdOpen:
		h.Open(msg.Path, msg.WithEditor)
	case protocol.CmdClose:
		h.Close()
	case protocol.CmdReset:
		h.Reset(msg.Async)
	case protocol.CmdVis:
		h.ShowEditor(msg.Show)

	case protocol.CmdSet:
		if msg.Str != "" {
			h.SetParamString(msg.Index, msg.Str)
		} else {
			h.SetParam(msg.Index, msg.Value)
		}
	case protocol.CmdSetN:
		for i, v := range msg.Values {
			h.SetParam(msg.Index+int32(i), v)
		}
	case protocol.CmdParamQuery:
		h.QueryParams(msg.Index, msg.Count)
	case protocol.CmdGet:
		h.GetParam(msg.Index)
	case protocol.CmdGetN:
		h.GetParamN(msg.Index, msg.Count)
	case protocol.CmdMap:
		h.MapParam(msg.Index, msg.Bus, msg.NChan)
	case protocol.CmdUnmap:
		h.UnmapParam(msg.Index)

	case protocol.CmdProgramSet:
		h.SetProgram(msg.Index)
	case protocol.CmdProgramQuery:
		h.QueryPrograms(msg.Index, msg.Count)
	case protocol.CmdProgramName:
		h.SetProgramName(msg.Name)
	case protocol.CmdProgramRead:
		h.ReadProgram(msg.Path)
	case protocol.CmdProgramWrite:
		h.WriteProgram(msg.Path)
	case protocol.CmdBankRead:
		h.ReadBank(msg.Path)
	case protocol.CmdBankWrite:
		h.WriteBank(msg.Path)
	case protocol.CmdProgramDataSet:
		h.SendProgramData(msg.Total, msg.Onset, msg.Bytes, false)
	case protocol.CmdProgramDataGet:
		h.ReceiveProgramData(msg.PacketBudget, false)
	case protocol.CmdBankDataSet:
		h.SendProgramData(msg.Total, msg.Onset, msg.Bytes, true)
	case protocol.CmdBankDataGet:
		h.ReceiveProgramData(msg.PacketBudget, true)

	case protocol.CmdMIDIMsg:
		h.SendMIDI(msg.Status, msg.Data1, msg.Data2)
	case protocol.CmdMIDISysex:
		h.SendSysex(msg.Bytes)
	case protocol.CmdTempo:
		h.SetTempo(msg.BPM)
	case protocol.CmdTimeSig:
		h.SetTimeSig(msg.TimeSigNumerator, msg.TimeSigDenominator)
	case protocol.CmdTransportPlay:
		h.SetTransportPlaying(msg.Playing)
	case protocol.CmdTransportSet:
		h.SetTransportPos(msg.Position)
	case protocol.CmdTransportGet:
		h.GetTransportPos()
	case protocol.CmdCanDo:
		h.CanDo(msg.CanDoString)
	case protocol.CmdVendorMethod:
		h.VendorSpecific(msg.VendorIndex, msg.VendorValue, msg.Bytes, 0)

	default:
		h.log.Warn("dispatch: unrecognized command tag", "type", msg.Type)
	}
}
