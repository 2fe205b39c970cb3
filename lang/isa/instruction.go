package isa

import (
	"encoding/binary"

	"github.com/scriptvm/eclrun/lang/eclerr"
)

// HeaderSize is the fixed size, in bytes, of an instruction header: time(4)
// + id(2) + size(2) + param_mask(2) + rank_mask(1) + param_count(1) +
// reserved(4).
const HeaderSize = 16

// Instruction is one decoded instruction header plus a reference to its raw
// parameter payload inside the file image. Addr is its byte offset from the
// start of the file, used both for branch targets (which are relative to
// it) and for addressing the next instruction via Addr+Size.
type Instruction struct {
	Addr       uint32
	Time       uint32
	Op         Opcode
	Size       uint16
	ParamMask  uint16
	RankMask   uint8
	ParamCount uint8
	Reserved   uint32
	Payload    []byte // Size-HeaderSize bytes, sliced from the file image
}

// Decode reads one instruction header at addr in buf. It validates that the
// header and its declared size both fit inside buf and that size is never
// smaller than the header itself; staying within the enclosing subroutine's
// own bounds is the caller's responsibility, since only it knows where that
// subroutine ends.
func Decode(buf []byte, addr uint32) (Instruction, error) {
	if uint64(addr)+HeaderSize > uint64(len(buf)) {
		return Instruction{}, eclerr.New(eclerr.IoError, "instruction header at offset %d exceeds file size", addr)
	}
	b := buf[addr:]
	ins := Instruction{
		Addr:       addr,
		Time:       binary.LittleEndian.Uint32(b[0:4]),
		Op:         Opcode(binary.LittleEndian.Uint16(b[4:6])),
		Size:       binary.LittleEndian.Uint16(b[6:8]),
		ParamMask:  binary.LittleEndian.Uint16(b[8:10]),
		RankMask:   b[10],
		ParamCount: b[11],
		Reserved:   binary.LittleEndian.Uint32(b[12:16]),
	}
	if ins.Size < HeaderSize {
		return Instruction{}, eclerr.New(eclerr.InvalidSub, "instruction at offset %d has size %d smaller than header size %d", addr, ins.Size, HeaderSize)
	}
	end := uint64(addr) + uint64(ins.Size)
	if end > uint64(len(buf)) {
		return Instruction{}, eclerr.New(eclerr.IoError, "instruction at offset %d (size %d) exceeds file size", addr, ins.Size)
	}
	ins.Payload = buf[addr+HeaderSize : end]
	return ins, nil
}

// Next returns the byte offset of the instruction that follows ins. This is
// always derived from ins.Size, never re-derived from a parameter's own
// encoded length.
func (ins Instruction) Next() uint32 {
	return ins.Addr + uint32(ins.Size)
}

// Params decodes ins's parameters using the format string registered for
// its opcode. It fails with eclerr.UnknownOpcode if the opcode is not
// registered.
func (ins Instruction) Params() ([]Param, error) {
	format, ok := Format[ins.Op]
	if !ok {
		return nil, eclerr.New(eclerr.UnknownOpcode, "opcode %d (%s)", uint16(ins.Op), ins.Op)
	}
	return DecodeParams(format, ins.ParamMask, ins.Payload)
}

// RankMatches reports whether active (a difficulty bitmask in LHNE bit
// order) intersects ins's rank_mask, i.e. whether the instruction should
// execute at all under the active difficulty.
func (ins Instruction) RankMatches(active uint8) bool {
	return active&ins.RankMask != 0
}
