// Package eclfixture assembles in-memory ECL container byte images for use
// by the test suites under lang/..., the way a bytecode assembler lets a VM
// test suite hand-write test programs, adapted to ECL's binary container
// format instead of a textual syntax, since ECL is never hand-assembled
// from text.
package eclfixture

import (
	"encoding/binary"
	"math"

	"github.com/scriptvm/eclrun/lang/container"
	"github.com/scriptvm/eclrun/lang/isa"
)

// Sub is one subroutine to place in a built container.
type Sub struct {
	Name   string
	Instrs []Instr
}

// Instr is one instruction to encode into a subroutine body. Rank defaults
// to 0xF (all difficulties) when left zero; ParamCount is recorded as given
// since nothing uses it once decoded — it's informative only.
type Instr struct {
	Time       uint32
	Op         isa.Opcode
	ParamMask  uint16
	ParamCount uint8
	Rank       uint8
	Params     []byte
}

func (ins Instr) encode() []byte {
	rank := ins.Rank
	if rank == 0 {
		rank = 0xF
	}
	size := isa.HeaderSize + len(ins.Params)
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], ins.Time)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(ins.Op))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(size))
	binary.LittleEndian.PutUint16(buf[8:10], ins.ParamMask)
	buf[10] = rank
	buf[11] = ins.ParamCount
	copy(buf[16:], ins.Params)
	return buf
}

// I32, U32, F32 and Str encode one literal parameter, one per character of
// the {i,u,f,s} format alphabet. Params concatenates them into one
// instruction's payload.
func I32(v int32) []byte { return U32(uint32(v)) }

func U32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func F32(v float32) []byte { return U32(math.Float32bits(v)) }

func Str(s string) []byte {
	content := append([]byte(s), 0)
	b := make([]byte, 4+len(content))
	binary.LittleEndian.PutUint32(b[0:4], uint32(len(content)))
	copy(b[4:], content)
	return b
}

func Params(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Slot encodes the i32 literal used by a variable-reference parameter: a
// non-negative byte offset for a frame-local, or a negative builtin id.
func Slot(slot int32) []byte { return I32(slot) }

// Build assembles a complete ECL container image: header, ANIM list, ECLI
// list, subroutine offset table, then every subroutine's body, in that file
// order.
func Build(anim, ecli []string, subs []Sub) []byte {
	var body []byte
	body = append(body, encodeIncludeList("ANIM", anim)...)
	body = append(body, encodeIncludeList("ECLI", ecli)...)
	includeLen := len(body)

	offsetsOff := len(body)
	body = append(body, make([]byte, 4*len(subs))...)
	for _, s := range subs {
		body = append(body, []byte(s.Name)...)
		body = append(body, 0)
	}

	headerAddrs := make([]uint32, len(subs))
	for i, s := range subs {
		headerAddrs[i] = uint32(container.HeaderSize + len(body))
		body = append(body, []byte(container.SubHeaderMagic)...)
		body = append(body, U32(0)...)
		body = append(body, make([]byte, 8)...)
		for _, ins := range s.Instrs {
			body = append(body, ins.encode()...)
		}
	}

	for i := range subs {
		binary.LittleEndian.PutUint32(body[offsetsOff+4*i:], headerAddrs[i])
	}

	header := make([]byte, container.HeaderSize)
	copy(header[0:4], container.Magic)
	binary.LittleEndian.PutUint16(header[4:6], 1)
	binary.LittleEndian.PutUint16(header[6:8], uint16(includeLen))
	binary.LittleEndian.PutUint32(header[8:12], uint32(container.HeaderSize))
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(subs)))

	return append(header, body...)
}

func encodeIncludeList(tag string, names []string) []byte {
	var b []byte
	b = append(b, []byte(tag)...)
	b = append(b, U32(uint32(len(names)))...)
	for _, n := range names {
		b = append(b, []byte(n)...)
		b = append(b, 0)
	}
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}
