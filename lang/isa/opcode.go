// Package isa describes the ECL instruction set: the fixed mapping from
// opcode id to parameter format string, and the decoding of an
// instruction's raw parameter bytes into typed values.
package isa

import "fmt"

// Opcode is an ECL instruction id, as stored in an instruction header's
// 16-bit id field.
type Opcode uint16

// Opcode ids. The exact numeric assignment of the arithmetic/comparison
// opcodes matches the source game version; what matters is that an id maps
// to exactly one format string.
const ( //nolint:revive
	NOP        Opcode = 0
	DELETE     Opcode = 1
	RET        Opcode = 10
	CALL       Opcode = 11
	JMP        Opcode = 12
	JMPEQ      Opcode = 13
	JMPNEQ     Opcode = 14
	CALLASYNC  Opcode = 15
	PRINTTOP   Opcode = 21
	WAIT       Opcode = 23
	PUTS       Opcode = 31
	PUTI       Opcode = 32
	PUTF       Opcode = 33
	ENDL       Opcode = 34
	PRINTSTR   Opcode = 30
	STACKALLOC Opcode = 40
	PUSH       Opcode = 42
	SET        Opcode = 43
	PUSHF      Opcode = 44
	SETF       Opcode = 45
	ADDI       Opcode = 50
	ADDF       Opcode = 51
	MULI       Opcode = 52
	MODI       Opcode = 55
	EQI        Opcode = 60
	LESSI      Opcode = 65
	DECI       Opcode = 78

	FLAGSET    Opcode = 502
	SETCHAPTER Opcode = 524
)

// Format gives the parameter-format string for each known opcode, over the
// alphabet {i, u, f, s}. An opcode absent from this table is unknown to the
// decoder.
var Format = map[Opcode]string{
	NOP:        "",
	DELETE:     "",
	RET:        "",
	CALL:       "s",
	JMP:        "iu",
	JMPEQ:      "iu",
	JMPNEQ:     "iu",
	CALLASYNC:  "s",
	PRINTTOP:   "",
	WAIT:       "i",
	PUTS:       "s",
	PUTI:       "i",
	PUTF:       "f",
	ENDL:       "",
	PRINTSTR:   "s",
	STACKALLOC: "u",
	PUSH:       "i",
	SET:        "i",
	PUSHF:      "f",
	SETF:       "f",
	ADDI:       "",
	ADDF:       "",
	MULI:       "",
	MODI:       "",
	EQI:        "",
	LESSI:      "",
	DECI:       "i",
	FLAGSET:    "i",
	SETCHAPTER: "i",
}

// mnemonics gives the disassembly name for each known opcode.
var mnemonics = map[Opcode]string{
	NOP:        "nop",
	DELETE:     "delete",
	RET:        "ret",
	CALL:       "call",
	JMP:        "jmp",
	JMPEQ:      "jmpeq",
	JMPNEQ:     "jmpneq",
	CALLASYNC:  "callAsync",
	PRINTTOP:   "printtop",
	WAIT:       "wait",
	PUTS:       "puts",
	PUTI:       "puti",
	PUTF:       "putf",
	ENDL:       "endl",
	PRINTSTR:   "printstr",
	STACKALLOC: "stackAlloc",
	PUSH:       "push",
	SET:        "set",
	PUSHF:      "pushf",
	SETF:       "setf",
	ADDI:       "addi",
	ADDF:       "addf",
	MULI:       "muli",
	MODI:       "modi",
	EQI:        "eqi",
	LESSI:      "lessi",
	DECI:       "deci",
	FLAGSET:    "flagset",
	SETCHAPTER: "setchapter",
}

// String returns the disassembly mnemonic for op, or a numeric placeholder
// if op is not known.
func (op Opcode) String() string {
	if name, ok := mnemonics[op]; ok {
		return name
	}
	return fmt.Sprintf("ins_%d", uint16(op))
}

// Known reports whether op has a registered parameter format, i.e. whether
// the decoder can decode its parameters.
func Known(op Opcode) bool {
	_, ok := Format[op]
	return ok
}
