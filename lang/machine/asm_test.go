package machine_test

import (
	"github.com/scriptvm/eclrun/internal/eclfixture"
	"github.com/scriptvm/eclrun/lang/isa"
)

// asmInstr is one instruction in a tiny two-pass test assembler: it lets
// test programs reference forward and backward jump targets by label
// instead of hand-computing byte offsets, since branches are byte offsets
// relative to the current instruction's own start.
type asmInstr struct {
	ins    eclfixture.Instr
	label  string
	jumpTo string // if set, overwrites ins.Params[0:4] with the relative offset
}

func assemble(instrs []asmInstr) []eclfixture.Instr {
	addrs := make([]int, len(instrs))
	labelAddr := map[string]int{}
	cur := 0
	for i, a := range instrs {
		addrs[i] = cur
		if a.label != "" {
			labelAddr[a.label] = cur
		}
		cur += isa.HeaderSize + len(a.ins.Params)
	}

	out := make([]eclfixture.Instr, len(instrs))
	for i, a := range instrs {
		ins := a.ins
		if a.jumpTo != "" {
			offset := int32(labelAddr[a.jumpTo] - addrs[i])
			buf := append([]byte(nil), ins.Params...)
			copy(buf[0:4], eclfixture.I32(offset))
			ins.Params = buf
		}
		out[i] = ins
	}
	return out
}
