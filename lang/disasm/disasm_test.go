package disasm_test

import (
	"bytes"
	"testing"

	"github.com/scriptvm/eclrun/internal/eclfixture"
	"github.com/scriptvm/eclrun/lang/container"
	"github.com/scriptvm/eclrun/lang/disasm"
	"github.com/scriptvm/eclrun/lang/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, anim, ecli []string, subs []eclfixture.Sub) *container.Program {
	t.Helper()
	buf := eclfixture.Build(anim, ecli, subs)
	prog, err := container.Load(bytes.NewReader(buf))
	require.NoError(t, err)
	return prog
}

func TestHeaderOutput(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{{Op: isa.RET}}},
	})
	var out bytes.Buffer
	require.NoError(t, disasm.Header(&out, prog))
	assert.Equal(t, "revision 1, 1 subroutine(s)\n", out.String())
}

func TestIncludesOutput(t *testing.T) {
	prog := loadFixture(t, []string{"boss1.anm"}, []string{"lib.ecl"}, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{{Op: isa.RET}}},
	})
	var out bytes.Buffer
	require.NoError(t, disasm.Includes(&out, prog))
	assert.Equal(t, "ANIM:\n  boss1.anm\nECLI:\n  lib.ecl\n", out.String())
}

func TestIncludesOutputEmpty(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{{Op: isa.RET}}},
	})
	var out bytes.Buffer
	require.NoError(t, disasm.Includes(&out, prog))
	assert.Equal(t, "ANIM:\nECLI:\n", out.String())
}

func TestOperandLiteral(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.PUSH, ParamCount: 1, Params: eclfixture.I32(42)},
			{Op: isa.RET},
		}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)
	ins, err := isa.Decode(prog.Buf, sub.Start)
	require.NoError(t, err)
	params, err := ins.Params()
	require.NoError(t, err)
	assert.Equal(t, "42", disasm.Operand(params[0]))
}

func TestOperandFrameLocalSlot(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.PUSH, ParamMask: 0b1, ParamCount: 1, Params: eclfixture.Slot(4)},
			{Op: isa.RET},
		}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)
	ins, err := isa.Decode(prog.Buf, sub.Start)
	require.NoError(t, err)
	params, err := ins.Params()
	require.NoError(t, err)
	// slot 4 is the second frame-local word (byte offset 4 >> 2 == 1), named 'B'.
	assert.Equal(t, "$B", disasm.Operand(params[0]))
}

func TestOperandBuiltinName(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.PUSH, ParamMask: 0b1, ParamCount: 1, Params: eclfixture.Slot(-10000)},
			{Op: isa.RET},
		}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)
	ins, err := isa.Decode(prog.Buf, sub.Start)
	require.NoError(t, err)
	params, err := ins.Params()
	require.NoError(t, err)
	assert.Equal(t, "$RAND", disasm.Operand(params[0]))
}

func TestOperandUnknownNegativeSlot(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.PUSH, ParamMask: 0b1, ParamCount: 1, Params: eclfixture.Slot(-42)},
			{Op: isa.RET},
		}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)
	ins, err := isa.Decode(prog.Buf, sub.Start)
	require.NoError(t, err)
	params, err := ins.Params()
	require.NoError(t, err)
	assert.Equal(t, "$-42", disasm.Operand(params[0]))
}

func TestSubroutineStopsAtNextHeader(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("x")},
			{Op: isa.RET},
		}},
		{Name: "other", Instrs: []eclfixture.Instr{
			{Op: isa.RET},
		}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, disasm.Subroutine(&out, prog, sub))
	lines := bytes.Count(out.Bytes(), []byte("\n"))
	assert.Equal(t, 2, lines, "main has exactly two instructions: PRINTSTR and RET")
}

func TestProgramOutputContainsAllSubsAlphabetically(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "zeta", Instrs: []eclfixture.Instr{{Op: isa.RET}}},
		{Name: "alpha", Instrs: []eclfixture.Instr{{Op: isa.RET}}},
	})
	var out bytes.Buffer
	require.NoError(t, disasm.Program(&out, prog))
	s := out.String()
	alphaIdx := bytes.Index([]byte(s), []byte("sub alpha:"))
	zetaIdx := bytes.Index([]byte(s), []byte("sub zeta:"))
	require.True(t, alphaIdx >= 0 && zetaIdx >= 0)
	assert.Less(t, alphaIdx, zetaIdx, "subroutines are listed alphabetically")
}

func TestInstructionRankAnnotation(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.RET, Rank: 0b1000},
		}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)
	ins, err := isa.Decode(prog.Buf, sub.Start)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, disasm.Instruction(&out, ins))
	assert.Contains(t, out.String(), "rank=1000")
}

func TestInstructionNoRankAnnotationWhenAllRanks(t *testing.T) {
	prog := loadFixture(t, nil, nil, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{{Op: isa.RET}}},
	})
	sub, ok := prog.Sub("main")
	require.True(t, ok)
	ins, err := isa.Decode(prog.Buf, sub.Start)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, disasm.Instruction(&out, ins))
	assert.NotContains(t, out.String(), "rank=")
}
