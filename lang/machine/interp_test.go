package machine_test

import (
	"bytes"
	"testing"

	"github.com/scriptvm/eclrun/internal/eclfixture"
	"github.com/scriptvm/eclrun/lang/container"
	"github.com/scriptvm/eclrun/lang/isa"
	"github.com/scriptvm/eclrun/lang/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProgram loads subs, runs the first sub in subs to completion under the
// given difficulty, and returns everything written to stdout.
func runProgram(t *testing.T, rank machine.Rank, subs []eclfixture.Sub) (string, error) {
	t.Helper()
	buf := eclfixture.Build(nil, nil, subs)
	prog, err := container.Load(bytes.NewReader(buf))
	require.NoError(t, err)

	sub, ok := prog.Sub(subs[0].Name)
	require.True(t, ok)

	var out bytes.Buffer
	g := machine.NewGlobals(rank, 1)
	g.Stdout = &out
	g.Stderr = &out

	sched := machine.NewScheduler(prog, g, sub.Start, sub.Name)
	err = sched.Run()
	return out.String(), err
}

// TestHelloWorld covers a main with no STACKALLOC at all.
func TestHelloWorld(t *testing.T) {
	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("hi")},
			{Op: isa.RET},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

// TestArithmetic covers a locals frame and basic integer arithmetic.
func TestArithmetic(t *testing.T) {
	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.STACKALLOC, ParamCount: 1, Params: eclfixture.U32(4)},
			{Op: isa.PUSH, ParamCount: 1, Params: eclfixture.I32(3)},
			{Op: isa.PUSH, ParamCount: 1, Params: eclfixture.I32(4)},
			{Op: isa.ADDI},
			{Op: isa.PRINTTOP},
			{Op: isa.RET},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

// TestConditionalBranch covers JMPEQ taking a forward branch.
func TestConditionalBranch(t *testing.T) {
	instrs := assemble([]asmInstr{
		{ins: eclfixture.Instr{Op: isa.PUSH, ParamCount: 1, Params: eclfixture.I32(0)}},
		{ins: eclfixture.Instr{Op: isa.JMPEQ, ParamCount: 2, Params: eclfixture.Params(eclfixture.I32(0), eclfixture.U32(0))}, jumpTo: "yes"},
		{ins: eclfixture.Instr{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("no")}},
		{ins: eclfixture.Instr{Op: isa.RET}},
		{ins: eclfixture.Instr{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("yes")}, label: "yes"},
		{ins: eclfixture.Instr{Op: isa.RET}},
	})

	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{{Name: "main", Instrs: instrs}})
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

// TestLoopWithDeciAndJmp exercises DECI and a backward JMPNEQ together.
// DECI pushes the pre-decrement value, so the loop condition re-reads the
// now-decremented slot rather than testing DECI's own push directly; the
// pushed value is discarded into a scratch local.
func TestLoopWithDeciAndJmp(t *testing.T) {
	const slotA, slotScratch = 0, 4 // frame-locals: byte offsets 0 and 4
	instrs := assemble([]asmInstr{
		{ins: eclfixture.Instr{Op: isa.STACKALLOC, ParamCount: 1, Params: eclfixture.U32(8)}},
		{ins: eclfixture.Instr{Op: isa.PUSH, ParamCount: 1, Params: eclfixture.I32(3)}},
		{ins: eclfixture.Instr{Op: isa.SET, ParamCount: 1, Params: eclfixture.I32(slotA)}},
		{ins: eclfixture.Instr{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("x")}, label: "loop"},
		{ins: eclfixture.Instr{Op: isa.DECI, ParamCount: 1, Params: eclfixture.I32(slotA)}},
		{ins: eclfixture.Instr{Op: isa.SET, ParamCount: 1, Params: eclfixture.I32(slotScratch)}},
		{ins: eclfixture.Instr{Op: isa.PUSH, ParamMask: 0b1, ParamCount: 1, Params: eclfixture.Slot(slotA)}},
		{ins: eclfixture.Instr{Op: isa.JMPNEQ, ParamCount: 2, Params: eclfixture.Params(eclfixture.I32(0), eclfixture.U32(0))}, jumpTo: "loop"},
		{ins: eclfixture.Instr{Op: isa.RET}},
	})

	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{{Name: "main", Instrs: instrs}})
	require.NoError(t, err)
	assert.Equal(t, "x\nx\nx\n", out)
}

// TestDifficultyFilter covers an instruction whose rank_mask selects only
// lunatic: it runs under -d lunatic but is skipped under -d easy.
func TestDifficultyFilter(t *testing.T) {
	sub := []eclfixture.Sub{{Name: "main", Instrs: []eclfixture.Instr{
		{Op: isa.PRINTSTR, Rank: uint8(machine.Lunatic), ParamCount: 1, Params: eclfixture.Str("L")},
		{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("A")},
		{Op: isa.RET},
	}}}

	out, err := runProgram(t, machine.Lunatic, sub)
	require.NoError(t, err)
	assert.Equal(t, "L\nA\n", out)

	out, err = runProgram(t, machine.Easy, sub)
	require.NoError(t, err)
	assert.Equal(t, "A\n", out)
}

// TestCallAndReturn exercises CALL/RET frame nesting: a callee's own
// STACKALLOC/RET must not disturb the caller's stack depth.
func TestCallAndReturn(t *testing.T) {
	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.STACKALLOC, ParamCount: 1, Params: eclfixture.U32(0)},
			{Op: isa.CALL, ParamCount: 1, Params: eclfixture.Str("helper")},
			{Op: isa.CALL, ParamCount: 1, Params: eclfixture.Str("helper")},
			{Op: isa.RET},
		}},
		{Name: "helper", Instrs: []eclfixture.Instr{
			{Op: isa.STACKALLOC, ParamCount: 1, Params: eclfixture.U32(4)},
			{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("h")},
			{Op: isa.RET},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "h\nh\n", out)
}

func TestCallMissingSub(t *testing.T) {
	_, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.CALL, ParamCount: 1, Params: eclfixture.Str("nope")},
			{Op: isa.RET},
		}},
	})
	require.Error(t, err)
}

func TestUnknownOpcodeFails(t *testing.T) {
	_, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.Opcode(9999)},
		}},
	})
	require.Error(t, err)
}

func TestStackAllocZeroStillShiftsFrame(t *testing.T) {
	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.STACKALLOC, ParamCount: 1, Params: eclfixture.U32(0)},
			{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("ok")},
			{Op: isa.RET},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestDataStackUnderflow(t *testing.T) {
	_, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.ADDI},
			{Op: isa.RET},
		}},
	})
	require.Error(t, err)
}

func TestBuiltinRandDeterministic(t *testing.T) {
	sub := []eclfixture.Sub{{Name: "main", Instrs: []eclfixture.Instr{
		{Op: isa.PUSH, ParamMask: 0b1, ParamCount: 1, Params: eclfixture.Slot(-10000)},
		{Op: isa.PRINTTOP},
		{Op: isa.RET},
	}}}

	out1, err := runProgram(t, machine.Lunatic, sub)
	require.NoError(t, err)
	out2, err := runProgram(t, machine.Lunatic, sub)
	require.NoError(t, err)
	assert.Equal(t, out1, out2, "same seed must produce the same RAND draw")
}

func TestWriteToBuiltinIsSilentNoOp(t *testing.T) {
	out, err := runProgram(t, machine.Lunatic, []eclfixture.Sub{
		{Name: "main", Instrs: []eclfixture.Instr{
			{Op: isa.STACKALLOC, ParamCount: 1, Params: eclfixture.U32(0)},
			{Op: isa.PUSH, ParamCount: 1, Params: eclfixture.I32(5)},
			{Op: isa.SET, ParamCount: 1, Params: eclfixture.I32(-9907)},
			{Op: isa.PRINTSTR, ParamCount: 1, Params: eclfixture.Str("ok")},
			{Op: isa.RET},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}
