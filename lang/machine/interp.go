package machine

import (
	"fmt"

	"github.com/scriptvm/eclrun/lang/container"
	"github.com/scriptvm/eclrun/lang/eclerr"
	"github.com/scriptvm/eclrun/lang/isa"
	"github.com/scriptvm/eclrun/lang/value"
)

// Status is the outcome of a single Step call.
type Status int

const (
	// StatusOk means the task executed an instruction and is ready to run
	// again on the same tick.
	StatusOk Status = iota
	// StatusBlocked means the task is waiting (an explicit WAIT count, or
	// its next instruction's Time has not yet been reached) and the
	// scheduler should move on to the next task this tick.
	StatusBlocked
	// StatusDone means the task's top-level subroutine returned.
	StatusDone
	// StatusFailure means Step returned an error; the task is no longer
	// runnable.
	StatusFailure
)

// spawner lets CALLASYNC hand a new task off to whatever owns the task
// list, without Step needing to know about the scheduler itself.
type spawner func(startAddr uint32, name string)

// Step executes at most one instruction of t against prog and g, spawning
// any child tasks via spawn. It implements the per-opcode semantics of spec
// §4.3.
func Step(t *Task, prog *container.Program, g *Globals, spawn spawner) (Status, error) {
	if t.Wait > 0 {
		t.Wait--
		return StatusBlocked, nil
	}

	ins, err := isa.Decode(prog.Buf, t.IP)
	if err != nil {
		return StatusFailure, err
	}

	if ins.Time > t.Time {
		return StatusBlocked, nil
	}

	if !ins.RankMatches(uint8(g.Difficulty)) {
		t.IP = ins.Next()
		return StatusOk, nil
	}

	params, err := ins.Params()
	if err != nil {
		return StatusFailure, err
	}

	if g.Verbose {
		fmt.Fprintf(g.Stderr, "%s@%d t=%d: %s\n", t.Name, ins.Addr, t.Time, disasmLine(ins, params))
	}

	next := ins.Next()

	switch ins.Op {
	case isa.NOP:
		// no-op

	case isa.DELETE:
		// no effect: there is no game-side entity to delete

	case isa.RET:
		// sp <- bp, then bp <- pop() as u32: the slot STACKALLOC saved the
		// caller's bp into sits immediately below the frame it opened. A sub
		// that never called STACKALLOC leaves nothing there; bp simply stays
		// 0 in that case.
		t.SP = t.BP
		if t.SP > 0 {
			t.SP--
			saved := t.Stack[t.SP]
			t.Stack[t.SP] = nil
			t.BP = int(asU32(saved))
		} else {
			t.BP = 0
		}
		if t.CSP == 0 {
			t.IP = next
			return StatusDone, nil
		}
		frame, err := t.PopCall()
		if err != nil {
			return StatusFailure, err
		}
		t.IP = frame.ReturnAddr
		return StatusOk, nil

	case isa.CALL:
		name := string(params[0].Lit.(value.Str))
		sub, ok := prog.Sub(name)
		if !ok {
			return StatusFailure, eclerr.New(eclerr.MissingSub, "call to unknown subroutine %q", name)
		}
		if err := t.PushCall(next); err != nil {
			return StatusFailure, err
		}
		t.IP = sub.Start
		return StatusOk, nil

	case isa.CALLASYNC:
		name := string(params[0].Lit.(value.Str))
		sub, ok := prog.Sub(name)
		if !ok {
			return StatusFailure, eclerr.New(eclerr.MissingSub, "callAsync to unknown subroutine %q", name)
		}
		spawn(sub.Start, name)
		t.IP = next

	case isa.JMP:
		// Branch targets are byte offsets relative to this instruction's own
		// start, not absolute addresses.
		offset, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		t.IP = uint32(int64(ins.Addr) + int64(asI32(offset)))
		return StatusOk, nil

	case isa.JMPEQ, isa.JMPNEQ:
		offset, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		cond, err := t.Pop()
		if err != nil {
			return StatusFailure, err
		}
		taken := asI32(cond) == 0
		if ins.Op == isa.JMPNEQ {
			taken = !taken
		}
		if taken {
			t.IP = uint32(int64(ins.Addr) + int64(asI32(offset)))
		} else {
			t.IP = next
		}
		return StatusOk, nil

	case isa.WAIT:
		n, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		t.IP = next
		if w := uint32(asI32(n)); w > t.Wait {
			t.Wait = w
		}
		if t.Wait == 0 {
			// WAIT(0) is a no-op: fall through to StatusOk below instead of
			// ceding the rest of this tick.
			break
		}
		return StatusBlocked, nil

	case isa.STACKALLOC:
		n, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		count := int(asU32(n)) >> 2
		// STACKALLOC 0 still pushes the old bp and sets bp <- sp, even
		// though count is 0.
		if t.SP+1+count > len(t.Stack) {
			return StatusFailure, eclerr.New(eclerr.StackOverflow, "task %q: stackAlloc(%d) overflows data stack", t.Name, count)
		}
		t.Stack[t.SP] = value.U32(uint32(t.BP))
		t.SP++
		t.BP = t.SP
		for i := 0; i < count; i++ {
			t.Stack[t.SP+i] = value.I32(0)
		}
		t.SP += count

	case isa.PUSH, isa.PUSHF:
		v, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		if err := t.Push(v); err != nil {
			return StatusFailure, err
		}

	case isa.SET, isa.SETF:
		popped, err := t.Pop()
		if err != nil {
			return StatusFailure, err
		}
		if err := WriteVariable(t, g, params[0].Slot(), popped); err != nil {
			return StatusFailure, err
		}

	case isa.DECI:
		slot := params[0].Slot()
		cur, err := resolveSlot(t, g, slot)
		if err != nil {
			return StatusFailure, err
		}
		if err := t.Push(cur); err != nil {
			return StatusFailure, err
		}
		if err := WriteVariable(t, g, slot, value.I32(asI32(cur)-1)); err != nil {
			return StatusFailure, err
		}

	case isa.ADDI:
		if err := binOpI(t, func(a, b int32) int32 { return a + b }); err != nil {
			return StatusFailure, err
		}
	case isa.ADDF:
		if err := binOpF(t, func(a, b float32) float32 { return a + b }); err != nil {
			return StatusFailure, err
		}
	case isa.MULI:
		if err := binOpI(t, func(a, b int32) int32 { return a * b }); err != nil {
			return StatusFailure, err
		}
	case isa.MODI:
		if err := binOpI(t, func(a, b int32) int32 {
			if b == 0 {
				return 0
			}
			return a % b
		}); err != nil {
			return StatusFailure, err
		}
	case isa.EQI:
		if err := binOpI(t, func(a, b int32) int32 {
			if a == b {
				return 1
			}
			return 0
		}); err != nil {
			return StatusFailure, err
		}
	case isa.LESSI:
		if err := binOpI(t, func(a, b int32) int32 {
			if a < b {
				return 1
			}
			return 0
		}); err != nil {
			return StatusFailure, err
		}

	case isa.PRINTTOP:
		v, err := t.Peek()
		if err != nil {
			return StatusFailure, err
		}
		fmt.Fprintln(g.Stdout, v.String())

	case isa.PRINTSTR:
		fmt.Fprintln(g.Stdout, string(params[0].Lit.(value.Str)))

	case isa.PUTS:
		fmt.Fprint(g.Stdout, string(params[0].Lit.(value.Str)))

	case isa.PUTI:
		v, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		fmt.Fprintf(g.Stdout, "%d", asI32(v))

	case isa.PUTF:
		v, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		fmt.Fprintf(g.Stdout, "%g", asF32(v))

	case isa.ENDL:
		fmt.Fprintln(g.Stdout)

	case isa.FLAGSET:
		// Accepted and ignored: there is no sprite/render state to set flags
		// on, but scripts still issue the instruction.

	case isa.SETCHAPTER:
		v, err := operandValue(t, g, params[0])
		if err != nil {
			return StatusFailure, err
		}
		g.Chapter = asU32(v)

	default:
		return StatusFailure, eclerr.New(eclerr.UnknownOpcode, "opcode %d (%s) not implemented", uint16(ins.Op), ins.Op)
	}

	t.IP = next
	return StatusOk, nil
}

// operandValue resolves a decoded parameter to the value it denotes: its
// literal bits if it is not a variable reference, or the current value of
// the slot it names if it is. This is for operands that are read, not
// written: a write-target operand (SET/SETF/DECI's destination) is always a
// slot id in its own right and must be read via Param.Slot() directly,
// never round-tripped through operandValue/resolveSlot.
func operandValue(t *Task, g *Globals, p isa.Param) (value.Value, error) {
	if !p.IsVar {
		return p.Lit, nil
	}
	return resolveSlot(t, g, p.Slot())
}

// resolveSlot reads the current value of slot: -1 pops the data stack, a
// negative slot below that looks up a builtin variable, and a non-negative
// slot reads a frame-local.
func resolveSlot(t *Task, g *Globals, slot int32) (value.Value, error) {
	if slot == -1 {
		return t.Pop()
	}
	if slot < 0 {
		fn, ok := builtins.Get(slot)
		if !ok {
			return nil, eclerr.New(eclerr.StackUnderflow, "unknown builtin variable slot %d", slot)
		}
		return fn(t, g), nil
	}
	p, err := t.Local(int(slot >> 2))
	if err != nil {
		return nil, err
	}
	if *p == nil {
		return value.I32(0), nil
	}
	return *p, nil
}

// WriteVariable writes v to slot. Writes to negative (builtin) slots are
// silent no-ops: the builtin table is read-only from script code.
func WriteVariable(t *Task, g *Globals, slot int32, v value.Value) error {
	if slot < 0 {
		return nil
	}
	p, err := t.Local(int(slot >> 2))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func binOpI(t *Task, op func(a, b int32) int32) error {
	b, err := t.Pop()
	if err != nil {
		return err
	}
	a, err := t.Pop()
	if err != nil {
		return err
	}
	return t.Push(value.I32(op(asI32(a), asI32(b))))
}

func binOpF(t *Task, op func(a, b float32) float32) error {
	b, err := t.Pop()
	if err != nil {
		return err
	}
	a, err := t.Pop()
	if err != nil {
		return err
	}
	return t.Push(value.F32(op(asF32(a), asF32(b))))
}

// asI32, asU32 and asF32 assert a value's tag directly: a type mismatch
// here is a malformed-script bug, not a condition the interpreter recovers
// from, so it panics rather than threading an error return through every
// arithmetic op.
func asI32(v value.Value) int32 { return int32(v.(value.I32)) }
func asU32(v value.Value) uint32 {
	if u, ok := v.(value.U32); ok {
		return uint32(u)
	}
	return uint32(v.(value.I32))
}
func asF32(v value.Value) float32 { return float32(v.(value.F32)) }

func disasmLine(ins isa.Instruction, params []isa.Param) string {
	s := ins.Op.String()
	for _, p := range params {
		if p.IsVar {
			s += fmt.Sprintf(" $%d", p.Slot())
		} else {
			s += " " + p.Lit.String()
		}
	}
	return s
}
