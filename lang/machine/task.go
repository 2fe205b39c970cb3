package machine

import (
	"github.com/scriptvm/eclrun/lang/eclerr"
	"github.com/scriptvm/eclrun/lang/value"
)

// DefaultStackSize and DefaultCallStackSize bound a task's data and call
// stacks, so a runaway script reports StackOverflow/StackUnderflow as an
// ordinary error instead of exhausting memory.
const (
	DefaultStackSize     = 1024
	DefaultCallStackSize = 256
)

// TaskState is the lifecycle state of a task within the scheduler's task
// list.
type TaskState int

const (
	TaskRunning TaskState = iota
	TaskDone
	TaskFailed
)

// callFrame records what a CALL must restore on RET: the return address.
// The base pointer is not part of the call stack, which is just an array of
// return-to instruction pointers; it is saved and restored through the data
// stack itself by STACKALLOC/RET, the way a STACKALLOC 0 still needs to
// round-trip a bare frame with no locals.
type callFrame struct {
	ReturnAddr uint32
}

// Task is one cooperatively scheduled script instance: its own data stack,
// call stack, instruction pointer, and wait/time counters, all flattened
// into one struct since ECL has no separate closures or upvalues to track.
type Task struct {
	Name string

	Stack []value.Value
	SP    int // number of live slots in Stack; Stack[SP-1] is the top
	BP    int // base pointer: frame-local slot 0 is Stack[BP]

	Calls []callFrame
	CSP   int

	IP   uint32
	Time uint32
	Wait uint32

	State TaskState
	// FailErr is set when State is TaskFailed, carrying the error that
	// caused it. The scheduler stops at the first failed task and returns
	// its error.
	FailErr error
}

// NewTask returns a task ready to begin executing at startAddr.
func NewTask(name string, startAddr uint32) *Task {
	return &Task{
		Name:  name,
		Stack: make([]value.Value, DefaultStackSize),
		Calls: make([]callFrame, DefaultCallStackSize),
		IP:    startAddr,
		State: TaskRunning,
	}
}

// Push appends v to the top of the data stack.
func (t *Task) Push(v value.Value) error {
	if t.SP >= len(t.Stack) {
		return eclerr.New(eclerr.StackOverflow, "task %q: data stack overflow at depth %d", t.Name, t.SP)
	}
	t.Stack[t.SP] = v
	t.SP++
	return nil
}

// Pop removes and returns the top of the data stack.
func (t *Task) Pop() (value.Value, error) {
	if t.SP <= t.BP {
		return nil, eclerr.New(eclerr.StackUnderflow, "task %q: data stack underflow at depth %d", t.Name, t.SP)
	}
	t.SP--
	v := t.Stack[t.SP]
	t.Stack[t.SP] = nil
	return v, nil
}

// Peek returns the top of the data stack without removing it.
func (t *Task) Peek() (value.Value, error) {
	if t.SP <= t.BP {
		return nil, eclerr.New(eclerr.StackUnderflow, "task %q: data stack underflow at depth %d", t.Name, t.SP)
	}
	return t.Stack[t.SP-1], nil
}

// Local returns a pointer to the idx'th frame-local slot, Stack[BP+idx]. It
// never grows the stack: a position outside the data stack fails with
// StackOverflow. A slot that was never written holds nil, which
// resolveSlot reads as I32(0).
func (t *Task) Local(idx int) (*value.Value, error) {
	pos := t.BP + idx
	if pos < 0 || pos >= len(t.Stack) {
		return nil, eclerr.New(eclerr.StackOverflow, "task %q: local slot %d out of range", t.Name, idx)
	}
	return &t.Stack[pos], nil
}

// PushCall records a return address for RET to jump back to later.
func (t *Task) PushCall(returnAddr uint32) error {
	if t.CSP >= len(t.Calls) {
		return eclerr.New(eclerr.StackOverflow, "task %q: call stack overflow at depth %d", t.Name, t.CSP)
	}
	t.Calls[t.CSP] = callFrame{ReturnAddr: returnAddr}
	t.CSP++
	return nil
}

// PopCall removes and returns the most recent call frame.
func (t *Task) PopCall() (callFrame, error) {
	if t.CSP <= 0 {
		return callFrame{}, eclerr.New(eclerr.StackUnderflow, "task %q: call stack underflow", t.Name)
	}
	t.CSP--
	return t.Calls[t.CSP], nil
}
