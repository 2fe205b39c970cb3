package machine

import (
	"github.com/dolthub/swiss"
	"github.com/scriptvm/eclrun/lang/value"
)

// BuiltinFunc computes the current value of a builtin (global) variable.
type BuiltinFunc func(t *Task, g *Globals) value.Value

// builtins is the sparse table of negative-slot builtin variables, keyed by
// the literal negative id used in the script. It is populated once; lookups
// use the same swiss.Map the container package uses for its subroutine
// table.
var builtins = newBuiltins()

// BuiltinNames gives the symbolic name the disassembler prints for a
// negative slot id.
var BuiltinNames = map[int32]string{
	-10000: "RAND",
	-9999:  "RANDF",
	-9988:  "TIME",
	-9959:  "DIFF",
	-9953:  "EASY",
	-9952:  "NORMAL",
	-9951:  "HARD",
	-9950:  "LUNATIC",
	-9907:  "SPELL_ID",
	-1:     "TOS",
}

func newBuiltins() *swiss.Map[int32, BuiltinFunc] {
	m := swiss.NewMap[int32, BuiltinFunc](32)

	m.Put(-10000, func(t *Task, g *Globals) value.Value { return value.I32(g.RNG.Int31()) })
	m.Put(-9999, func(t *Task, g *Globals) value.Value { return value.F32(g.RNG.Float32()) })
	m.Put(-9988, func(t *Task, g *Globals) value.Value { return value.U32(t.Time) })
	m.Put(-9959, func(t *Task, g *Globals) value.Value { return value.I32(rankIndex(g.Difficulty)) })
	m.Put(-9953, func(t *Task, g *Globals) value.Value { return flag(g.Difficulty == Easy) })
	m.Put(-9952, func(t *Task, g *Globals) value.Value { return flag(g.Difficulty == Normal) })
	m.Put(-9951, func(t *Task, g *Globals) value.Value { return flag(g.Difficulty == Hard) })
	m.Put(-9950, func(t *Task, g *Globals) value.Value { return flag(g.Difficulty == Lunatic) })
	m.Put(-9907, func(t *Task, g *Globals) value.Value { return value.I32(0) }) // SPELL_ID, external
	m.Put(-9989, func(t *Task, g *Globals) value.Value { return value.U32(g.Timeout) })
	BuiltinNames[-9989] = "TIMEOUT"

	// -9997, -9996: player position, the only geometric placeholders with
	// anything behind them since the interpreter never simulates the rest of
	// the entity/stage state.
	m.Put(-9997, func(t *Task, g *Globals) value.Value { return value.F32(g.PlayerX) })
	BuiltinNames[-9997] = "PLAYER_X"
	m.Put(-9996, func(t *Task, g *Globals) value.Value { return value.F32(g.PlayerY) })
	BuiltinNames[-9996] = "PLAYER_Y"

	// -9995..-9990: remaining geometric placeholders (enemy/bullet position
	// and similar), always zero since there is no game world to read them
	// from.
	for id := int32(-9995); id <= -9990; id++ {
		geomName(id) // registers a BuiltinNames entry as a side effect
		m.Put(id, func(t *Task, g *Globals) value.Value { return value.F32(0) })
	}

	return m
}

func geomName(id int32) string {
	name := "GEOM" + itoa(id+9995)
	BuiltinNames[id] = name
	return name
}

func itoa(n int32) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func rankIndex(r Rank) int32 {
	switch r {
	case Easy:
		return 0
	case Normal:
		return 1
	case Hard:
		return 2
	case Lunatic:
		return 3
	default:
		return 0
	}
}

func flag(b bool) value.Value {
	if b {
		return value.I32(1)
	}
	return value.I32(0)
}
