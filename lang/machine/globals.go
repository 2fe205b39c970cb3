package machine

import (
	"io"
	"os"

	"golang.org/x/exp/rand"
)

// Globals is the execution context shared, read-only except for Chapter, by
// every task the scheduler steps. Passing it explicitly, rather than
// reaching for module-level mutable state, keeps running multiple programs
// (or the same program with different seeds/difficulties) independent.
type Globals struct {
	// Difficulty is the active rank bitmask instructions are filtered
	// against.
	Difficulty Rank

	// Chapter is mutated by the SETCHAPTER instruction.
	Chapter uint32

	// Verbose, when true, makes the scheduler trace every executed
	// instruction as disassembled text (CLI -v/--verbose).
	Verbose bool

	// RNG backs the RAND/RANDF builtins. Using a seeded
	// golang.org/x/exp/rand source (rather than the unseeded, global
	// math/rand source) is what makes a run reproducible given a seed.
	RNG *rand.Rand

	// PlayerX, PlayerY and Timeout feed the PLAYER_X/PLAYER_Y/TIMEOUT
	// builtin variables. The interpreter never simulates player movement or
	// a stage clock itself, so these stay at their zero value unless a
	// caller embedding this package sets them before a run.
	PlayerX, PlayerY float32
	Timeout          uint32

	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobals returns a Globals with the given difficulty and RNG seed, and
// Stdout/Stderr defaulted to os.Stdout/os.Stderr.
func NewGlobals(difficulty Rank, seed uint64) *Globals {
	return &Globals{
		Difficulty: difficulty,
		RNG:        rand.New(rand.NewSource(seed)),
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// DefaultSeed is used when the CLI is not given an explicit --seed, so that
// two runs of the same file produce the same RAND sequence unless the user
// asks otherwise.
const DefaultSeed = 0xEC110
