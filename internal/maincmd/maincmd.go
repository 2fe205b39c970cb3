// Package maincmd implements the eclrun CLI: argument parsing and dispatch
// to the run/dump-header/dump-includes/disassemble commands.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "eclrun"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <file>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <file>
       %[1]s -h|--help
       %[1]s --version

Loads and runs an ECL script file.

Valid flag options are:
       -h --help                 Show this help and exit.
       --version                 Print version and exit.
       -d --difficulty <rank>    Difficulty to run under: easy, normal,
                                 hard or lunatic (default: lunatic).
       --seed <n>                Seed for the RAND/RANDF builtins
                                 (default: a fixed constant, for
                                 reproducible runs).
       -H --dump-header          Print the file header and exit, instead
                                 of running the script.
       -I --dump-includes        Print the ANIM/ECLI include lists and
                                 exit, instead of running the script.
       -D --disasm               Print a full disassembly and exit,
                                 instead of running the script.
       -v --verbose              Trace every executed instruction to
                                 stderr.
       --entry <name>            Subroutine to start execution at
                                 (default: main).
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help bool `flag:"h,help"`
	// Version has no short alias: -v is reserved for --verbose.
	Version bool `flag:"version"`

	Difficulty   string `flag:"d,difficulty"`
	Seed         int64  `flag:"seed"`
	DumpHeader   bool   `flag:"H,dump-header"`
	DumpIncludes bool   `flag:"I,dump-includes"`
	Disasm       bool   `flag:"D,disasm"`
	Verbose      bool   `flag:"v,verbose"`
	Entry        string `flag:"entry"`

	args []string
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) != 1 {
		return errors.New("exactly one <file> argument is required")
	}
	if c.Difficulty == "" {
		c.Difficulty = "lunatic"
	}
	if c.Entry == "" {
		c.Entry = "main"
	}
	modes := 0
	for _, b := range []bool{c.DumpHeader, c.DumpIncludes, c.Disasm} {
		if b {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("-H, -I and -D are mutually exclusive")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.dispatch(ctx, stdio); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return mainer.Failure
	}
	return mainer.Success
}

func (c *Cmd) dispatch(ctx context.Context, stdio mainer.Stdio) error {
	path := c.args[0]

	switch {
	case c.DumpHeader:
		return c.dumpHeader(stdio, path)
	case c.DumpIncludes:
		return c.dumpIncludes(stdio, path)
	case c.Disasm:
		return c.dumpDisasm(stdio, path)
	default:
		return c.run(ctx, stdio, path)
	}
}
