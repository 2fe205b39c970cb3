package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/scriptvm/eclrun/lang/eclerr"
	"github.com/scriptvm/eclrun/lang/machine"
)

func (c *Cmd) run(_ context.Context, stdio mainer.Stdio, path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}

	sub, ok := prog.Sub(c.Entry)
	if !ok {
		return eclerr.New(eclerr.MissingSub, "entry subroutine %q not found", c.Entry)
	}

	rank, err := machine.ParseRank(c.Difficulty)
	if err != nil {
		return err
	}

	seed := uint64(c.Seed)
	if seed == 0 {
		seed = machine.DefaultSeed
	}

	g := machine.NewGlobals(rank, seed)
	g.Verbose = c.Verbose
	g.Stdout = stdio.Stdout
	g.Stderr = stdio.Stderr

	sched := machine.NewScheduler(prog, g, sub.Start, c.Entry)
	if err := sched.Run(); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}
