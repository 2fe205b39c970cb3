package maincmd

import (
	"os"

	"github.com/mna/mainer"
	"github.com/scriptvm/eclrun/lang/container"
	"github.com/scriptvm/eclrun/lang/disasm"
)

func loadProgram(path string) (*container.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return container.Load(f)
}

func (c *Cmd) dumpHeader(stdio mainer.Stdio, path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	return disasm.Header(stdio.Stdout, prog)
}

func (c *Cmd) dumpIncludes(stdio mainer.Stdio, path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	return disasm.Includes(stdio.Stdout, prog)
}

func (c *Cmd) dumpDisasm(stdio mainer.Stdio, path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	return disasm.Program(stdio.Stdout, prog)
}
