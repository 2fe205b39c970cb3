// Package disasm renders a loaded container as human-readable text: one
// line per subroutine header, one per instruction, operands printed as
// literals or $slot/builtin-name references.
package disasm

import (
	"fmt"
	"io"
	"sort"

	"github.com/scriptvm/eclrun/lang/container"
	"github.com/scriptvm/eclrun/lang/isa"
	"github.com/scriptvm/eclrun/lang/machine"
)

// Program writes the full disassembly of prog to w: its header summary,
// include lists, then every subroutine's instructions, subroutines sorted by
// name.
func Program(w io.Writer, prog *container.Program) error {
	if err := Header(w, prog); err != nil {
		return err
	}
	if err := Includes(w, prog); err != nil {
		return err
	}
	names := append([]string(nil), prog.SubNames...)
	sort.Strings(names)
	for _, name := range names {
		sub, _ := prog.Sub(name)
		fmt.Fprintf(w, "\nsub %s: ; @%d\n", sub.Name, sub.Start)
		if err := Subroutine(w, prog, sub); err != nil {
			return err
		}
	}
	return nil
}

// Header writes the file header summary, backing the "-H" dump mode.
func Header(w io.Writer, prog *container.Program) error {
	_, err := fmt.Fprintf(w, "revision %d, %d subroutine(s)\n", prog.Header.Revision, prog.Header.SubCount)
	return err
}

// Includes writes the ANIM and ECLI include lists, backing the "-I" dump
// mode. Either list may be empty; its tag is still printed so output stays
// well defined even with nothing under it.
func Includes(w io.Writer, prog *container.Program) error {
	for _, list := range []container.IncludeList{prog.Anim, prog.Ecli} {
		tag := list.Tag
		if tag == "" {
			continue
		}
		fmt.Fprintf(w, "%s:\n", tag)
		for _, name := range list.Names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}

// Subroutine disassembles every instruction of sub, stopping at the next
// subroutine's header or the end of the file image, whichever comes first.
func Subroutine(w io.Writer, prog *container.Program, sub *container.Subroutine) error {
	end := subEnd(prog, sub)
	addr := sub.Start
	for addr < end {
		ins, err := isa.Decode(prog.Buf, addr)
		if err != nil {
			return err
		}
		if err := Instruction(w, ins); err != nil {
			return err
		}
		addr = ins.Next()
	}
	return nil
}

// subEnd finds the byte offset one past sub's last instruction, i.e. the
// start of whichever subroutine's header follows it in file order, or the
// end of the file image if sub is last.
func subEnd(prog *container.Program, sub *container.Subroutine) uint32 {
	end := uint32(len(prog.Buf))
	for _, name := range prog.SubNames {
		other, _ := prog.Sub(name)
		if other.HeaderAddr > sub.HeaderAddr && other.HeaderAddr < end {
			end = other.HeaderAddr
		}
	}
	return end
}

// Instruction writes one instruction line: address, time, mnemonic, and its
// decoded operands.
func Instruction(w io.Writer, ins isa.Instruction) error {
	params, err := ins.Params()
	if err != nil {
		return err
	}
	line := fmt.Sprintf("  %6d t=%-6d %s", ins.Addr, ins.Time, ins.Op)
	for _, p := range params {
		line += " " + Operand(p)
	}
	if ins.RankMask != 0xF && ins.RankMask != 0 {
		line += fmt.Sprintf(" ; rank=%04b", ins.RankMask)
	}
	_, err = fmt.Fprintln(w, line)
	return err
}

// Operand renders a single decoded parameter: its literal text, or a
// "$name"/"$A" reference when it names a variable slot. A frame-local slot
// is named by letter ('A' + slot>>2); a builtin slot by its symbolic name
// where known, else its raw numeric id.
func Operand(p isa.Param) string {
	if !p.IsVar {
		return p.Lit.String()
	}
	slot := p.Slot()
	if slot >= 0 {
		return "$" + string(rune('A'+slot>>2))
	}
	if name, ok := machine.BuiltinNames[slot]; ok {
		return "$" + name
	}
	return fmt.Sprintf("$%d", slot)
}
