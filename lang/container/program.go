// Package container implements the ECL file loader: it parses the binary
// container format into an in-memory graph of subroutines and include
// lists, validating structure and resolving offsets.
package container

import (
	"io"

	"github.com/dolthub/swiss"
	"github.com/scriptvm/eclrun/lang/eclerr"
)

// Program is a loaded ECL file: its header, its two include lists, and a
// lookup from subroutine name to its first-instruction address. The file
// image (Buf) is owned by Program and is immutable once loaded; subroutines
// are recorded as offsets into it, while include and subroutine names are
// copied out of it as Go strings.
type Program struct {
	Buf    []byte
	Header Header
	Anim   IncludeList
	Ecli   IncludeList

	// SubNames lists subroutine names in file order, so dumping always
	// visits them in a well-defined order even when a list is empty.
	SubNames []string

	subs *swiss.Map[string, *Subroutine]
}

// Load reads r fully into memory and parses it as an ECL container.
func Load(r io.Reader) (*Program, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, eclerr.Wrap(eclerr.IoError, err, "reading file")
	}

	hdr, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}

	includeEnd := hdr.IncludeOffset + uint32(hdr.IncludeLength)
	anim, ecli, subTableOff, err := parseIncludes(buf, hdr.IncludeOffset, includeEnd)
	if err != nil {
		return nil, err
	}

	subs, err := readSubTable(buf, subTableOff, hdr.SubCount)
	if err != nil {
		return nil, err
	}

	p := &Program{
		Buf:      buf,
		Header:   hdr,
		Anim:     anim,
		Ecli:     ecli,
		SubNames: make([]string, 0, len(subs)),
		subs:     swiss.NewMap[string, *Subroutine](uint32(len(subs))),
	}
	for _, s := range subs {
		p.subs.Put(s.Name, s)
		p.SubNames = append(p.SubNames, s.Name)
	}
	return p, nil
}

// Sub looks up a subroutine by name. The table is typically well under a
// hundred entries; swiss.Map gives O(1) lookup regardless.
func (p *Program) Sub(name string) (*Subroutine, bool) {
	return p.subs.Get(name)
}
