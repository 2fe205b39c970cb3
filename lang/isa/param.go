package isa

import (
	"encoding/binary"
	"math"

	"github.com/scriptvm/eclrun/lang/eclerr"
	"github.com/scriptvm/eclrun/lang/value"
)

// Param is one decoded instruction parameter: its literal value as read
// directly off the wire, and whether param_mask marked it as a variable
// reference rather than a literal.
type Param struct {
	Lit   value.Value
	IsVar bool
}

// Slot reinterprets the parameter's literal bits as a signed slot id, the
// way the VM must when param_mask indicates a variable reference (spec
// §4.2). A non-negative result names a frame-local; negative names a
// builtin; -1 is the data-stack-top sentinel.
func (p Param) Slot() int32 {
	switch v := p.Lit.(type) {
	case value.I32:
		return int32(v)
	case value.U32:
		return int32(uint32(v))
	case value.F32:
		return int32(math.Float32bits(float32(v)))
	default:
		return 0
	}
}

// DecodeParams decodes the parameter payload of an instruction according to
// its format string (one of 'i', 'u', 'f', 's' per character) and its
// param_mask, which marks which positions are variable references.
func DecodeParams(format string, mask uint16, data []byte) ([]Param, error) {
	params := make([]Param, 0, len(format))
	off := 0
	for i, c := range format {
		var lit value.Value
		switch c {
		case 'i':
			raw, err := readU32(data, off)
			if err != nil {
				return nil, err
			}
			lit = value.I32(int32(raw))
			off += 4
		case 'u':
			raw, err := readU32(data, off)
			if err != nil {
				return nil, err
			}
			lit = value.U32(raw)
			off += 4
		case 'f':
			raw, err := readU32(data, off)
			if err != nil {
				return nil, err
			}
			lit = value.F32(math.Float32frombits(raw))
			off += 4
		case 's':
			length, err := readU32(data, off)
			if err != nil {
				return nil, err
			}
			off += 4
			end := off + int(length)
			if end < off || end > len(data) {
				return nil, eclerr.New(eclerr.IoError, "truncated string parameter at offset %d", off)
			}
			raw := data[off:end]
			if n := len(raw); n > 0 && raw[n-1] == 0 {
				raw = raw[:n-1]
			}
			lit = value.Str(raw)
			off = end
		default:
			return nil, eclerr.New(eclerr.BadFormatChar, "unknown parameter format character %q", c)
		}

		params = append(params, Param{
			Lit:   lit,
			IsVar: mask&(1<<uint(i)) != 0,
		})
	}
	return params, nil
}

func readU32(data []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(data) {
		return 0, eclerr.New(eclerr.IoError, "truncated parameter data at offset %d", off)
	}
	return binary.LittleEndian.Uint32(data[off : off+4]), nil
}
