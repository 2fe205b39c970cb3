package container

import (
	"encoding/binary"

	"github.com/scriptvm/eclrun/lang/eclerr"
)

// SubHeaderMagic is the 4-byte magic every subroutine header starts with.
const SubHeaderMagic = "ECLH"

// SubHeaderSize is the fixed size, in bytes, of a subroutine header: magic(4)
// + data offset(4) + reserved(8).
const SubHeaderSize = 16

// Subroutine is a named, callable sequence of instructions.
type Subroutine struct {
	Name string
	// HeaderAddr is the byte offset of the subroutine's ECLH header.
	HeaderAddr uint32
	// Start is the byte offset of the subroutine's first instruction.
	Start uint32
}

// readSubTable reads the subroutine offset table starting at off: sub_count
// u32 offsets, followed by sub_count null-terminated names. It validates
// each referenced offset begins with the ECLH magic.
func readSubTable(buf []byte, off uint32, count uint32) ([]*Subroutine, error) {
	if uint64(off)+uint64(count)*4 > uint64(len(buf)) {
		return nil, eclerr.New(eclerr.IoError, "truncated subroutine offset table at offset %d", off)
	}

	offsets := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		offsets[i] = binary.LittleEndian.Uint32(buf[off+i*4 : off+i*4+4])
	}
	cursor := off + count*4

	subs := make([]*Subroutine, count)
	for i := uint32(0); i < count; i++ {
		name, next, err := readCString(buf, cursor)
		if err != nil {
			return nil, err
		}
		cursor = next

		hdrAddr := offsets[i]
		if uint64(hdrAddr)+SubHeaderSize > uint64(len(buf)) {
			return nil, eclerr.New(eclerr.InvalidSub, "subroutine %q header at offset %d exceeds file size", name, hdrAddr)
		}
		if string(buf[hdrAddr:hdrAddr+4]) != SubHeaderMagic {
			return nil, eclerr.New(eclerr.InvalidSub, "subroutine %q: expected magic %q at offset %d, got %q", name, SubHeaderMagic, hdrAddr, buf[hdrAddr:hdrAddr+4])
		}

		subs[i] = &Subroutine{
			Name:       name,
			HeaderAddr: hdrAddr,
			Start:      hdrAddr + SubHeaderSize,
		}
	}
	return subs, nil
}
