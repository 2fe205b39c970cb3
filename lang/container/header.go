package container

import (
	"encoding/binary"

	"github.com/scriptvm/eclrun/lang/eclerr"
)

// HeaderSize is the fixed size, in bytes, of the file header: magic(4) +
// revision(2) + include_length(2) + include_offset(4) + reserved(4) +
// sub_count(4) + reserved(16).
const HeaderSize = 36

// Magic is the 4-byte file magic every ECL container must start with.
const Magic = "SCPT"

// Header is the fixed-layout file header at offset 0.
type Header struct {
	Revision      uint16
	IncludeLength uint16
	IncludeOffset uint32
	SubCount      uint32
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, eclerr.New(eclerr.IoError, "file too small for header: %d bytes", len(buf))
	}
	if string(buf[0:4]) != Magic {
		return Header{}, eclerr.New(eclerr.InvalidMagic, "expected %q, got %q", Magic, buf[0:4])
	}
	return Header{
		Revision:      binary.LittleEndian.Uint16(buf[4:6]),
		IncludeLength: binary.LittleEndian.Uint16(buf[6:8]),
		IncludeOffset: binary.LittleEndian.Uint32(buf[8:12]),
		SubCount:      binary.LittleEndian.Uint32(buf[16:20]),
	}, nil
}
