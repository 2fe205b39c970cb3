package container

import (
	"encoding/binary"

	"github.com/scriptvm/eclrun/lang/eclerr"
)

// IncludeList is one ANIM or ECLI include-region: a tag and the strings it
// lists (animation file names, or ECL include file names, respectively).
type IncludeList struct {
	Tag   string
	Names []string
}

const (
	tagAnim = "ANIM"
	tagEcli = "ECLI"
)

// parseIncludes walks include-regions starting at start and ending at end:
// each list is padded out to the next 4-byte boundary, and the walk itself
// stops at header.include_offset + header.include_length. It returns the
// ANIM and ECLI lists (either may be the zero value if absent) and the
// offset immediately following the last region, which is where the
// subroutine offset table begins.
func parseIncludes(buf []byte, start, end uint32) (anim, ecli IncludeList, next uint32, err error) {
	cursor := start
	for cursor < end {
		if cursor+8 > uint32(len(buf)) {
			return anim, ecli, 0, eclerr.New(eclerr.IoError, "truncated include region at offset %d", cursor)
		}
		tag := string(buf[cursor : cursor+4])
		count := binary.LittleEndian.Uint32(buf[cursor+4 : cursor+8])
		cursor += 8

		names := make([]string, 0, count)
		for i := uint32(0); i < count; i++ {
			s, next, err := readCString(buf, cursor)
			if err != nil {
				return anim, ecli, 0, err
			}
			names = append(names, s)
			cursor = next
		}

		list := IncludeList{Tag: tag, Names: names}
		switch tag {
		case tagAnim:
			anim = list
		case tagEcli:
			ecli = list
		default:
			return anim, ecli, 0, eclerr.New(eclerr.UnknownInclude, "unknown include tag %q", tag)
		}

		// round up to the next 4-byte boundary
		cursor = (cursor + 3) &^ 3
	}
	return anim, ecli, cursor, nil
}

func readCString(buf []byte, off uint32) (string, uint32, error) {
	start := off
	for off < uint32(len(buf)) && buf[off] != 0 {
		off++
	}
	if off >= uint32(len(buf)) {
		return "", 0, eclerr.New(eclerr.IoError, "unterminated string at offset %d", start)
	}
	return string(buf[start:off]), off + 1, nil
}
