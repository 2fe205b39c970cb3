package value

import "strconv"

// U32 is an unsigned 32-bit integer value.
type U32 uint32

var _ Value = U32(0)

func (u U32) String() string { return strconv.FormatUint(uint64(u), 10) }
func (u U32) Type() string   { return "u32" }
