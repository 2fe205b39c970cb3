package value

import "strconv"

// I32 is a signed 32-bit integer value.
type I32 int32

var _ Value = I32(0)

func (i I32) String() string { return strconv.FormatInt(int64(i), 10) }
func (i I32) Type() string   { return "i32" }
