package value

import "strconv"

// F32 is a 32-bit floating-point value.
type F32 float32

var _ Value = F32(0)

func (f F32) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }
func (f F32) Type() string   { return "f32" }
