package value

// Invalid is the default / error sentinel value. The interpreter does not
// store it in unwritten data stack slots: those hold nil, and a frame-local
// read from one yields I32(0).
type Invalid struct{}

var _ Value = Invalid{}

func (Invalid) String() string { return "<invalid>" }
func (Invalid) Type() string   { return "invalid" }
