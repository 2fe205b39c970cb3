// Package value implements the tagged value union manipulated by the ECL
// virtual machine: 32-bit signed and unsigned integers, 32-bit floats, and
// strings decoded from the loaded file image.
package value

// Value is the interface implemented by every value an ECL instruction can
// push, pop or store. A value's concrete type is its tag: arithmetic and
// comparison instructions never silently coerce across types.
type Value interface {
	// String returns a human-readable representation, used by PRINTTOP and by
	// the disassembler.
	String() string

	// Type returns a short name for the value's tag, e.g. "i32".
	Type() string
}
