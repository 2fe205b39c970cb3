package value

import "strconv"

// Str is the content of a null-terminated string parameter from the loaded
// file image, without its terminator. It is a plain Go string copied out of
// the image when the parameter is decoded, so it does not keep the image
// alive.
type Str string

var _ Value = Str("")

func (s Str) String() string { return strconv.Quote(string(s)) }
func (s Str) Type() string   { return "string" }

// Text returns the raw (unquoted) string content.
func (s Str) Text() string { return string(s) }
