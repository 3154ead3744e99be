package ustring

import "fmt"

// MaxLen is the largest text, in code points, the analyzer accepts.
const MaxLen = 1 << 16

// String is an owned sequence of code points.
type String []rune

// FromString decodes s into code points. Invalid UTF-8 becomes U+FFFD.
func FromString(s string) String {
	return String([]rune(s))
}

// String encodes the code points as UTF-8.
func (u String) String() string {
	return string(u)
}

// Len returns the number of code points.
func (u String) Len() int { return len(u) }

// Slice returns the code points covered by span.
func (u String) Slice(span Span) String {
	return u[span.Begin:span.End]
}

// Clone returns a copy that shares no storage with u.
func (u String) Clone() String {
	if u == nil {
		return nil
	}
	out := make(String, len(u))
	copy(out, u)
	return out
}

// Span is a half-open interval [Begin, End) over a String.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Len returns the number of code points in the span.
func (s Span) Len() int { return s.End - s.Begin }

// Valid reports whether the span fits in a buffer of length n.
func (s Span) Valid(n int) bool {
	return 0 <= s.Begin && s.Begin <= s.End && s.End <= n
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Begin, s.End)
}
