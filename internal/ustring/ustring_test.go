package ustring

import "testing"

func TestFromString_CountsCodePoints(t *testing.T) {
	u := FromString("héllo☃")
	if u.Len() != 6 {
		t.Fatalf("Len: got %d, want 6", u.Len())
	}
	if u.String() != "héllo☃" {
		t.Errorf("round trip: got %q", u.String())
	}
}

func TestSlice(t *testing.T) {
	u := FromString("a b☃c")
	got := u.Slice(Span{Begin: 2, End: 4}).String()
	if got != "b☃" {
		t.Errorf("Slice: got %q, want %q", got, "b☃")
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	u := FromString("abc")
	c := u.Clone()
	c[0] = 'z'
	if u[0] != 'a' {
		t.Error("Clone shares storage with the source")
	}
	if String(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestSpan_Valid(t *testing.T) {
	tests := []struct {
		span Span
		n    int
		want bool
	}{
		{Span{0, 0}, 0, true},
		{Span{0, 3}, 3, true},
		{Span{2, 1}, 3, false},
		{Span{-1, 1}, 3, false},
		{Span{1, 4}, 3, false},
	}
	for _, tt := range tests {
		if got := tt.span.Valid(tt.n); got != tt.want {
			t.Errorf("%v.Valid(%d): got %v, want %v", tt.span, tt.n, got, tt.want)
		}
	}
}
