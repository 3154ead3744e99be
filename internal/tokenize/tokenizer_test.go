package tokenize

import (
	"testing"

	"harshagw/phraser/internal/ustring"
)

func TestWhitespace_SplitsOnSpace(t *testing.T) {
	got := NewWhitespace().Tokenize(ustring.FromString("a & b"))

	want := []string{"a", "&", "b"}
	if len(got.Tokens) != len(want) {
		t.Fatalf("tokens: got %v, want %v", got.Tokens, want)
	}
	for i := range want {
		if got.Tokens[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got.Tokens[i], want[i])
		}
	}

	spans := []ustring.Span{{Begin: 0, End: 1}, {Begin: 2, End: 3}, {Begin: 4, End: 5}}
	for i, s := range spans {
		if got.Spans[i] != s {
			t.Errorf("span %d: got %v, want %v", i, got.Spans[i], s)
		}
	}
}

func TestWhitespace_CollapsesRuns(t *testing.T) {
	text := ustring.FromString("  hello \t\n world ☃  ")
	got := NewWhitespace().Tokenize(text)

	if len(got.Tokens) != 3 || len(got.Spans) != 3 {
		t.Fatalf("got %v / %v", got.Tokens, got.Spans)
	}
	if got.Tokens[2] != "☃" {
		t.Errorf("non-ASCII token: got %q", got.Tokens[2])
	}
	for i, s := range got.Spans {
		if s.Len() == 0 {
			t.Errorf("span %d is empty", i)
		}
		if text.Slice(s).String() != got.Tokens[i] {
			t.Errorf("span %d covers %q, token is %q", i, text.Slice(s).String(), got.Tokens[i])
		}
		if i > 0 && s.Begin < got.Spans[i-1].End {
			t.Errorf("span %d overlaps previous", i)
		}
	}
}

func TestWhitespace_KeepsPunctuation(t *testing.T) {
	got := NewWhitespace().Tokenize(ustring.FromString("kill (you)."))
	if len(got.Tokens) != 2 || got.Tokens[1] != "(you)." {
		t.Errorf("tokens: got %v", got.Tokens)
	}
}

func TestWhitespace_Empty(t *testing.T) {
	for _, s := range []string{"", "   ", "\n\t"} {
		got := NewWhitespace().Tokenize(ustring.FromString(s))
		if len(got.Tokens) != 0 || len(got.Spans) != 0 {
			t.Errorf("%q: expected no tokens, got %v", s, got.Tokens)
		}
	}
}
