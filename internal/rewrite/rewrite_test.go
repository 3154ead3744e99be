package rewrite

import (
	"errors"
	"strings"
	"testing"

	"harshagw/phraser/internal/diag"
)

func TestPTBEscaper_Rewrite(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default error: %v", err)
	}

	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"(", "hi", ")"}, []string{"-LRB-", "hi", "-RRB-"}},
		{[]string{"[", "]", "{", "}"}, []string{"-LSB-", "-RSB-", "-LCB-", "-RCB-"}},
		{[]string{`"`, "hello", `"`, "and", `"`, "bye", `"`}, []string{"``", "hello", "''", "and", "``", "bye", "''"}},
		{[]string{"(hi)", "a&b"}, []string{"(hi)", "a&b"}},
		{nil, nil},
	}
	for _, tt := range tests {
		got, err := p.Rewrite(tt.in)
		if err != nil {
			t.Fatalf("Rewrite(%v) error: %v", tt.in, err)
		}
		if strings.Join(got, " ") != strings.Join(tt.want, " ") || len(got) != len(tt.in) {
			t.Errorf("Rewrite(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPTBEscaper_IsPure(t *testing.T) {
	p, _ := Default()
	in := []string{`"`, "x", `"`}
	first, _ := p.Rewrite(in)
	second, _ := p.Rewrite(in)
	if strings.Join(first, " ") != strings.Join(second, " ") {
		t.Errorf("repeated rewrite differs: %v vs %v", first, second)
	}
	if in[0] != `"` {
		t.Error("Rewrite modified its input")
	}
}

func TestPTBEscaper_InitRejectsBadTable(t *testing.T) {
	tests := [][][2]string{
		{{"(", ""}},
		{{"(", "-LRB-"}, {"(", "-X-"}},
		{{`"`, "``"}},
	}
	for _, pairs := range tests {
		e := &PTBEscaper{pairs: pairs}
		if err := e.Init(); !errors.Is(err, diag.ErrBadConfig) {
			t.Errorf("Init(%v): expected ErrBadConfig, got %v", pairs, err)
		}
	}
}

type dropper struct{}

func (dropper) Name() string { return "dropper" }

func (dropper) Init() error { return nil }

func (dropper) Rewrite(tokens []string) []string { return tokens[:0] }

func TestPipeline_RejectsCountChange(t *testing.T) {
	p, err := NewPipeline(dropper{})
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}
	if _, err := p.Rewrite([]string{"a"}); !errors.Is(err, diag.ErrInternal) {
		t.Errorf("expected ErrInternal, got %v", err)
	}
}

func TestPipeline_Names(t *testing.T) {
	p, _ := Default()
	if got := p.Names(); len(got) != 1 || got[0] != "ptb_escape" {
		t.Errorf("Names: got %v", got)
	}
}
