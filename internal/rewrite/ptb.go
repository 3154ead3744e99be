package rewrite

import (
	"fmt"

	"harshagw/phraser/internal/diag"
)

const (
	openQuote  = "``"
	closeQuote = "''"
)

var ptbPairs = [][2]string{
	{"(", "-LRB-"},
	{")", "-RRB-"},
	{"[", "-LSB-"},
	{"]", "-RSB-"},
	{"{", "-LCB-"},
	{"}", "-RCB-"},
}

// PTBEscaper applies Penn Treebank token escaping. A bare '"' token becomes
// `` or '' depending on whether it opens or closes a quotation; quotes
// alternate starting with an opening one.
type PTBEscaper struct {
	pairs [][2]string
	s2s   map[string]string
}

func NewPTBEscaper() *PTBEscaper {
	return &PTBEscaper{pairs: ptbPairs}
}

func (e *PTBEscaper) Name() string { return "ptb_escape" }

func (e *PTBEscaper) Init() error {
	s2s := make(map[string]string, len(e.pairs))
	for _, p := range e.pairs {
		from, to := p[0], p[1]
		if from == "" || to == "" {
			return fmt.Errorf("%w: empty PTB mapping %q -> %q", diag.ErrBadConfig, from, to)
		}
		if from == `"` {
			return fmt.Errorf("%w: '\"' is escaped by position and cannot be mapped", diag.ErrBadConfig)
		}
		if _, dup := s2s[from]; dup {
			return fmt.Errorf("%w: duplicate PTB mapping for %q", diag.ErrBadConfig, from)
		}
		s2s[from] = to
	}
	e.s2s = s2s
	return nil
}

func (e *PTBEscaper) Rewrite(tokens []string) []string {
	out := make([]string, len(tokens))
	opening := true
	for i, tok := range tokens {
		if tok == `"` {
			if opening {
				out[i] = openQuote
			} else {
				out[i] = closeQuote
			}
			opening = !opening
			continue
		}
		if to, ok := e.s2s[tok]; ok {
			out[i] = to
			continue
		}
		out[i] = tok
	}
	return out
}
