package categorize

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/couchbase/vellum/regexp"

	"harshagw/phraser/internal/diag"
)

// Regex matches whole tokens against regular expressions compiled to vellum
// automata. An expression matches when any of its patterns does.
type Regex struct {
	patterns []compiledPattern
	n        int
}

type compiledPattern struct {
	source string
	expr   uint32
	aut    *regexp.Regexp
}

// NewRegex compiles one automaton per payload line.
func NewRegex(exprs []Expression) (*Regex, error) {
	r := &Regex{n: len(exprs)}
	for _, e := range exprs {
		if len(e.Filters) > 0 {
			return nil, fmt.Errorf("%w: regex expressions take no filters", diag.ErrBadConfig)
		}
		if len(e.Args) == 0 {
			return nil, fmt.Errorf("%w: regex expression lists no patterns", diag.ErrBadConfig)
		}
		for _, src := range e.Args {
			aut, err := regexp.New(src)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid regex %q: %v", diag.ErrBadConfig, src, err)
			}
			r.patterns = append(r.patterns, compiledPattern{source: src, expr: uint32(e.ID), aut: aut})
		}
	}
	return r, nil
}

// NewRegexFactory is the registry factory for TypeRegex.
func NewRegexFactory(exprs []Expression, _ Env) (Evaluator, error) {
	r, err := NewRegex(exprs)
	if err != nil {
		return nil, err
	}
	return Bind[*roaring.Bitmap](r), nil
}

func (r *Regex) Type() string { return TypeRegex }

func (r *Regex) IsExpressionPossible(expr Expression) bool {
	return expr.Type == TypeRegex && len(expr.Filters) == 0 && expr.ID >= 0 && expr.ID < r.n
}

// DescribeTokens returns, per token, the ids of the expressions it matches.
// Repeated tokens are evaluated once.
func (r *Regex) DescribeTokens(tokens []string) []*roaring.Bitmap {
	descs := make([]*roaring.Bitmap, len(tokens))
	seen := make(map[string]*roaring.Bitmap)
	for i, tok := range tokens {
		if bm, ok := seen[tok]; ok {
			descs[i] = bm
			continue
		}
		var bm *roaring.Bitmap
		for _, p := range r.patterns {
			if bm != nil && bm.Contains(p.expr) {
				continue
			}
			if matchAutomaton(p.aut, tok) {
				if bm == nil {
					bm = roaring.New()
				}
				bm.Add(p.expr)
			}
		}
		seen[tok] = bm
		descs[i] = bm
	}
	return descs
}

func (r *Regex) IsMatch(expr Expression, _ string, desc *roaring.Bitmap) bool {
	return hasID(desc, expr)
}

// matchAutomaton runs aut over every byte of s and reports a full match.
func matchAutomaton(aut *regexp.Regexp, s string) bool {
	state := aut.Start()
	for i := 0; i < len(s); i++ {
		state = aut.Accept(state, s[i])
		if !aut.CanMatch(state) {
			return false
		}
	}
	return aut.IsMatch(state)
}
