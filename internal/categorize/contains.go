package categorize

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	aho "github.com/petar-dambovaliev/aho-corasick"

	"harshagw/phraser/internal/diag"
)

// Contains matches tokens containing any of an expression's substrings. All
// needles of all expressions share one Aho-Corasick automaton.
type Contains struct {
	automaton aho.AhoCorasick
	owners    []*roaring.Bitmap // needle index -> expression ids
	n         int
}

// NewContains builds the automaton over every payload line.
func NewContains(exprs []Expression) (*Contains, error) {
	index := make(map[string]int)
	var needles []string
	var owners []*roaring.Bitmap
	for _, e := range exprs {
		if len(e.Filters) > 0 {
			return nil, fmt.Errorf("%w: contains expressions take no filters", diag.ErrBadConfig)
		}
		if len(e.Args) == 0 {
			return nil, fmt.Errorf("%w: contains expression lists no substrings", diag.ErrBadConfig)
		}
		for _, s := range e.Args {
			if s == "" {
				return nil, fmt.Errorf("%w: empty substring", diag.ErrBadConfig)
			}
			i, ok := index[s]
			if !ok {
				i = len(needles)
				index[s] = i
				needles = append(needles, s)
				owners = append(owners, roaring.New())
			}
			owners[i].Add(uint32(e.ID))
		}
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	return &Contains{
		automaton: builder.Build(needles),
		owners:    owners,
		n:         len(exprs),
	}, nil
}

// NewContainsFactory is the registry factory for TypeContains.
func NewContainsFactory(exprs []Expression, _ Env) (Evaluator, error) {
	c, err := NewContains(exprs)
	if err != nil {
		return nil, err
	}
	return Bind[*roaring.Bitmap](c), nil
}

func (c *Contains) Type() string { return TypeContains }

func (c *Contains) IsExpressionPossible(expr Expression) bool {
	return expr.Type == TypeContains && len(expr.Filters) == 0 && expr.ID >= 0 && expr.ID < c.n
}

// DescribeTokens returns, per token, the ids of the expressions with a
// substring occurring in it.
func (c *Contains) DescribeTokens(tokens []string) []*roaring.Bitmap {
	descs := make([]*roaring.Bitmap, len(tokens))
	for i, tok := range tokens {
		var bm *roaring.Bitmap
		iter := c.automaton.IterOverlappingByte([]byte(tok))
		for next := iter.Next(); next != nil; next = iter.Next() {
			if bm == nil {
				bm = roaring.New()
			}
			bm.Or(c.owners[next.Pattern()])
		}
		descs[i] = bm
	}
	return descs
}

func (c *Contains) IsMatch(expr Expression, _ string, desc *roaring.Bitmap) bool {
	return hasID(desc, expr)
}
