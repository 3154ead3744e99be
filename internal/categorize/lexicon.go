package categorize

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/lexicon"
)

// Lexicon describes each token by the feature ids the lexicon lists for it.
// An expression matches when the token carries every filter feature.
type Lexicon struct {
	lex      lexicon.Lexicon
	required []*roaring.Bitmap // expression id -> feature ids; nil when unsatisfiable
	n        int
}

// NewLexicon resolves each expression's filters to feature ids.
func NewLexicon(lex lexicon.Lexicon, exprs []Expression) (*Lexicon, error) {
	if lex == nil {
		return nil, fmt.Errorf("%w: lexicon expressions need a loaded lexicon", diag.ErrBadConfig)
	}
	if err := checkIDs(exprs); err != nil {
		return nil, fmt.Errorf("%w: %v", diag.ErrInternal, err)
	}
	c := &Lexicon{lex: lex, required: make([]*roaring.Bitmap, len(exprs)), n: len(exprs)}
	for _, e := range exprs {
		if len(e.Args) > 0 {
			return nil, fmt.Errorf("%w: lexicon expressions take no payload lines", diag.ErrBadConfig)
		}
		req := roaring.New()
		for dim, value := range e.Filters {
			id, ok := lex.Feature(dim, value)
			if !ok {
				// Known dimension with an unknown value never matches.
				req = nil
				break
			}
			req.Add(id)
		}
		c.required[e.ID] = req
	}
	return c, nil
}

// NewLexiconFactory is the registry factory for TypeLexicon.
func NewLexiconFactory(exprs []Expression, env Env) (Evaluator, error) {
	c, err := NewLexicon(env.Lexicon, exprs)
	if err != nil {
		return nil, err
	}
	return Bind[*roaring.Bitmap](c), nil
}

func (c *Lexicon) Type() string { return TypeLexicon }

func (c *Lexicon) IsExpressionPossible(expr Expression) bool {
	if expr.Type != TypeLexicon || expr.ID < 0 || expr.ID >= c.n {
		return false
	}
	for dim := range expr.Filters {
		if !c.lex.HasDimension(dim) {
			return false
		}
	}
	return true
}

func (c *Lexicon) DescribeTokens(tokens []string) []*roaring.Bitmap {
	descs := make([]*roaring.Bitmap, len(tokens))
	for i, tok := range tokens {
		descs[i] = c.lex.Lookup(tok)
	}
	return descs
}

// IsMatch requires the token to be in the lexicon and to carry every
// filter feature. An expression without filters matches any known word.
func (c *Lexicon) IsMatch(expr Expression, _ string, desc *roaring.Bitmap) bool {
	if desc == nil || expr.ID < 0 || expr.ID >= c.n {
		return false
	}
	req := c.required[expr.ID]
	if req == nil {
		return false
	}
	return req.AndCardinality(desc) == req.GetCardinality()
}
