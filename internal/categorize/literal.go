package categorize

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring"
	"github.com/couchbase/vellum"

	"harshagw/phraser/internal/diag"
)

// Literal matches tokens against fixed word lists. Words are kept in an FST
// whose values index the set of expressions listing that word.
type Literal struct {
	fst  *vellum.FST
	sets []*roaring.Bitmap
	n    int
}

// NewLiteral builds a literal categorizer. Each expression lists its words in
// Args, already normalized the way tokens are.
func NewLiteral(exprs []Expression) (*Literal, error) {
	words := make(map[string]*roaring.Bitmap)
	for _, e := range exprs {
		if len(e.Filters) > 0 {
			return nil, fmt.Errorf("%w: literal expressions take no filters", diag.ErrBadConfig)
		}
		if len(e.Args) == 0 {
			return nil, fmt.Errorf("%w: literal expression lists no words", diag.ErrBadConfig)
		}
		for _, w := range e.Args {
			if w == "" || strings.IndexFunc(w, unicode.IsSpace) >= 0 {
				return nil, fmt.Errorf("%w: literal word %q is not a single token", diag.ErrBadConfig, w)
			}
			bm, ok := words[w]
			if !ok {
				bm = roaring.New()
				words[w] = bm
			}
			bm.Add(uint32(e.ID))
		}
	}

	sorted := make([]string, 0, len(words))
	for w := range words {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)

	var buf bytes.Buffer
	b, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}
	sets := make([]*roaring.Bitmap, len(sorted))
	for i, w := range sorted {
		if err := b.Insert([]byte(w), uint64(i)); err != nil {
			return nil, fmt.Errorf("failed to insert %q: %w", w, err)
		}
		sets[i] = words[w]
	}
	if err := b.Close(); err != nil {
		return nil, err
	}
	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to load FST: %w", err)
	}
	return &Literal{fst: fst, sets: sets, n: len(exprs)}, nil
}

// NewLiteralFactory is the registry factory for TypeLiteral.
func NewLiteralFactory(exprs []Expression, _ Env) (Evaluator, error) {
	l, err := NewLiteral(exprs)
	if err != nil {
		return nil, err
	}
	return Bind[*roaring.Bitmap](l), nil
}

func (l *Literal) Type() string { return TypeLiteral }

func (l *Literal) IsExpressionPossible(expr Expression) bool {
	return expr.Type == TypeLiteral && len(expr.Filters) == 0 && expr.ID >= 0 && expr.ID < l.n
}

// DescribeTokens returns, per token, the ids of the expressions listing it.
func (l *Literal) DescribeTokens(tokens []string) []*roaring.Bitmap {
	descs := make([]*roaring.Bitmap, len(tokens))
	for i, tok := range tokens {
		ord, ok, err := l.fst.Get([]byte(tok))
		if err != nil || !ok {
			continue
		}
		descs[i] = l.sets[ord]
	}
	return descs
}

func (l *Literal) IsMatch(expr Expression, _ string, desc *roaring.Bitmap) bool {
	return hasID(desc, expr)
}

// Words returns the number of distinct words known.
func (l *Literal) Words() int { return len(l.sets) }

func hasID(desc *roaring.Bitmap, expr Expression) bool {
	return desc != nil && expr.ID >= 0 && desc.Contains(uint32(expr.ID))
}
