package categorize

import (
	"fmt"

	"harshagw/phraser/internal/diag"
)

// Any matches every token. It is the wildcard piece, usually given a range
// such as {1,3} to skip filler words.
type Any struct {
	n int
}

func NewAny(exprs []Expression) (*Any, error) {
	for _, e := range exprs {
		if len(e.Args) > 0 || len(e.Filters) > 0 {
			return nil, fmt.Errorf("%w: any expressions take no payload or filters", diag.ErrBadConfig)
		}
	}
	return &Any{n: len(exprs)}, nil
}

// NewAnyFactory is the registry factory for TypeAny.
func NewAnyFactory(exprs []Expression, _ Env) (Evaluator, error) {
	a, err := NewAny(exprs)
	if err != nil {
		return nil, err
	}
	return Bind[struct{}](a), nil
}

func (a *Any) Type() string { return TypeAny }

func (a *Any) IsExpressionPossible(expr Expression) bool {
	return expr.Type == TypeAny && len(expr.Filters) == 0 && expr.ID >= 0 && expr.ID < a.n
}

func (a *Any) DescribeTokens(tokens []string) []struct{} {
	return make([]struct{}, len(tokens))
}

func (a *Any) IsMatch(Expression, string, struct{}) bool { return true }
