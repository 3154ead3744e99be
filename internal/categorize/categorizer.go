package categorize

import (
	"fmt"
	"sort"
	"sync"

	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/lexicon"
)

// Categorizer describes tokens with values of type D and matches expressions
// against described tokens.
type Categorizer[D any] interface {
	Type() string
	// IsExpressionPossible is false iff the type tag differs or a filter
	// names a dimension this categorizer does not know.
	IsExpressionPossible(expr Expression) bool
	// DescribeTokens returns one description per token.
	DescribeTokens(tokens []string) []D
	IsMatch(expr Expression, token string, desc D) bool
}

// Evaluator is a categorizer with its description type erased, so pieces of
// one phrase can use categorizers of different kinds.
type Evaluator interface {
	Type() string
	IsExpressionPossible(expr Expression) bool
	Describe(tokens []string) Described
}

// Described is a token sequence together with its descriptions.
type Described interface {
	Len() int
	IsMatch(expr Expression, i int) bool
}

// Bind erases the description type of c.
func Bind[D any](c Categorizer[D]) Evaluator {
	return bound[D]{c}
}

type bound[D any] struct {
	c Categorizer[D]
}

func (b bound[D]) Type() string { return b.c.Type() }

func (b bound[D]) IsExpressionPossible(expr Expression) bool {
	return b.c.IsExpressionPossible(expr)
}

func (b bound[D]) Describe(tokens []string) Described {
	return &described[D]{c: b.c, tokens: tokens, descs: b.c.DescribeTokens(tokens)}
}

type described[D any] struct {
	c      Categorizer[D]
	tokens []string
	descs  []D
}

func (d *described[D]) Len() int { return len(d.tokens) }

func (d *described[D]) IsMatch(expr Expression, i int) bool {
	return d.c.IsMatch(expr, d.tokens[i], d.descs[i])
}

// Env carries the shared resources a factory may need.
type Env struct {
	Lexicon lexicon.Lexicon
}

// Factory builds an evaluator serving exprs. Expression ids must be 0..n-1.
type Factory func(exprs []Expression, env Env) (Evaluator, error)

// Registry maps type tags to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with every built-in categorizer.
func Default() *Registry {
	r := NewRegistry()
	r.Register(TypeLiteral, NewLiteralFactory)
	r.Register(TypeRegex, NewRegexFactory)
	r.Register(TypeContains, NewContainsFactory)
	r.Register(TypeLexicon, NewLexiconFactory)
	r.Register(TypeAny, NewAnyFactory)
	return r
}

// Register adds or replaces the factory for typ.
func (r *Registry) Register(typ string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = f
}

// Has reports whether typ is registered.
func (r *Registry) Has(typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typ]
	return ok
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build creates the evaluator for typ.
func (r *Registry) Build(typ string, exprs []Expression, env Env) (Evaluator, error) {
	r.mu.RLock()
	f, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown categorizer type %q", diag.ErrBadConfig, typ)
	}
	if err := checkIDs(exprs); err != nil {
		return nil, fmt.Errorf("%w: %s categorizer: %v", diag.ErrInternal, typ, err)
	}
	return f(exprs, env)
}
