package rewrite

import (
	"fmt"

	"harshagw/phraser/internal/diag"
)

// Rewriter changes token contents without changing the token count.
type Rewriter interface {
	Name() string
	// Init builds lookup tables. It must be called once before Rewrite.
	Init() error
	// Rewrite returns the rewritten tokens; len(out) == len(tokens).
	Rewrite(tokens []string) []string
}

// Pipeline is an ordered chain of initialized rewriters.
type Pipeline struct {
	steps []Rewriter
}

// NewPipeline initializes every step and returns the chain.
func NewPipeline(steps ...Rewriter) (*Pipeline, error) {
	for _, s := range steps {
		if err := s.Init(); err != nil {
			return nil, fmt.Errorf("rewriter %s: %w", s.Name(), err)
		}
	}
	return &Pipeline{steps: steps}, nil
}

// Default returns the standard pipeline (PTB escaping).
func Default() (*Pipeline, error) {
	return NewPipeline(NewPTBEscaper())
}

// Names returns the step names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Rewrite runs every step over tokens.
func (p *Pipeline) Rewrite(tokens []string) ([]string, error) {
	for _, s := range p.steps {
		out := s.Rewrite(tokens)
		if len(out) != len(tokens) {
			return nil, fmt.Errorf("%w: rewriter %s changed token count %d -> %d", diag.ErrInternal, s.Name(), len(tokens), len(out))
		}
		tokens = out
	}
	return tokens, nil
}
