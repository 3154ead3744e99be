package phrase

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"harshagw/phraser/internal/categorize"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/sequence"
)

// Normalizer maps a literal payload word to the form tokens take after
// preprocessing and rewriting.
type Normalizer func(word string) (string, error)

// Phrase is a compiled phrase: one evaluator per categorizer type used by
// its pieces, plus the detector pattern.
type Phrase struct {
	config  *Config
	pattern sequence.Pattern

	evaluators []categorize.Evaluator
	pieceEval  []int                   // piece -> evaluator index
	exprs      []categorize.Expression // piece -> expression, ids local to its evaluator
}

// Result is what one phrase found in one token sequence.
type Result struct {
	PhraseName string
	PieceNames []string
	Matches    []sequence.Match
}

// CompileOptions configures Compile.
type CompileOptions struct {
	Registry  *categorize.Registry
	Env       categorize.Env
	Normalize Normalizer
}

// Compile builds a phrase from cfg. Pieces are grouped by categorizer type;
// each group gets one evaluator. Every piece's expression must be possible
// for its evaluator.
func Compile(cfg *Config, opts CompileOptions) (*Phrase, error) {
	reg := opts.Registry
	if reg == nil {
		reg = categorize.Default()
	}
	if err := cfg.Pattern().Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Exprs) != len(cfg.Pieces) {
		return nil, fmt.Errorf("%w: phrase %s: %d pieces but %d expressions",
			diag.ErrBadConfig, cfg.Name, len(cfg.Pieces), len(cfg.Exprs))
	}

	normalized, err := normalizeConfig(cfg, opts.Normalize)
	if err != nil {
		return nil, err
	}

	p := &Phrase{
		config:    normalized,
		pattern:   normalized.Pattern(),
		pieceEval: make([]int, len(normalized.Pieces)),
		exprs:     make([]categorize.Expression, len(normalized.Pieces)),
	}

	groups := make(map[string][]int) // type -> piece indexes
	var order []string
	for i, e := range normalized.Exprs {
		if !reg.Has(e.Type) {
			return nil, fmt.Errorf("%w: phrase %s: piece %s: unknown categorizer type %q",
				diag.ErrBadConfig, cfg.Name, cfg.Pieces[i].Name, e.Type)
		}
		if _, ok := groups[e.Type]; !ok {
			order = append(order, e.Type)
		}
		groups[e.Type] = append(groups[e.Type], i)
	}

	for gi, typ := range order {
		pieces := groups[typ]
		exprs := make([]categorize.Expression, len(pieces))
		for j, pi := range pieces {
			e := normalized.Exprs[pi]
			e.ID = j
			exprs[j] = e
			p.exprs[pi] = e
			p.pieceEval[pi] = gi
		}
		ev, err := reg.Build(typ, exprs, opts.Env)
		if err != nil {
			return nil, fmt.Errorf("phrase %s: pieces %v: %w", cfg.Name, pieceNames(normalized, pieces), err)
		}
		for j, pi := range pieces {
			if !ev.IsExpressionPossible(exprs[j]) {
				return nil, fmt.Errorf("%w: phrase %s: piece %s: expression %s is not possible",
					diag.ErrBadConfig, cfg.Name, cfg.Pieces[pi].Name, exprs[j])
			}
		}
		p.evaluators = append(p.evaluators, ev)
	}
	return p, nil
}

// normalizeConfig returns a copy of cfg with literal words normalized and
// contains needles case folded.
func normalizeConfig(cfg *Config, norm Normalizer) (*Config, error) {
	out := &Config{
		Name:   cfg.Name,
		Pieces: append([]sequence.Piece(nil), cfg.Pieces...),
		Exprs:  make([]categorize.Expression, len(cfg.Exprs)),
	}
	fold := cases.Fold()
	for i, e := range cfg.Exprs {
		args := make([]string, len(e.Args))
		for j, a := range e.Args {
			switch e.Type {
			case categorize.TypeLiteral:
				if norm == nil {
					args[j] = fold.String(a)
					continue
				}
				w, err := norm(a)
				if err != nil {
					return nil, fmt.Errorf("phrase %s: piece %s: word %q: %w", cfg.Name, cfg.Pieces[i].Name, a, err)
				}
				args[j] = w
			case categorize.TypeContains:
				args[j] = fold.String(a)
			default:
				args[j] = a
			}
		}
		e.Args = args
		out.Exprs[i] = e
	}
	return out, nil
}

func pieceNames(cfg *Config, idx []int) []string {
	names := make([]string, len(idx))
	for i, pi := range idx {
		names[i] = cfg.Pieces[pi].Name
	}
	return names
}

func (p *Phrase) Name() string { return p.pattern.Name }

// Pattern returns the detector pattern.
func (p *Phrase) Pattern() sequence.Pattern { return p.pattern }

// Config returns the normalized configuration the phrase was compiled from.
func (p *Phrase) Config() *Config { return p.config }

// Types returns the categorizer types the phrase uses, sorted.
func (p *Phrase) Types() []string {
	types := make([]string, len(p.evaluators))
	for i, ev := range p.evaluators {
		types[i] = ev.Type()
	}
	sort.Strings(types)
	return types
}

// Detect describes tokens once per evaluator and enumerates every match.
func (p *Phrase) Detect(tokens []string) Result {
	described := make([]categorize.Described, len(p.evaluators))
	for i, ev := range p.evaluators {
		described[i] = ev.Describe(tokens)
	}
	matches := sequence.Detect(p.pattern, len(tokens), func(piece, t int) bool {
		return described[p.pieceEval[piece]].IsMatch(p.exprs[piece], t)
	})
	return Result{
		PhraseName: p.pattern.Name,
		PieceNames: p.pattern.PieceNames(),
		Matches:    matches,
	}
}

// Dict is the diagnostic dump form of the phrase.
func (p *Phrase) Dict() map[string]any {
	pieces := make([]any, len(p.pattern.Pieces))
	for i, pc := range p.pattern.Pieces {
		d := p.exprs[i].Dict()
		d["name"] = pc.Name
		d["min"] = pc.Min
		d["max"] = pc.Max
		pieces[i] = d
	}
	return map[string]any{
		"name":   p.pattern.Name,
		"pieces": pieces,
	}
}
