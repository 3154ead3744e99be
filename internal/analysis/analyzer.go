// Package analysis runs the full pipeline: preprocessing, tokenization,
// token rewriting and phrase detection.
package analysis

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"harshagw/phraser/internal/categorize"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/lexicon"
	"harshagw/phraser/internal/phrase"
	"harshagw/phraser/internal/preprocess"
	"harshagw/phraser/internal/rewrite"
	"harshagw/phraser/internal/tokenize"
	"harshagw/phraser/internal/ustring"
)

// Options are the per-request analysis options.
type Options = preprocess.Options

// DefaultOptions returns the options used for absent keys.
func DefaultOptions() Options { return preprocess.DefaultOptions() }

type Config struct {
	Logger   logr.Logger
	Registry *categorize.Registry
	// Lexicon backs @lexicon pieces; may be nil when no phrase uses them.
	Lexicon lexicon.Lexicon
}

func DefaultConfig() Config {
	return Config{
		Logger:   logr.Discard(),
		Registry: categorize.Default(),
	}
}

// Analyzer detects configured phrases in text. Init installs a configuration;
// Analyze may run concurrently with other Analyze calls and with Init.
type Analyzer struct {
	mu  sync.RWMutex
	cur *configuration

	logger    logr.Logger
	registry  *categorize.Registry
	lexicon   lexicon.Lexicon
	tokenizer tokenize.Tokenizer
}

// configuration is immutable once built.
type configuration struct {
	phrases  []*phrase.Phrase
	rewriter *rewrite.Pipeline
}

func New(config Config) *Analyzer {
	if config.Registry == nil {
		config.Registry = categorize.Default()
	}
	if config.Logger.GetSink() == nil {
		config.Logger = logr.Discard()
	}
	return &Analyzer{
		logger:    config.Logger,
		registry:  config.Registry,
		lexicon:   config.Lexicon,
		tokenizer: tokenize.NewWhitespace(),
	}
}

// Init parses and compiles every phrase configuration. On success the new
// configuration replaces the old one; on any error the old one stays.
func (a *Analyzer) Init(configs []string) error {
	start := time.Now()
	cfg, err := a.build(configs)
	if err != nil {
		a.logger.Error(err, "init failed", "code", diag.Classify(err))
		return err
	}

	a.mu.Lock()
	a.cur = cfg
	a.mu.Unlock()

	a.logger.Info("initialized", "phrases", len(cfg.phrases), "took", time.Since(start))
	return nil
}

func (a *Analyzer) build(configs []string) (*configuration, error) {
	rw, err := rewrite.Default()
	if err != nil {
		return nil, err
	}
	cfg := &configuration{rewriter: rw}

	opts := phrase.CompileOptions{
		Registry:  a.registry,
		Env:       categorize.Env{Lexicon: a.lexicon},
		Normalize: a.normalizer(rw),
	}
	seen := make(map[string]int, len(configs))
	for i, text := range configs {
		pc, err := phrase.ParseConfig(text)
		if err != nil {
			return nil, fmt.Errorf("config %d: %w", i, err)
		}
		if j, dup := seen[pc.Name]; dup {
			return nil, fmt.Errorf("%w: config %d: phrase %s already defined by config %d", diag.ErrBadConfig, i, pc.Name, j)
		}
		seen[pc.Name] = i
		p, err := phrase.Compile(pc, opts)
		if err != nil {
			return nil, fmt.Errorf("config %d: %w", i, err)
		}
		cfg.phrases = append(cfg.phrases, p)
	}
	return cfg, nil
}

// normalizer turns a literal payload word into the token it must equal:
// case folded, tokenized to exactly one token, then rewritten.
func (a *Analyzer) normalizer(rw *rewrite.Pipeline) phrase.Normalizer {
	fold := preprocess.New(Options{})
	return func(word string) (string, error) {
		buf, err := fold.Run(ustring.FromString(word))
		if err != nil {
			return "", fmt.Errorf("%w: %v", diag.ErrBadConfig, err)
		}
		toks := a.tokenizer.Tokenize(buf.Text)
		if len(toks.Tokens) != 1 {
			return "", fmt.Errorf("%w: %q is %d tokens, want 1", diag.ErrBadConfig, word, len(toks.Tokens))
		}
		out, err := rw.Rewrite(toks.Tokens)
		if err != nil {
			return "", err
		}
		return out[0], nil
	}
}

func (a *Analyzer) current() *configuration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cur
}

// Initialized reports whether Init has succeeded at least once.
func (a *Analyzer) Initialized() bool {
	return a.current() != nil
}

// Phrases returns the names of the configured phrases in config order.
func (a *Analyzer) Phrases() []string {
	cfg := a.current()
	if cfg == nil {
		return nil
	}
	names := make([]string, len(cfg.phrases))
	for i, p := range cfg.phrases {
		names[i] = p.Name()
	}
	return names
}

// Analyze runs the pipeline over text. It returns either a complete result
// or an error, never both.
func (a *Analyzer) Analyze(text string, opts Options) (*Result, error) {
	res, err := a.analyze(text, opts)
	if err != nil {
		a.logger.V(diag.DEBUG).Info("analyze failed", "code", diag.Classify(err), "err", err.Error())
		return nil, err
	}
	return res, nil
}

func (a *Analyzer) analyze(text string, opts Options) (*Result, error) {
	cfg := a.current()
	if cfg == nil {
		return nil, fmt.Errorf("%w: call Init before Analyze", diag.ErrNotInitialized)
	}
	if opts.DestutterMaxConsecutive < 0 {
		return nil, fmt.Errorf("%w: destutter_max_consecutive must be >= 0, got %d", diag.ErrBadOption, opts.DestutterMaxConsecutive)
	}

	start := time.Now()
	original := ustring.FromString(text)
	if len(original) > ustring.MaxLen {
		return nil, fmt.Errorf("%w: %d code points, max %d", diag.ErrInputTooLong, len(original), ustring.MaxLen)
	}

	buf, err := preprocess.New(opts).Run(original)
	if err != nil {
		return nil, err
	}

	toks := a.tokenizer.Tokenize(buf.Text)
	tokens, err := cfg.rewriter.Rewrite(toks.Tokens)
	if err != nil {
		return nil, err
	}

	res := &Result{
		OriginalText:   original,
		CleanText:      buf.Text,
		Clean2Original: buf.Clean2Original,
		Chr2Drop:       buf.Chr2Drop,
		Tokens:         tokens,
		Token2Clean:    toks.Spans,
		PhraseResults:  make([]phrase.Result, 0, len(cfg.phrases)),
	}

	trace := a.logger.V(diag.TRACE)
	matches := 0
	for _, p := range cfg.phrases {
		pr := p.Detect(tokens)
		matches += len(pr.Matches)
		if trace.Enabled() {
			trace.Info("phrase detected", "phrase", pr.PhraseName, "matches", len(pr.Matches))
		}
		res.PhraseResults = append(res.PhraseResults, pr)
	}

	a.logger.V(diag.DEBUG).Info("analyzed",
		"codePoints", len(original),
		"tokens", len(tokens),
		"matches", matches,
		"took", time.Since(start))
	return res, nil
}

// AnalyzeMap is Analyze with options given as a loosely typed map, the way
// embedding callers pass them.
func (a *Analyzer) AnalyzeMap(text string, raw map[string]any) (*Result, error) {
	opts, err := ParseOptions(raw)
	if err != nil {
		return nil, err
	}
	return a.Analyze(text, opts)
}

// ToDict dumps the current configuration.
func (a *Analyzer) ToDict() map[string]any {
	cfg := a.current()
	phrases := make([]any, 0)
	rewriters := make([]string, 0)
	if cfg != nil {
		for _, p := range cfg.phrases {
			phrases = append(phrases, p.Dict())
		}
		rewriters = append(rewriters, cfg.rewriter.Names()...)
	}
	return map[string]any{
		"initialized":  cfg != nil,
		"phrases":      phrases,
		"rewriters":    rewriters,
		"categorizers": a.registry.Types(),
	}
}
