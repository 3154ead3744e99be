// Package library keeps a persistent workspace of phrase configurations,
// the lexicon they are compiled against and a history of analyses.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/categorize"
	"harshagw/phraser/internal/lexicon"
	"harshagw/phraser/internal/store"
)

var ErrClosed = errors.New("library is closed")

type Library struct {
	mu sync.RWMutex

	dir     string
	catalog *store.Catalog
	lexicon *lexicon.Mapped
	// retired lexicons may still back live analyzers; unmapped on Close.
	retired []*lexicon.Mapped
	epoch   uint64

	logger       logr.Logger
	registry     *categorize.Registry
	historyLimit int

	closed bool
}

type Config struct {
	Dir      string
	Logger   logr.Logger
	Registry *categorize.Registry
	// HistoryLimit caps the number of recorded analyses; 0 keeps all.
	HistoryLimit int
}

func DefaultConfig(dir string) Config {
	return Config{
		Dir:          dir,
		Logger:       logr.Discard(),
		Registry:     categorize.Default(),
		HistoryLimit: 1000,
	}
}

// Open creates or opens a library at the given directory.
func Open(config Config) (*Library, error) {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}
	if config.Registry == nil {
		config.Registry = categorize.Default()
	}
	if config.Logger.GetSink() == nil {
		config.Logger = logr.Discard()
	}

	catalog, err := store.Open(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	lib := &Library{
		dir:          config.Dir,
		catalog:      catalog,
		logger:       config.Logger,
		registry:     config.Registry,
		historyLimit: config.HistoryLimit,
	}

	if err := lib.loadLexicon(); err != nil {
		catalog.Close()
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}

	lib.epoch, _ = catalog.Epoch()
	return lib, nil
}

func (lib *Library) loadLexicon() error {
	id, err := lib.catalog.LexiconID()
	if err != nil || id == "" {
		return err
	}
	lex, err := lexicon.Open(lexiconPath(lib.dir, id), id)
	if err != nil {
		return fmt.Errorf("failed to open lexicon %s: %w", id, err)
	}
	lib.lexicon = lex
	return nil
}

func lexiconPath(dir, id string) string {
	return filepath.Join(dir, id+lexicon.FileExt)
}

// Dir returns the workspace directory.
func (lib *Library) Dir() string { return lib.dir }

// Epoch returns the number of committed changes.
func (lib *Library) Epoch() uint64 {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.epoch
}

// Lexicon returns the current lexicon, or nil if none was installed.
func (lib *Library) Lexicon() *lexicon.Mapped {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.lexicon
}

// Phrases returns the stored phrase configurations ordered by name.
func (lib *Library) Phrases() ([]store.PhraseRecord, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if lib.closed {
		return nil, ErrClosed
	}
	return lib.catalog.Phrases()
}

// Phrase returns the stored configuration text of one phrase.
func (lib *Library) Phrase(name string) (string, bool, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if lib.closed {
		return "", false, ErrClosed
	}
	return lib.catalog.Phrase(name)
}

// History returns up to limit recorded analyses, newest first.
func (lib *Library) History(limit int) ([]store.HistoryRecord, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if lib.closed {
		return nil, ErrClosed
	}
	return lib.catalog.History(limit)
}

// NewAnalyzer returns an analyzer initialized with every stored phrase and
// backed by the current lexicon.
func (lib *Library) NewAnalyzer(logger logr.Logger) (*analysis.Analyzer, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if lib.closed {
		return nil, ErrClosed
	}
	recs, err := lib.catalog.Phrases()
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(recs))
	for i, r := range recs {
		texts[i] = r.Text
	}
	return lib.newAnalyzer(logger, lib.lexicon, texts)
}

func (lib *Library) newAnalyzer(logger logr.Logger, lex *lexicon.Mapped, texts []string) (*analysis.Analyzer, error) {
	config := analysis.Config{Logger: logger, Registry: lib.registry}
	// A nil *Mapped must not become a non-nil interface.
	if lex != nil {
		config.Lexicon = lex
	}
	a := analysis.New(config)
	if err := a.Init(texts); err != nil {
		return nil, err
	}
	return a, nil
}

// Close closes the catalog and unmaps every lexicon.
func (lib *Library) Close() error {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.closed {
		return nil
	}
	lib.closed = true

	var errs []error
	if lib.lexicon != nil {
		errs = append(errs, lib.lexicon.Close())
	}
	for _, lex := range lib.retired {
		errs = append(errs, lex.Close())
	}
	lib.retired = nil
	errs = append(errs, lib.catalog.Close())
	return errors.Join(errs...)
}
