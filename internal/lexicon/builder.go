package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"harshagw/phraser/internal/diag"
)

// Builder accumulates a lexicon in memory before it is written to a file.
// It also serves lookups directly, which is how tests and one-off analyzers
// use it.
type Builder struct {
	Words      map[string]*roaring.Bitmap // folded word -> feature ids
	Features   []string                   // feature id -> dim=value
	featureIDs map[string]uint32
	dims       map[string]int
}

// NewBuilder creates an empty lexicon builder.
func NewBuilder() *Builder {
	return &Builder{
		Words:      make(map[string]*roaring.Bitmap),
		Features:   make([]string, 0),
		featureIDs: make(map[string]uint32),
		dims:       make(map[string]int),
	}
}

// Add records that word carries every dim=value feature in features.
// Adding the same word twice merges the feature sets.
func (b *Builder) Add(word string, features ...string) error {
	word = NormalizeWord(word)
	if word == "" || strings.ContainsFunc(word, isSpace) {
		return fmt.Errorf("%w: invalid lexicon word %q", diag.ErrBadConfig, word)
	}
	if len(features) == 0 {
		return fmt.Errorf("%w: lexicon word %q has no features", diag.ErrBadConfig, word)
	}

	bm, ok := b.Words[word]
	if !ok {
		bm = roaring.New()
		b.Words[word] = bm
	}
	for _, f := range features {
		dim, value, err := SplitFeature(f)
		if err != nil {
			return fmt.Errorf("%w: word %q: %v", diag.ErrBadConfig, word, err)
		}
		bm.Add(b.intern(dim, value))
	}
	return nil
}

func (b *Builder) intern(dim, value string) uint32 {
	key := FeatureKey(dim, value)
	if id, ok := b.featureIDs[key]; ok {
		return id
	}
	id := uint32(len(b.Features))
	b.Features = append(b.Features, key)
	b.featureIDs[key] = id
	b.dims[dim]++
	return id
}

// Parse reads the text form of a lexicon: one word per line followed by its
// dim=value features. Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) (*Builder, error) {
	b := NewBuilder()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if err := b.Add(fields[0], fields[1:]...); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// Lookup returns the feature ids of an already folded word.
func (b *Builder) Lookup(word string) *roaring.Bitmap {
	return b.Words[word]
}

func (b *Builder) Feature(dim, value string) (uint32, bool) {
	id, ok := b.featureIDs[FeatureKey(dim, value)]
	return id, ok
}

func (b *Builder) HasDimension(dim string) bool {
	return b.dims[dim] > 0
}

func (b *Builder) Dimensions() []string {
	return dimensionsOf(b.Features)
}

func (b *Builder) NumWords() uint64 {
	return uint64(len(b.Words))
}

// SortedWords returns the words in byte order, as the FST needs them.
func (b *Builder) SortedWords() []string {
	words := make([]string, 0, len(b.Words))
	for w := range b.Words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
