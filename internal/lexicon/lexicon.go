package lexicon

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/text/cases"
)

// Lexicon maps words to sets of features. A feature is one dim=value pair,
// identified by a dense uint32 id.
type Lexicon interface {
	// Lookup returns the feature ids of word, or nil if the word is unknown.
	// The returned bitmap must not be modified.
	Lookup(word string) *roaring.Bitmap
	// Feature returns the id of dim=value.
	Feature(dim, value string) (uint32, bool)
	// HasDimension reports whether any word carries a feature in dim.
	HasDimension(dim string) bool
	// Dimensions returns the known dimensions, sorted.
	Dimensions() []string
	// NumWords returns the number of distinct words.
	NumWords() uint64
}

// FeatureKey is the canonical "dim=value" form of a feature.
func FeatureKey(dim, value string) string {
	return dim + "=" + value
}

// SplitFeature splits "dim=value". Both parts must be non-empty.
func SplitFeature(s string) (dim, value string, err error) {
	dim, value, ok := strings.Cut(s, "=")
	if !ok || dim == "" || value == "" {
		return "", "", fmt.Errorf("malformed feature %q, want dim=value", s)
	}
	if strings.ContainsAny(dim, " \t=") || strings.ContainsAny(value, " \t") {
		return "", "", fmt.Errorf("malformed feature %q", s)
	}
	return dim, value, nil
}

// NormalizeWord case folds a word the way analyzed text is folded.
func NormalizeWord(word string) string {
	return cases.Fold().String(word)
}

var (
	_ Lexicon = (*Builder)(nil)
	_ Lexicon = (*Mapped)(nil)
)
