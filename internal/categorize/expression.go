// Package categorize turns tokens into per-token descriptions and answers
// whether a piece expression matches a described token.
package categorize

import (
	"fmt"
	"sort"
	"strings"
)

// Type tags of the built-in categorizers.
const (
	TypeLiteral  = "literal"
	TypeRegex    = "regex"
	TypeContains = "contains"
	TypeLexicon  = "lexicon"
	TypeAny      = "any"
)

// Expression is the matcher of one phrase piece. The detector never looks
// inside it; only the categorizer named by Type does.
type Expression struct {
	Type    string
	Filters map[string]string // dimension -> required value
	Args    []string          // payload lines

	// ID numbers the expressions served by one categorizer, 0..n-1.
	ID int
}

// FilterDims returns the filter dimensions, sorted.
func (e Expression) FilterDims() []string {
	dims := make([]string, 0, len(e.Filters))
	for d := range e.Filters {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	return dims
}

func (e Expression) String() string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(e.Type)
	for _, d := range e.FilterDims() {
		fmt.Fprintf(&sb, " %s=%s", d, e.Filters[d])
	}
	if len(e.Args) > 0 {
		fmt.Fprintf(&sb, " %q", e.Args)
	}
	return sb.String()
}

// Dict is the diagnostic dump form of the expression.
func (e Expression) Dict() map[string]any {
	filters := make(map[string]string, len(e.Filters))
	for k, v := range e.Filters {
		filters[k] = v
	}
	args := append([]string{}, e.Args...)
	return map[string]any{
		"type":    e.Type,
		"filters": filters,
		"args":    args,
	}
}

// checkIDs verifies that exprs are numbered 0..n-1 in order.
func checkIDs(exprs []Expression) error {
	for i, e := range exprs {
		if e.ID != i {
			return fmt.Errorf("expression %d has id %d", i, e.ID)
		}
	}
	return nil
}
