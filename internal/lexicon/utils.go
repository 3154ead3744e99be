package lexicon

import (
	"bytes"
	"sort"
	"strings"
)

// prefixSuccessor returns the lexicographically next prefix after the given one.
func prefixSuccessor(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	succ := bytes.Clone(prefix)

	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] < 0xff {
			succ[i]++
			return succ[:i+1]
		}
	}

	return nil
}

// dimensionsOf returns the sorted distinct dimensions of dim=value keys.
func dimensionsOf(features []string) []string {
	seen := make(map[string]struct{})
	for _, f := range features {
		dim, _, _ := strings.Cut(f, "=")
		seen[dim] = struct{}{}
	}
	dims := make([]string, 0, len(seen))
	for d := range seen {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	return dims
}
