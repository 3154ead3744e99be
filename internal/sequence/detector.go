package sequence

import (
	"harshagw/phraser/internal/categorize"
)

// Predicate reports whether token t may belong to piece i.
type Predicate func(piece, token int) bool

// Detect returns every match of p over n tokens, ordered lexicographically
// by (piece begins, end). Overlapping matches are all reported.
//
// For each piece it first records how many consecutive tokens starting at
// each index satisfy the predicate, capped at the piece's Max. Enumeration
// then walks those run lengths depth first, so the predicate is evaluated
// at most once per (piece, token).
func Detect(p Pattern, n int, pred Predicate) []Match {
	if len(p.Pieces) == 0 || n <= 0 {
		return nil
	}
	d := detector{
		pieces: p.Pieces,
		runs:   runLengths(p.Pieces, n, pred),
		begins: make([]int, len(p.Pieces)),
	}
	for s := 0; s < n; s++ {
		if d.runs[0][s] == 0 {
			continue
		}
		d.extend(0, s)
	}
	return d.matches
}

// DetectWith runs Detect with a single categorizer, exprs[i] being the
// expression of piece i.
func DetectWith[D any](p Pattern, exprs []categorize.Expression, c categorize.Categorizer[D], tokens []string) []Match {
	if len(exprs) != len(p.Pieces) {
		return nil
	}
	descs := c.DescribeTokens(tokens)
	return Detect(p, len(tokens), func(piece, t int) bool {
		return c.IsMatch(exprs[piece], tokens[t], descs[t])
	})
}

type detector struct {
	pieces  []Piece
	runs    [][]int
	begins  []int
	matches []Match
}

func (d *detector) extend(piece, begin int) {
	d.begins[piece] = begin
	pc := d.pieces[piece]
	minLen := max(pc.Min, 1)
	last := piece == len(d.pieces)-1

	for l := minLen; l <= d.runs[piece][begin]; l++ {
		next := begin + l
		if last {
			d.emit(next)
			continue
		}
		if d.runs[piece+1][next] > 0 {
			d.extend(piece+1, next)
		}
	}
}

func (d *detector) emit(end int) {
	begins := make([]int, len(d.begins))
	copy(begins, d.begins)
	d.matches = append(d.matches, Match{PieceBegins: begins, EndExcl: end})
}

// runLengths returns runs[i][t]: the number of consecutive tokens from t
// matching piece i, capped at Max. runs[i][n] is 0.
func runLengths(pieces []Piece, n int, pred Predicate) [][]int {
	runs := make([][]int, len(pieces))
	for i, pc := range pieces {
		r := make([]int, n+1)
		for t := n - 1; t >= 0; t-- {
			if pred(i, t) {
				r[t] = min(pc.Max, r[t+1]+1)
			}
		}
		runs[i] = r
	}
	return runs
}
