// Package sequence enumerates the occurrences of multi-piece patterns in a
// token stream.
package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"harshagw/phraser/internal/diag"
)

// Piece is one element of a pattern. It covers between Min and Max
// consecutive tokens, all matching the piece's predicate.
type Piece struct {
	Name string
	Min  int
	Max  int
}

// NewPiece returns a piece covering exactly one token.
func NewPiece(name string) Piece {
	return Piece{Name: name, Min: 1, Max: 1}
}

func (p Piece) String() string {
	switch {
	case p.Min == 1 && p.Max == 1:
		return p.Name
	case p.Min == p.Max:
		return p.Name + "{" + strconv.Itoa(p.Min) + "}"
	default:
		return fmt.Sprintf("%s{%d,%d}", p.Name, p.Min, p.Max)
	}
}

// Pattern is a named, ordered list of pieces.
type Pattern struct {
	Name   string
	Pieces []Piece
}

// Validate checks that the pattern has at least one piece and that every
// piece has a name and bounds 1 <= Min <= Max.
func (p Pattern) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: pattern has no name", diag.ErrBadConfig)
	}
	if len(p.Pieces) == 0 {
		return fmt.Errorf("%w: pattern %s has no pieces", diag.ErrBadConfig, p.Name)
	}
	for i, pc := range p.Pieces {
		if pc.Name == "" {
			return fmt.Errorf("%w: pattern %s: piece %d has no name", diag.ErrBadConfig, p.Name, i)
		}
		if pc.Min < 1 || pc.Max < pc.Min {
			return fmt.Errorf("%w: pattern %s: piece %s has bounds [%d,%d], want 1 <= min <= max",
				diag.ErrBadConfig, p.Name, pc.Name, pc.Min, pc.Max)
		}
	}
	return nil
}

// PieceNames returns the piece names in order.
func (p Pattern) PieceNames() []string {
	names := make([]string, len(p.Pieces))
	for i, pc := range p.Pieces {
		names[i] = pc.Name
	}
	return names
}

func (p Pattern) String() string {
	parts := make([]string, len(p.Pieces))
	for i, pc := range p.Pieces {
		parts[i] = pc.String()
	}
	return p.Name + " = " + strings.Join(parts, " ")
}

// Match is one occurrence of a pattern: the first token of every piece and
// one past the last token of the last piece.
type Match struct {
	PieceBegins []int
	EndExcl     int
}

// IndexList returns the piece begins followed by the end.
func (m Match) IndexList() []int {
	out := make([]int, 0, len(m.PieceBegins)+1)
	out = append(out, m.PieceBegins...)
	return append(out, m.EndExcl)
}

// Less orders matches lexicographically by piece begins, then end.
func (m Match) Less(o Match) bool {
	for i := range m.PieceBegins {
		if i >= len(o.PieceBegins) {
			return false
		}
		if m.PieceBegins[i] != o.PieceBegins[i] {
			return m.PieceBegins[i] < o.PieceBegins[i]
		}
	}
	if len(m.PieceBegins) != len(o.PieceBegins) {
		return len(m.PieceBegins) < len(o.PieceBegins)
	}
	return m.EndExcl < o.EndExcl
}
