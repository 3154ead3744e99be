package preprocess

import (
	"unicode/utf8"

	"golang.org/x/text/cases"

	"harshagw/phraser/internal/ustring"
)

// maxEntityLen bounds the search for the terminating ';' ("&#x10FFFF;").
const maxEntityLen = 10

var namedEntities = map[string]rune{
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"quot": '"',
}

// EntityStep decodes a small set of HTML entities. Each decoded entity is
// attributed to the index of its '&'.
type EntityStep struct{}

func (EntityStep) Name() string { return "html_entities" }

func (EntityStep) Apply(b *Buffer) {
	text, c2o := b.Text, b.Clean2Original
	w := 0
	for r := 0; r < len(text); {
		if text[r] == '&' {
			if c, n, ok := decodeEntity(text[r:]); ok {
				text[w] = c
				c2o[w] = c2o[r]
				w++
				r += n
				continue
			}
		}
		text[w] = text[r]
		c2o[w] = c2o[r]
		w++
		r++
	}
	b.Text, b.Clean2Original = text[:w], c2o[:w]
}

// decodeEntity decodes the entity at the start of s, which begins with '&'.
// It returns the code point and the number of code points consumed.
func decodeEntity(s ustring.String) (rune, int, bool) {
	semi := -1
	for i := 1; i < len(s) && i <= maxEntityLen; i++ {
		if s[i] == ';' {
			semi = i
			break
		}
	}
	if semi < 2 {
		return 0, 0, false
	}
	body := s[1:semi]

	if body[0] != '#' {
		c, ok := namedEntities[string(body)]
		return c, semi + 1, ok
	}

	digits := body[1:]
	base := rune(10)
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		base = 16
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return 0, 0, false
	}

	var c rune
	for _, d := range digits {
		v := digitValue(d)
		if v < 0 || v >= base {
			return 0, 0, false
		}
		c = c*base + v
		if c > utf8.MaxRune {
			return 0, 0, false
		}
	}
	if c == 0 || !utf8.ValidRune(c) {
		return 0, 0, false
	}
	return c, semi + 1, true
}

func digitValue(d rune) rune {
	switch {
	case '0' <= d && d <= '9':
		return d - '0'
	case 'a' <= d && d <= 'f':
		return d - 'a' + 10
	case 'A' <= d && d <= 'F':
		return d - 'A' + 10
	default:
		return -1
	}
}

// FoldStep applies Unicode case folding one code point at a time. A code
// point that folds to several (ß -> ss) is a run attributed to its source.
type FoldStep struct{}

func (FoldStep) Name() string { return "case_fold" }

func (FoldStep) Apply(b *Buffer) {
	caser := cases.Fold()

	// text stays nil until some code point expands; until then we fold in place.
	var text ustring.String
	var c2o []uint16
	var one [1]rune

	for i, r := range b.Text {
		var folded []rune
		if r < utf8.RuneSelf {
			if 'A' <= r && r <= 'Z' {
				r += 'a' - 'A'
			}
			one[0] = r
			folded = one[:]
		} else {
			folded = []rune(caser.String(string(r)))
		}

		if text == nil && len(folded) == 1 {
			b.Text[i] = folded[0]
			continue
		}
		if text == nil {
			text = make(ustring.String, i, len(b.Text)+len(folded))
			copy(text, b.Text[:i])
			c2o = make([]uint16, i, cap(text))
			copy(c2o, b.Clean2Original[:i])
		}
		for _, f := range folded {
			text = append(text, f)
			c2o = append(c2o, b.Clean2Original[i])
		}
	}

	if text != nil {
		b.Text, b.Clean2Original = text, c2o
	}
}

// DestutterStep drops repeats of a code point beyond Max in a row and counts
// every dropped occurrence in Chr2Drop.
type DestutterStep struct {
	Max int
}

func (DestutterStep) Name() string { return "destutter" }

func (s DestutterStep) Apply(b *Buffer) {
	if s.Max <= 0 {
		return
	}

	text, c2o := b.Text, b.Clean2Original
	w := 0
	run := 0
	var prev rune
	for r, c := range text {
		if r > 0 && c == prev {
			run++
		} else {
			run = 1
			prev = c
		}
		if run > s.Max {
			b.Chr2Drop[c]++
			continue
		}
		text[w] = c
		c2o[w] = c2o[r]
		w++
	}
	b.Text, b.Clean2Original = text[:w], c2o[:w]
}
