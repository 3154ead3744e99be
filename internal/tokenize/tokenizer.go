package tokenize

import (
	"strings"
	"unicode"

	"harshagw/phraser/internal/ustring"
)

// Tokens holds tokenizer output: Spans[i] is where Tokens[i] came from in
// the clean text.
type Tokens struct {
	Tokens []string
	Spans  []ustring.Span
}

// Tokenizer defines the interface for splitting clean text into tokens.
type Tokenizer interface {
	Tokenize(text ustring.String) Tokens
}

// Whitespace splits on Unicode whitespace. Punctuation stays attached.
type Whitespace struct{}

func NewWhitespace() *Whitespace {
	return &Whitespace{}
}

// Tokenize splits text into non-empty tokens with their spans.
func (w *Whitespace) Tokenize(text ustring.String) Tokens {
	var out Tokens
	var currentToken strings.Builder
	begin := 0

	for i, r := range text {
		if !unicode.IsSpace(r) {
			if currentToken.Len() == 0 {
				begin = i
			}
			currentToken.WriteRune(r)
		} else {
			if currentToken.Len() > 0 {
				out.Tokens = append(out.Tokens, currentToken.String())
				out.Spans = append(out.Spans, ustring.Span{Begin: begin, End: i})
				currentToken.Reset()
			}
		}
	}

	if currentToken.Len() > 0 {
		out.Tokens = append(out.Tokens, currentToken.String())
		out.Spans = append(out.Spans, ustring.Span{Begin: begin, End: len(text)})
	}

	return out
}
