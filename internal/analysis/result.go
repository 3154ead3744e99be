package analysis

import (
	"encoding/json"

	"harshagw/phraser/internal/phrase"
	"harshagw/phraser/internal/ustring"
)

// Result is everything one analysis produced.
type Result struct {
	OriginalText ustring.String
	CleanText    ustring.String
	// Clean2Original[i] is the index in OriginalText that CleanText[i] came from.
	Clean2Original []uint16
	// Chr2Drop counts the code points dropped by destuttering.
	Chr2Drop map[rune]int

	Tokens []string
	// Token2Clean[i] is the span of CleanText that Tokens[i] came from.
	Token2Clean []ustring.Span

	PhraseResults []phrase.Result
}

// TokenOrigin returns the span of OriginalText that token i came from.
func (r *Result) TokenOrigin(i int) ustring.Span {
	s := r.Token2Clean[i]
	begin := int(r.Clean2Original[s.Begin])
	end := len(r.OriginalText)
	if s.End < len(r.Clean2Original) {
		end = int(r.Clean2Original[s.End])
	}
	return ustring.Span{Begin: begin, End: end}
}

// MatchCount returns the number of matches over all phrases.
func (r *Result) MatchCount() int {
	n := 0
	for _, pr := range r.PhraseResults {
		n += len(pr.Matches)
	}
	return n
}

type resultJSON struct {
	OriginalText  string            `json:"original_text"`
	CleanText     string            `json:"clean_text"`
	Tokens        []string          `json:"tokens"`
	PhraseMatches []phraseMatchJSON `json:"phrase_matches"`
}

type phraseMatchJSON struct {
	PhraseName       string   `json:"phrase_name"`
	SubsequenceNames []string `json:"subsequence_names"`
	IndexLists       [][]int  `json:"index_lists"`
}

// MarshalJSON encodes the external result shape. Each index list holds the
// piece begins followed by the end.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		OriginalText:  r.OriginalText.String(),
		CleanText:     r.CleanText.String(),
		Tokens:        r.Tokens,
		PhraseMatches: make([]phraseMatchJSON, len(r.PhraseResults)),
	}
	if out.Tokens == nil {
		out.Tokens = []string{}
	}
	for i, pr := range r.PhraseResults {
		lists := make([][]int, len(pr.Matches))
		for j, m := range pr.Matches {
			lists[j] = m.IndexList()
		}
		out.PhraseMatches[i] = phraseMatchJSON{
			PhraseName:       pr.PhraseName,
			SubsequenceNames: pr.PieceNames,
			IndexLists:       lists,
		}
	}
	return json.Marshal(out)
}
