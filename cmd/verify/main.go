package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-logr/logr"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/library"
	"harshagw/phraser/internal/lexicon"
)

// TestCase is a text with the matches each phrase must report.
type TestCase struct {
	Text string
	Opts *analysis.Options
	// Clean and Tokens are checked when set.
	Clean  string
	Tokens []string
	// Expected maps phrase name to index lists; phrases not listed must
	// report no matches.
	Expected map[string][][]int
	Err      error
}

// Category groups related test cases.
type Category struct {
	Name  string
	Cases []TestCase
}

const lexiconText = `# word dim=value ...
obama  kind=person pos=noun
hitler kind=person pos=noun
biden  kind=person pos=noun
great  pos=adj
terrible pos=adj
`

var phraseConfigs = []string{
	`thanks = verb object
----------
thanks
----------
obama
hitler
`,
	`pairs = A A
----------
x
----------
x
`,
	`judgement = who is quality
----------
@lexicon kind=person
----------
is
was
----------
@lexicon pos=adj
`,
	`year = prep when
----------
in
----------
@regex
(19|20)[0-9][0-9]
`,
	`swear = word
----------
@contains
damn
`,
	`gap = verb filler{1,2} object
----------
thanks
----------
@any
----------
obama
`,
}

func main() {
	fmt.Println("Phrase Detection Verification")
	fmt.Println("=============================")
	fmt.Println()

	// Create a temporary directory for the library
	dir, err := os.MkdirTemp("", "verify-*")
	if err != nil {
		fmt.Printf("Error creating temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	lib, err := library.Open(library.DefaultConfig(dir))
	if err != nil {
		fmt.Printf("Error opening library: %v\n", err)
		os.Exit(1)
	}
	defer lib.Close()

	lex, err := lexicon.Parse(strings.NewReader(lexiconText))
	if err != nil {
		fmt.Printf("Error parsing lexicon: %v\n", err)
		os.Exit(1)
	}
	if err := lib.SetLexicon(lex); err != nil {
		fmt.Printf("Error installing lexicon: %v\n", err)
		os.Exit(1)
	}
	for _, text := range phraseConfigs {
		if _, err := lib.AddPhrase(text); err != nil {
			fmt.Printf("Error storing phrase: %v\n", err)
			os.Exit(1)
		}
	}

	a, err := lib.NewAnalyzer(logr.Discard())
	if err != nil {
		fmt.Printf("Error creating analyzer: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d phrases and %d lexicon words (epoch %d)\n", len(a.Phrases()), lib.Lexicon().NumWords(), lib.Epoch())

	passed := 0
	failed := 0

	for _, category := range getTestCategories() {
		fmt.Printf("\n%s\n", category.Name)
		fmt.Println(strings.Repeat("-", len(category.Name)))

		for _, tc := range category.Cases {
			if runTestCase(a, tc) {
				passed++
			} else {
				failed++
			}
		}
	}

	// Summary
	fmt.Println()
	fmt.Println("========================================")
	fmt.Printf("Results: %d passed, %d failed, %d total\n", passed, failed, passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
	fmt.Println("\nAll tests passed!")
}

func runTestCase(a *analysis.Analyzer, tc TestCase) bool {
	label := tc.Text
	if len(label) > 40 {
		label = fmt.Sprintf("%s... (%d bytes)", label[:20], len(label))
	}

	opts := analysis.DefaultOptions()
	if tc.Opts != nil {
		opts = *tc.Opts
	}
	res, err := a.Analyze(tc.Text, opts)

	if tc.Err != nil {
		if !errors.Is(err, tc.Err) || res != nil {
			fmt.Printf("  ✗ %q\n", label)
			fmt.Printf("    Expected error: %v\n", tc.Err)
			fmt.Printf("    Got:            %v\n", err)
			return false
		}
		fmt.Printf("  ✓ %q -> %s\n", label, diag.Classify(err))
		return true
	}
	if err != nil {
		fmt.Printf("  ✗ %q\n", label)
		fmt.Printf("    Error: %v\n", err)
		return false
	}

	var problems []string
	if tc.Clean != "" && res.CleanText.String() != tc.Clean {
		problems = append(problems, fmt.Sprintf("clean text %q, want %q", res.CleanText.String(), tc.Clean))
	}
	if tc.Tokens != nil && !slices.Equal(res.Tokens, tc.Tokens) {
		problems = append(problems, fmt.Sprintf("tokens %q, want %q", res.Tokens, tc.Tokens))
	}
	for _, pr := range res.PhraseResults {
		var got [][]int
		for _, m := range pr.Matches {
			got = append(got, m.IndexList())
		}
		want := tc.Expected[pr.PhraseName]
		if !slices.EqualFunc(got, want, slices.Equal[[]int]) {
			problems = append(problems, fmt.Sprintf("%s: got %v, want %v", pr.PhraseName, got, want))
		}
	}

	if len(problems) > 0 {
		fmt.Printf("  ✗ %q\n", label)
		for _, p := range problems {
			fmt.Printf("    %s\n", p)
		}
		return false
	}

	fmt.Printf("  ✓ %q -> %d matches\n", label, res.MatchCount())
	return true
}

func getTestCategories() []Category {
	return []Category{
		{
			Name: "Preprocessing",
			Cases: []TestCase{
				{Text: "hello", Clean: "hello", Tokens: []string{"hello"}},
				{Text: "hellooooo", Opts: &analysis.Options{DestutterMaxConsecutive: 2, ReplaceHTMLEntities: true}, Clean: "helloo", Tokens: []string{"helloo"}},
				{Text: "a &amp; b", Clean: "a & b", Tokens: []string{"a", "&", "b"}},
				{Text: "HeLLo WoRLD", Clean: "hello world", Tokens: []string{"hello", "world"}},
				{Text: "", Tokens: []string{}},
			},
		},
		{
			Name: "Literal phrases",
			Cases: []TestCase{
				{Text: "thanks obama thanks hitler", Expected: map[string][][]int{
					"thanks": {{0, 1, 2}, {2, 3, 4}},
				}},
				{Text: "THANKS OBAMA", Expected: map[string][][]int{
					"thanks": {{0, 1, 2}},
				}},
				{Text: "thaaaaanks obama", Opts: &analysis.Options{DestutterMaxConsecutive: 1}, Clean: "thanks obama", Expected: map[string][][]int{
					"thanks": {{0, 1, 2}},
				}},
				{Text: "obama thanks", Expected: nil},
			},
		},
		{
			Name: "Overlapping matches",
			Cases: []TestCase{
				{Text: "x x x", Expected: map[string][][]int{
					"pairs": {{0, 1, 2}, {1, 2, 3}},
				}},
				{Text: "x x x x", Expected: map[string][][]int{
					"pairs": {{0, 1, 2}, {1, 2, 3}, {2, 3, 4}},
				}},
			},
		},
		{
			Name: "Lexicon, regex, contains and any pieces",
			Cases: []TestCase{
				{Text: "Obama is great and Biden was terrible", Expected: map[string][][]int{
					"judgement": {{0, 1, 2, 3}, {4, 5, 6, 7}},
				}},
				{Text: "born in 1961 in hawaii", Expected: map[string][][]int{
					"year": {{1, 2, 3}},
				}},
				{Text: "goddamnit you damned fool", Expected: map[string][][]int{
					"swear": {{0, 1}, {2, 3}},
				}},
				{Text: "thanks so much obama", Expected: map[string][][]int{
					"gap": {{0, 1, 3, 4}},
				}},
				{Text: "thanks a lot obama", Expected: map[string][][]int{
					"gap": {{0, 1, 3, 4}},
				}},
			},
		},
		{
			Name: "Errors",
			Cases: []TestCase{
				{Text: strings.Repeat("a", 65537), Err: diag.ErrInputTooLong},
				{Text: "x", Opts: &analysis.Options{DestutterMaxConsecutive: -1}, Err: diag.ErrBadOption},
			},
		},
	}
}
