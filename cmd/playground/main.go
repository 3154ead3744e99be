// Playground for trying phrase detection.
//
// Run with: go run ./cmd/playground
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/library"
	"harshagw/phraser/internal/lexicon"
)

const lexiconText = `
obama    kind=person pos=noun
obamacare kind=policy pos=noun
hitler   kind=person pos=noun
biden    kind=person pos=noun
bidens   kind=person pos=noun
trump    kind=person pos=noun
great    pos=adj
terrible pos=adj
awesome  pos=adj
`

var phrases = []string{
	`thanks = verb object
----------
thanks
----------
@lexicon kind=person
`,
	`praise = who is{1,2} quality
----------
@lexicon kind=person
----------
is
so
really
----------
@lexicon pos=adj
`,
	`laugh = word
----------
@contains
haha
lol
`,
	`money = amount
----------
@regex
\$[0-9]+(k|m)?
`,
}

func runTexts(a *analysis.Analyzer, opts analysis.Options, texts []string) {
	for _, text := range texts {
		fmt.Printf("Text: %s\n", text)
		fmt.Println(strings.Repeat("-", 60))

		res, err := a.Analyze(text, opts)
		if err != nil {
			fmt.Printf("  Error (%s): %v\n\n", diag.Classify(err), err)
			continue
		}

		fmt.Printf("  clean:  %s\n", res.CleanText.String())
		fmt.Printf("  tokens: %q\n", res.Tokens)
		if res.MatchCount() == 0 {
			fmt.Println("  No matches")
		}
		for _, pr := range res.PhraseResults {
			for _, m := range pr.Matches {
				idx := m.IndexList()
				span := res.TokenOrigin(idx[0])
				last := res.TokenOrigin(m.EndExcl - 1)
				fmt.Printf("  %s %v: %q\n", pr.PhraseName, idx, res.OriginalText[span.Begin:last.End].String())
			}
		}
		fmt.Println()
	}
}

func main() {
	// Create a temporary directory for the library
	dir, err := os.MkdirTemp("", "phraser-playground-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fmt.Println("=== Phraser Playground ===")
	fmt.Printf("Library directory: %s\n\n", dir)

	lib, err := library.Open(library.DefaultConfig(dir))
	if err != nil {
		log.Fatal(err)
	}
	defer lib.Close()

	b, err := lexicon.Parse(strings.NewReader(lexiconText))
	if err != nil {
		log.Fatal(err)
	}
	if err := lib.SetLexicon(b); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Storing phrases...")
	for _, p := range phrases {
		name, err := lib.AddPhrase(p)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  Stored: %s\n", name)
	}
	fmt.Println()

	logger, err := diag.NewLogger("info")
	if err != nil {
		log.Fatal(err)
	}
	a, err := lib.NewAnalyzer(logger)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Default options ---")
	runTexts(a, analysis.DefaultOptions(), []string{
		"Thanks Obama",
		"thanks obama, thanks BIDEN",
		"Trump is so really great",
		"hahahaha that cost $300k lol",
		"Thanks &amp; goodbye, Hitler",
		"thaaaaaaanks obamaaaaa",
	})

	fmt.Println("--- Destutter to 1, entities kept ---")
	runTexts(a, analysis.Options{DestutterMaxConsecutive: 1}, []string{
		"thaaaaaaanks obamaaaaa",
		"Biden is awesommmmme",
		"&quot;thanks&quot; trump",
	})

	fmt.Println("--- Lexicon inspection ---")
	lex := lib.Lexicon()
	words, _ := lex.Words("obama")
	fmt.Printf("  prefix obama:     %v\n", words)
	words, _ = lex.MatchingWords("b.*s?")
	fmt.Printf("  regex b.*s?:      %v\n", words)
	words, _ = lex.SimilarWords("bidem", 1)
	fmt.Printf("  similar to bidem: %v\n", words)
	fmt.Println()

	fmt.Println("=== Configuration ===")
	data, _ := json.MarshalIndent(a.ToDict(), "", "  ")
	fmt.Println(string(data))
}
