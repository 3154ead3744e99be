package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

const (
	defaultTexts = 10000
	// Texts are tweet sized.
	minWords = 5
	maxWords = 40
)

var vocabulary = strings.Fields(`
the a and of to in is was it that for on with as at by this be are from
thanks thank obama hitler biden trump clinton congress president senate
great terrible awful awesome amazing bad good best worst sad lol haha
hahaha lmao omg wtf damn goddamn really so very much many such not never
today yesterday tomorrow 2016 2020 1999 $100 $5k #politics @user http
&amp; &quot; &gt; &lt; ... !!! ??? :) :(
`)

var stutters = []string{"soooooo", "thaaaanks", "nooooo", "yesssss", "lolllll", "!!!!!!!!"}

// generateTexts builds a deterministic corpus of n short texts.
func generateTexts(n int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	texts := make([]string, n)
	for i := range texts {
		words := make([]string, minWords+rng.Intn(maxWords-minWords+1))
		for j := range words {
			if rng.Intn(20) == 0 {
				words[j] = stutters[rng.Intn(len(stutters))]
				continue
			}
			w := vocabulary[rng.Intn(len(vocabulary))]
			if rng.Intn(8) == 0 {
				w = strings.ToUpper(w[:1]) + w[1:]
			}
			words[j] = w
		}
		texts[i] = strings.Join(words, " ")
	}
	return texts
}

// loadTexts reads one text per non-empty line.
func loadTexts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var texts []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return texts, nil
}

// benchLexicon is the lexicon text used by @lexicon phrases.
func benchLexicon() string {
	var b strings.Builder
	for _, w := range []string{"obama", "hitler", "biden", "trump", "clinton"} {
		fmt.Fprintf(&b, "%s kind=person pos=noun\n", w)
	}
	for _, w := range []string{"congress", "president", "senate"} {
		fmt.Fprintf(&b, "%s kind=office pos=noun\n", w)
	}
	for _, w := range []string{"great", "terrible", "awful", "awesome", "amazing", "bad", "good", "best", "worst", "sad"} {
		fmt.Fprintf(&b, "%s pos=adj\n", w)
	}
	// Padding so the lexicon file is not trivially small.
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&b, "filler%05d pos=noun\n", i)
	}
	return b.String()
}

var benchPhrases = []string{
	`thanks = verb object
----------
thanks
thank
----------
@lexicon kind=person
`,
	`judgement = who intens{1,2} quality
----------
@lexicon kind=person
----------
so
very
really
----------
@lexicon pos=adj
`,
	`laugh = word
----------
@contains
haha
lol
lmao
`,
	`money = amount
----------
@regex
\$[0-9]+k?
`,
	`swear = curse filler{1,3} who
----------
@contains
damn
----------
@any
----------
@lexicon kind=person
`,
	`pairs = a b
----------
the
----------
president
senate
congress
`,
}
