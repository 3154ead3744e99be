package phrase

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"harshagw/phraser/internal/categorize"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/lexicon"
	"harshagw/phraser/internal/sequence"
)

const plaudit = `plaudit = verb object
----------
thanks
----------
obama
hitler
`

func mustParse(t *testing.T, text string) *Config {
	t.Helper()
	cfg, err := ParseConfig(text)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	return cfg
}

func mustCompile(t *testing.T, text string, opts CompileOptions) *Phrase {
	t.Helper()
	p, err := Compile(mustParse(t, text), opts)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return p
}

func indexLists(ms []sequence.Match) [][]int {
	out := make([][]int, len(ms))
	for i, m := range ms {
		out[i] = m.IndexList()
	}
	return out
}

func TestParseConfig_Plaudit(t *testing.T) {
	cfg := mustParse(t, plaudit)

	if cfg.Name != "plaudit" {
		t.Errorf("name: got %q", cfg.Name)
	}
	if got := cfg.Pattern().PieceNames(); !reflect.DeepEqual(got, []string{"verb", "object"}) {
		t.Errorf("pieces: got %v", got)
	}
	if len(cfg.Exprs) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(cfg.Exprs))
	}
	if cfg.Exprs[0].Type != categorize.TypeLiteral {
		t.Errorf("default type: got %q", cfg.Exprs[0].Type)
	}
	if !reflect.DeepEqual(cfg.Exprs[1].Args, []string{"obama", "hitler"}) {
		t.Errorf("args: got %v", cfg.Exprs[1].Args)
	}
}

func TestParseConfig_TypesAndBounds(t *testing.T) {
	cfg := mustParse(t, `
greeting = hello gap{1,3} who{2}

-----
hi

hello
-----
@any
-----
@lexicon pos=noun kind=person
`)
	want := []sequence.Piece{
		{Name: "hello", Min: 1, Max: 1},
		{Name: "gap", Min: 1, Max: 3},
		{Name: "who", Min: 2, Max: 2},
	}
	if !reflect.DeepEqual(cfg.Pieces, want) {
		t.Errorf("pieces: got %v", cfg.Pieces)
	}
	if !reflect.DeepEqual(cfg.Exprs[0].Args, []string{"hi", "hello"}) {
		t.Errorf("blank lines should be skipped, got %v", cfg.Exprs[0].Args)
	}
	if cfg.Exprs[1].Type != categorize.TypeAny || len(cfg.Exprs[1].Args) != 0 {
		t.Errorf("any block: got %v", cfg.Exprs[1])
	}
	if f := cfg.Exprs[2].Filters; f["pos"] != "noun" || f["kind"] != "person" {
		t.Errorf("filters: got %v", f)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":             "   \n\n",
		"no equals":         "plaudit verb object\n----------\nx\n----------\ny",
		"no pieces":         "plaudit =\n",
		"empty name":        " = a\n----------\nx",
		"zero min":          "p = a{0,2}\n----------\nx",
		"max below min":     "p = a{3,2}\n----------\nx",
		"bad bound":         "p = a{x}\n----------\nx",
		"unclosed brace":    "p = a{1\n----------\nx",
		"too few blocks":    "p = a b\n----------\nx",
		"too many blocks":   "p = a\n----------\nx\n----------\ny",
		"text before block": "p = a\nx\n----------\ny",
		"bad filter":        "p = a\n----------\n@lexicon pos",
		"empty type":        "p = a\n----------\n@",
		"duplicate filter":  "p = a\n----------\n@lexicon pos=a pos=b",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(text)
			if !errors.Is(err, diag.ErrBadConfig) {
				t.Errorf("expected ErrBadConfig, got %v", err)
			}
		})
	}
}

func TestParseConfig_ErrorNamesPhrase(t *testing.T) {
	_, err := ParseConfig("plaudit = verb object\n----------\nthanks\n")
	if err == nil || !strings.Contains(err.Error(), "plaudit") {
		t.Errorf("error should name the phrase, got %v", err)
	}
}

func TestConfig_StringRoundTrip(t *testing.T) {
	cfg := mustParse(t, "p = a b{1,2}\n----------\nx\ny\n----------\n@lexicon pos=noun\n")
	again := mustParse(t, cfg.String())
	if !reflect.DeepEqual(cfg, again) {
		t.Errorf("round trip differs:\n%v\n%v", cfg, again)
	}
}

func TestCompile_Detect(t *testing.T) {
	p := mustCompile(t, plaudit, CompileOptions{})

	res := p.Detect(strings.Fields("thanks obama thanks hitler"))
	if res.PhraseName != "plaudit" || !reflect.DeepEqual(res.PieceNames, []string{"verb", "object"}) {
		t.Errorf("result header: got %s %v", res.PhraseName, res.PieceNames)
	}
	want := [][]int{{0, 1, 2}, {2, 3, 4}}
	if got := indexLists(res.Matches); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_MixedTypes(t *testing.T) {
	lex, err := lexicon.Parse(strings.NewReader("obama pos=noun kind=person\nhitler pos=noun kind=person\n"))
	if err != nil {
		t.Fatalf("lexicon.Parse error: %v", err)
	}
	p := mustCompile(t, `plaudit = verb gap{1,2} who
----------
Thanks
thank
----------
@any
----------
@lexicon kind=person
`, CompileOptions{Env: categorize.Env{Lexicon: lex}})

	if got := p.Types(); !reflect.DeepEqual(got, []string{"any", "lexicon", "literal"}) {
		t.Errorf("types: got %v", got)
	}

	res := p.Detect(strings.Fields("thanks a lot obama"))
	want := [][]int{{0, 1, 3, 4}}
	if got := indexLists(res.Matches); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_SharesEvaluatorPerType(t *testing.T) {
	p := mustCompile(t, "p = a b c\n-----\nx\n-----\n@regex\n[0-9]+\n-----\ny\n", CompileOptions{})
	if len(p.evaluators) != 2 {
		t.Errorf("expected 2 evaluators, got %d", len(p.evaluators))
	}
	if p.exprs[2].ID != 1 || p.pieceEval[2] != p.pieceEval[0] {
		t.Errorf("piece c should be literal expression 1, got %+v", p.exprs[2])
	}

	res := p.Detect(strings.Fields("x 42 y x 7 z"))
	want := [][]int{{0, 1, 2, 3}}
	if got := indexLists(res.Matches); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_Normalizer(t *testing.T) {
	upper := func(w string) (string, error) { return "<" + w + ">", nil }
	p := mustCompile(t, "p = a\n-----\nX\n", CompileOptions{Normalize: upper})

	if got := p.Config().Exprs[0].Args; !reflect.DeepEqual(got, []string{"<X>"}) {
		t.Errorf("normalized args: got %v", got)
	}
	if len(p.Detect([]string{"<X>"}).Matches) != 1 {
		t.Error("expected a match on the normalized word")
	}
}

func TestCompile_DefaultFoldsLiterals(t *testing.T) {
	p := mustCompile(t, "p = a\n-----\nObama\n", CompileOptions{})
	if len(p.Detect([]string{"obama"}).Matches) != 1 {
		t.Error("literal words should be case folded")
	}
}

func TestCompile_Rejects(t *testing.T) {
	lex, _ := lexicon.Parse(strings.NewReader("obama pos=noun\n"))
	tests := map[string]struct {
		text string
		env  categorize.Env
	}{
		"unknown type":      {"p = a\n-----\n@pos\n", categorize.Env{}},
		"unknown dimension": {"p = a\n-----\n@lexicon tense=past\n", categorize.Env{Lexicon: lex}},
		"no lexicon":        {"p = a\n-----\n@lexicon pos=noun\n", categorize.Env{}},
		"empty literal":     {"p = a b\n-----\nx\n-----\n", categorize.Env{}},
		"bad regex":         {"p = a\n-----\n@regex\n((\n", categorize.Env{}},
		"filtered literal":  {"p = a\n-----\n@literal pos=noun\nx\n", categorize.Env{}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(mustParse(t, tt.text), CompileOptions{Env: tt.env})
			if !errors.Is(err, diag.ErrBadConfig) {
				t.Fatalf("expected ErrBadConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), "phrase p") {
				t.Errorf("error should name the phrase: %v", err)
			}
		})
	}
}

func TestPhrase_Dict(t *testing.T) {
	p := mustCompile(t, "p = a b{1,2}\n-----\nx\n-----\n@any\n", CompileOptions{})
	d := p.Dict()
	if d["name"] != "p" {
		t.Errorf("name: got %v", d["name"])
	}
	pieces := d["pieces"].([]any)
	b := pieces[1].(map[string]any)
	if b["name"] != "b" || b["min"] != 1 || b["max"] != 2 || b["type"] != "any" {
		t.Errorf("piece b: got %v", b)
	}
}
