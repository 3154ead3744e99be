package categorize

import (
	"errors"
	"strings"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/lexicon"
)

func literal(id int, words ...string) Expression {
	return Expression{Type: TypeLiteral, Args: words, ID: id}
}

func matches(d Described, expr Expression) []int {
	var out []int
	for i := 0; i < d.Len(); i++ {
		if d.IsMatch(expr, i) {
			out = append(out, i)
		}
	}
	return out
}

func TestLiteral(t *testing.T) {
	verb := literal(0, "thanks")
	object := literal(1, "obama", "hitler", "thanks")

	l, err := NewLiteral([]Expression{verb, object})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Words())

	tokens := strings.Fields("thanks obama thanks hitler bye")
	d := Bind[*roaring.Bitmap](l).Describe(tokens)
	require.Equal(t, len(tokens), d.Len())

	assert.Equal(t, []int{0, 2}, matches(d, verb))
	assert.Equal(t, []int{0, 1, 2, 3}, matches(d, object))

	descs := l.DescribeTokens(tokens)
	assert.Nil(t, descs[4], "unknown token has no description")
}

func TestLiteral_Rejects(t *testing.T) {
	tests := []Expression{
		literal(0),
		literal(0, "two words"),
		literal(0, ""),
		{Type: TypeLiteral, Filters: map[string]string{"pos": "noun"}, Args: []string{"x"}},
	}
	for _, e := range tests {
		_, err := NewLiteral([]Expression{e})
		assert.ErrorIs(t, err, diag.ErrBadConfig, "expr %v", e)
	}
}

func TestIsExpressionPossible(t *testing.T) {
	l, err := NewLiteral([]Expression{literal(0, "x")})
	require.NoError(t, err)

	assert.True(t, l.IsExpressionPossible(literal(0, "x")))
	assert.False(t, l.IsExpressionPossible(Expression{Type: TypeRegex, ID: 0}), "type tag differs")
	assert.False(t, l.IsExpressionPossible(Expression{Type: TypeLiteral, Filters: map[string]string{"pos": "noun"}}), "unknown dimension")
	assert.False(t, l.IsExpressionPossible(literal(5, "x")), "id not served")
}

func TestRegex(t *testing.T) {
	num := Expression{Type: TypeRegex, Args: []string{"[0-9]+"}, ID: 0}
	word := Expression{Type: TypeRegex, Args: []string{"th[a-z]*", "ob.*"}, ID: 1}

	r, err := NewRegex([]Expression{num, word})
	require.NoError(t, err)

	d := Bind[*roaring.Bitmap](r).Describe(strings.Fields("42 thanks obama 4x2 42 the"))
	assert.Equal(t, []int{0, 4}, matches(d, num))
	assert.Equal(t, []int{1, 2, 5}, matches(d, word))
}

func TestRegex_WholeTokenOnly(t *testing.T) {
	e := Expression{Type: TypeRegex, Args: []string{"ab"}, ID: 0}
	r, err := NewRegex([]Expression{e})
	require.NoError(t, err)

	d := Bind[*roaring.Bitmap](r).Describe([]string{"ab", "abc", "cab"})
	assert.Equal(t, []int{0}, matches(d, e))
}

func TestRegex_RejectsBadPattern(t *testing.T) {
	_, err := NewRegex([]Expression{{Type: TypeRegex, Args: []string{"(("}, ID: 0}})
	assert.ErrorIs(t, err, diag.ErrBadConfig)

	_, err = NewRegex([]Expression{{Type: TypeRegex, ID: 0}})
	assert.ErrorIs(t, err, diag.ErrBadConfig)
}

func TestContains(t *testing.T) {
	laugh := Expression{Type: TypeContains, Args: []string{"haha", "lol"}, ID: 0}
	ha := Expression{Type: TypeContains, Args: []string{"ha"}, ID: 1}

	c, err := NewContains([]Expression{laugh, ha})
	require.NoError(t, err)

	d := Bind[*roaring.Bitmap](c).Describe(strings.Fields("hahaha lolz ha nope"))
	assert.Equal(t, []int{0, 1}, matches(d, laugh))
	assert.Equal(t, []int{0, 2}, matches(d, ha))
}

func TestContains_RejectsEmptyNeedle(t *testing.T) {
	_, err := NewContains([]Expression{{Type: TypeContains, Args: []string{""}, ID: 0}})
	assert.ErrorIs(t, err, diag.ErrBadConfig)
}

func testLexicon(t *testing.T) lexicon.Lexicon {
	t.Helper()
	b, err := lexicon.Parse(strings.NewReader(`
thank  pos=verb
thanks pos=verb pos=noun
obama  pos=noun kind=person
`))
	require.NoError(t, err)
	return b
}

func TestLexicon(t *testing.T) {
	lex := testLexicon(t)
	verb := Expression{Type: TypeLexicon, Filters: map[string]string{"pos": "verb"}, ID: 0}
	person := Expression{Type: TypeLexicon, Filters: map[string]string{"pos": "noun", "kind": "person"}, ID: 1}
	known := Expression{Type: TypeLexicon, ID: 2}
	adj := Expression{Type: TypeLexicon, Filters: map[string]string{"pos": "adj"}, ID: 3}

	c, err := NewLexicon(lex, []Expression{verb, person, known, adj})
	require.NoError(t, err)

	for _, e := range []Expression{verb, person, known, adj} {
		assert.True(t, c.IsExpressionPossible(e), "expr %v", e)
	}
	assert.False(t, c.IsExpressionPossible(Expression{Type: TypeLexicon, Filters: map[string]string{"tense": "past"}}))

	d := Bind[*roaring.Bitmap](c).Describe(strings.Fields("thank obama thanks you"))
	assert.Equal(t, []int{0, 2}, matches(d, verb))
	assert.Equal(t, []int{1}, matches(d, person))
	assert.Equal(t, []int{0, 1, 2}, matches(d, known))
	assert.Empty(t, matches(d, adj), "unknown value never matches")
}

func TestLexicon_NeedsLexicon(t *testing.T) {
	_, err := NewLexiconFactory([]Expression{{Type: TypeLexicon}}, Env{})
	assert.ErrorIs(t, err, diag.ErrBadConfig)
}

func TestLexicon_RejectsPayload(t *testing.T) {
	_, err := NewLexicon(testLexicon(t), []Expression{{Type: TypeLexicon, Args: []string{"x"}}})
	assert.ErrorIs(t, err, diag.ErrBadConfig)
}

func TestAny(t *testing.T) {
	e := Expression{Type: TypeAny}
	a, err := NewAny([]Expression{e})
	require.NoError(t, err)

	d := Bind[struct{}](a).Describe([]string{"a", "b"})
	assert.Equal(t, []int{0, 1}, matches(d, e))

	_, err = NewAny([]Expression{{Type: TypeAny, Args: []string{"x"}}})
	assert.ErrorIs(t, err, diag.ErrBadConfig)
}

func TestRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{TypeAny, TypeContains, TypeLexicon, TypeLiteral, TypeRegex}, r.Types())
	assert.True(t, r.Has(TypeLiteral))

	ev, err := r.Build(TypeLiteral, []Expression{literal(0, "x")}, Env{})
	require.NoError(t, err)
	assert.Equal(t, TypeLiteral, ev.Type())

	_, err = r.Build("pos", nil, Env{})
	assert.ErrorIs(t, err, diag.ErrBadConfig)

	_, err = r.Build(TypeLiteral, []Expression{literal(3, "x")}, Env{})
	assert.True(t, errors.Is(err, diag.ErrInternal), "misnumbered ids: %v", err)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has(TypeAny))
	r.Register(TypeAny, NewAnyFactory)
	assert.True(t, r.Has(TypeAny))
}

func TestExpression_Dict(t *testing.T) {
	e := Expression{Type: TypeLexicon, Filters: map[string]string{"pos": "noun"}}
	d := e.Dict()
	assert.Equal(t, TypeLexicon, d["type"])
	assert.Equal(t, map[string]string{"pos": "noun"}, d["filters"])
	assert.Equal(t, []string{}, d["args"])
	assert.Equal(t, "@lexicon pos=noun", e.String())
}
