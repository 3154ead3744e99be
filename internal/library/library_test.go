package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/lexicon"
)

const thanks = `thanks = verb object
----------
thanks
----------
obama
hitler
`

const people = `people = greet who
----------
hello
----------
@lexicon kind=person
`

func openLibrary(t *testing.T, dir string) *Library {
	t.Helper()
	lib, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func parseLexicon(t *testing.T, text string) *lexicon.Builder {
	t.Helper()
	b, err := lexicon.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return b
}

func TestAddAndRemovePhrase(t *testing.T) {
	lib := openLibrary(t, t.TempDir())

	name, err := lib.AddPhrase(thanks)
	require.NoError(t, err)
	assert.Equal(t, "thanks", name)
	assert.Equal(t, uint64(1), lib.Epoch())

	recs, err := lib.Phrases()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, thanks, recs[0].Text)

	existed, err := lib.RemovePhrase("thanks")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, uint64(2), lib.Epoch())

	existed, err = lib.RemovePhrase("thanks")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, uint64(2), lib.Epoch())
}

func TestAddPhraseReplacesSameName(t *testing.T) {
	lib := openLibrary(t, t.TempDir())

	_, err := lib.AddPhrase(thanks)
	require.NoError(t, err)
	replacement := strings.Replace(thanks, "hitler", "biden", 1)
	_, err = lib.AddPhrase(replacement)
	require.NoError(t, err)

	text, found, err := lib.Phrase("thanks")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, replacement, text)

	recs, _ := lib.Phrases()
	assert.Len(t, recs, 1)
}

func TestAddPhraseRejectsBadConfig(t *testing.T) {
	lib := openLibrary(t, t.TempDir())

	_, err := lib.AddPhrase("p = a b\n----------\nx\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrBadConfig))

	// Lexicon pieces need a lexicon.
	_, err = lib.AddPhrase(people)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrBadConfig))

	recs, _ := lib.Phrases()
	assert.Empty(t, recs)
	assert.Equal(t, uint64(0), lib.Epoch())
}

func TestSetLexicon(t *testing.T) {
	dir := t.TempDir()
	lib := openLibrary(t, dir)

	require.NoError(t, lib.SetLexicon(parseLexicon(t, "obama kind=person\n")))
	first := lib.Lexicon()
	require.NotNil(t, first)
	assert.Equal(t, uint64(1), first.NumWords())

	_, err := lib.AddPhrase(people)
	require.NoError(t, err)

	require.NoError(t, lib.SetLexicon(parseLexicon(t, "obama kind=person\nhitler kind=person\n")))
	second := lib.Lexicon()
	assert.Equal(t, uint64(2), second.NumWords())
	assert.NotEqual(t, first.ID(), second.ID())

	_, err = os.Stat(first.Path())
	assert.True(t, os.IsNotExist(err), "old lexicon file should be removed")

	a, err := lib.NewAnalyzer(logr.Discard())
	require.NoError(t, err)
	r, err := a.Analyze("Hello Hitler", analysis.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, r.PhraseResults, 1)
	require.Len(t, r.PhraseResults[0].Matches, 1)
	assert.Equal(t, []int{0, 1, 2}, r.PhraseResults[0].Matches[0].IndexList())
}

func TestSetLexiconRejectsIncompatible(t *testing.T) {
	dir := t.TempDir()
	lib := openLibrary(t, dir)

	require.NoError(t, lib.SetLexicon(parseLexicon(t, "obama kind=person\n")))
	_, err := lib.AddPhrase(people)
	require.NoError(t, err)
	epoch := lib.Epoch()
	current := lib.Lexicon().ID()

	// No kind dimension: the stored phrase can no longer compile.
	err = lib.SetLexicon(parseLexicon(t, "obama pos=noun\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrBadConfig))
	assert.Equal(t, epoch, lib.Epoch())
	assert.Equal(t, current, lib.Lexicon().ID())

	files, _ := filepath.Glob(filepath.Join(dir, "*"+lexicon.FileExt))
	assert.Len(t, files, 1)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	lib, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, lib.SetLexicon(parseLexicon(t, "obama kind=person\n")))
	_, err = lib.AddPhrase(people)
	require.NoError(t, err)
	_, err = lib.AddPhrase(thanks)
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	lib = openLibrary(t, dir)
	assert.Equal(t, uint64(3), lib.Epoch())
	require.NotNil(t, lib.Lexicon())

	a, err := lib.NewAnalyzer(logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"people", "thanks"}, a.Phrases())
}

func TestRecordAndHistory(t *testing.T) {
	config := DefaultConfig(t.TempDir())
	config.HistoryLimit = 2
	lib, err := Open(config)
	require.NoError(t, err)
	defer lib.Close()

	_, err = lib.AddPhrase(thanks)
	require.NoError(t, err)
	a, err := lib.NewAnalyzer(logr.Discard())
	require.NoError(t, err)

	for _, text := range []string{"thanks obama", "nothing here", "Thanks Hitler"} {
		r, err := a.Analyze(text, analysis.DefaultOptions())
		require.NoError(t, err)
		id, err := lib.Record(r)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	hist, err := lib.History(0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "Thanks Hitler", hist[0].Text)
	assert.Equal(t, 1, hist[0].Matches)
	assert.Equal(t, "nothing here", hist[1].Text)
	assert.Equal(t, 0, hist[1].Matches)
	assert.Contains(t, string(hist[0].Result), `"phrase_name":"thanks"`)
}

func TestClosed(t *testing.T) {
	lib, err := Open(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close())

	_, err = lib.AddPhrase(thanks)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = lib.Phrases()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = lib.NewAnalyzer(logr.Discard())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, lib.SetLexicon(lexicon.NewBuilder()), ErrClosed)
}
