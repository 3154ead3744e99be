package library

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/lexicon"
	"harshagw/phraser/internal/phrase"
	"harshagw/phraser/internal/store"
)

// AddPhrase stores a phrase configuration, replacing any phrase with the
// same name. The whole phrase set is compiled against the current lexicon
// first, so a configuration that would break Init is never stored.
func (lib *Library) AddPhrase(text string) (string, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.closed {
		return "", ErrClosed
	}

	cfg, err := phrase.ParseConfig(text)
	if err != nil {
		return "", err
	}

	recs, err := lib.catalog.Phrases()
	if err != nil {
		return "", err
	}
	texts := []string{text}
	for _, r := range recs {
		if r.Name != cfg.Name {
			texts = append(texts, r.Text)
		}
	}
	if _, err := lib.newAnalyzer(logr.Discard(), lib.lexicon, texts); err != nil {
		return "", err
	}

	var epoch uint64
	err = lib.catalog.Update(func(tx *store.Tx) error {
		if err := tx.PutPhrase(cfg.Name, text); err != nil {
			return err
		}
		epoch, err = tx.IncrementEpoch()
		return err
	})
	if err != nil {
		return "", err
	}
	lib.epoch = epoch
	lib.logger.Info("phrase stored", "phrase", cfg.Name, "epoch", epoch)
	return cfg.Name, nil
}

// RemovePhrase deletes a stored phrase. Returns false if it did not exist.
func (lib *Library) RemovePhrase(name string) (bool, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.closed {
		return false, ErrClosed
	}

	var existed bool
	var epoch uint64
	err := lib.catalog.Update(func(tx *store.Tx) error {
		var err error
		existed, err = tx.DeletePhrase(name)
		if err != nil || !existed {
			return err
		}
		epoch, err = tx.IncrementEpoch()
		return err
	})
	if err != nil {
		return false, err
	}
	if existed {
		lib.epoch = epoch
		lib.logger.Info("phrase removed", "phrase", name, "epoch", epoch)
	}
	return existed, nil
}

// SetLexicon writes b as the new lexicon file and makes it current. Every
// stored phrase must still compile against it.
func (lib *Library) SetLexicon(b *lexicon.Builder) error {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.closed {
		return ErrClosed
	}

	currentEpoch, err := lib.catalog.Epoch()
	if err != nil {
		return err
	}
	lexiconID := fmt.Sprintf("%012d", currentEpoch+1)

	path, err := b.Build(lib.dir, lexiconID)
	if err != nil {
		return err
	}
	lex, err := lexicon.Open(path, lexiconID)
	if err != nil {
		os.Remove(path)
		return err
	}
	discard := func(err error) error {
		lex.Close()
		os.Remove(path)
		return err
	}

	recs, err := lib.catalog.Phrases()
	if err != nil {
		return discard(err)
	}
	texts := make([]string, len(recs))
	for i, r := range recs {
		texts[i] = r.Text
	}
	if _, err := lib.newAnalyzer(logr.Discard(), lex, texts); err != nil {
		return discard(fmt.Errorf("stored phrases do not compile against new lexicon: %w", err))
	}

	var epoch uint64
	err = lib.catalog.Update(func(tx *store.Tx) error {
		if err := tx.SetLexiconID(lexiconID); err != nil {
			return err
		}
		epoch, err = tx.IncrementEpoch()
		return err
	})
	if err != nil {
		return discard(err)
	}

	if old := lib.lexicon; old != nil {
		lib.retired = append(lib.retired, old)
		// Unlinking keeps the mapping valid until Close.
		if err := os.Remove(old.Path()); err != nil && !os.IsNotExist(err) {
			lib.logger.Error(err, "failed to remove old lexicon", "lexicon", old.ID())
		}
	}
	lib.lexicon = lex
	lib.epoch = epoch
	lib.logger.Info("lexicon installed", "lexicon", lexiconID, "words", lex.NumWords(), "epoch", epoch)
	return nil
}

// Record stores an analysis result in the history and returns its id.
func (lib *Library) Record(res *analysis.Result) (string, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.closed {
		return "", ErrClosed
	}

	data, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	rec := store.HistoryRecord{
		Text:    res.OriginalText.String(),
		Matches: res.MatchCount(),
		Result:  data,
	}

	var id string
	err = lib.catalog.Update(func(tx *store.Tx) error {
		var err error
		id, err = tx.AddHistory(rec)
		if err != nil {
			return err
		}
		if lib.historyLimit > 0 {
			_, err = tx.TrimHistory(lib.historyLimit)
		}
		return err
	})
	return id, err
}
