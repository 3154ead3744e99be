package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/golang/snappy"
	"github.com/google/uuid"
)

var (
	bucketPhrases = []byte("phrases")
	bucketMeta    = []byte("meta")
	bucketHistory = []byte("history")
	keyEpoch      = []byte("epoch")
	keyLexicon    = []byte("lexicon")
)

// DBFile is the catalog file name inside a workspace directory.
const DBFile = "meta.db"

// PhraseRecord is a stored phrase configuration.
type PhraseRecord struct {
	Name string
	Text string
}

// HistoryRecord is one recorded analysis.
type HistoryRecord struct {
	ID      string          `json:"id"`
	Time    time.Time       `json:"time"`
	Text    string          `json:"text"`
	Matches int             `json:"matches"`
	Result  json.RawMessage `json:"result"`
}

// Catalog provides persistent storage for phrase configurations, workspace
// metadata and analysis history using BoltDB.
type Catalog struct {
	db *bolt.DB
}

// Open opens or creates the catalog in dir.
func Open(dir string) (*Catalog, error) {
	dbPath := filepath.Join(dir, DBFile)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	// Initialize buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPhrases, bucketMeta, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db}, nil
}

// Phrases returns every stored phrase, ordered by name.
func (c *Catalog) Phrases() ([]PhraseRecord, error) {
	var out []PhraseRecord
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPhrases).ForEach(func(k, v []byte) error {
			text, err := snappy.Decode(nil, v)
			if err != nil {
				return fmt.Errorf("phrase %s: %w", k, err)
			}
			out = append(out, PhraseRecord{Name: string(k), Text: string(text)})
			return nil
		})
	})
	return out, err
}

// Phrase returns the stored configuration of one phrase.
func (c *Catalog) Phrase(name string) (text string, found bool, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketPhrases).Get([]byte(name))
		if data == nil {
			return nil
		}
		found = true
		raw, err := snappy.Decode(nil, data)
		text = string(raw)
		return err
	})
	return text, found, err
}

// Epoch returns the current epoch.
func (c *Catalog) Epoch() (uint64, error) {
	var epoch uint64
	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyEpoch)
		if data == nil {
			return nil
		}
		epoch = binary.BigEndian.Uint64(data)
		return nil
	})
	return epoch, err
}

// LexiconID returns the id of the current lexicon file, or "" if none.
func (c *Catalog) LexiconID() (string, error) {
	var id string
	err := c.db.View(func(tx *bolt.Tx) error {
		id = string(tx.Bucket(bucketMeta).Get(keyLexicon))
		return nil
	})
	return id, err
}

// History returns up to limit recorded analyses, newest first. A limit of 0
// returns everything.
func (c *Catalog) History(limit int) ([]HistoryRecord, error) {
	var out []HistoryRecord
	err := c.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(bucketHistory).Cursor()
		for k, v := cur.Last(); k != nil; k, v = cur.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			rec, err := decodeHistory(v)
			if err != nil {
				return fmt.Errorf("history %x: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Update runs fn within a write transaction.
func (c *Catalog) Update(fn func(*Tx) error) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return fn(&Tx{tx: tx})
	})
}

// Tx provides write operations within a transaction.
type Tx struct {
	tx *bolt.Tx
}

// PutPhrase stores the configuration text of a phrase.
func (t *Tx) PutPhrase(name, text string) error {
	return t.tx.Bucket(bucketPhrases).Put([]byte(name), snappy.Encode(nil, []byte(text)))
}

// DeletePhrase removes a phrase. Returns true if it existed.
func (t *Tx) DeletePhrase(name string) (bool, error) {
	b := t.tx.Bucket(bucketPhrases)
	if b.Get([]byte(name)) == nil {
		return false, nil
	}
	return true, b.Delete([]byte(name))
}

// SetLexiconID records the current lexicon file id.
func (t *Tx) SetLexiconID(id string) error {
	return t.tx.Bucket(bucketMeta).Put(keyLexicon, []byte(id))
}

// IncrementEpoch increments and returns the epoch.
func (t *Tx) IncrementEpoch() (uint64, error) {
	b := t.tx.Bucket(bucketMeta)
	var epoch uint64
	data := b.Get(keyEpoch)
	if data != nil {
		epoch = binary.BigEndian.Uint64(data)
	}
	epoch++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, epoch)
	return epoch, b.Put(keyEpoch, buf)
}

// AddHistory stores rec under a new time-ordered id and returns the id.
// rec.ID and rec.Time are filled in when empty.
func (t *Tx) AddHistory(rec HistoryRecord) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = id.String()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	key, _ := id.MarshalBinary()
	return rec.ID, t.tx.Bucket(bucketHistory).Put(key, snappy.Encode(nil, data))
}

// TrimHistory keeps only the newest keep records and returns how many
// were removed.
func (t *Tx) TrimHistory(keep int) (int, error) {
	b := t.tx.Bucket(bucketHistory)
	total := 0
	cur := b.Cursor()
	for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
		total++
	}
	if total <= keep {
		return 0, nil
	}
	var stale [][]byte
	for k, _ := cur.First(); k != nil && len(stale) < total-keep; k, _ = cur.Next() {
		stale = append(stale, append([]byte(nil), k...))
	}
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

func decodeHistory(data []byte) (HistoryRecord, error) {
	var rec HistoryRecord
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(raw, &rec)
	return rec, err
}
