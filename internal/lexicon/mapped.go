package lexicon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring"
	"github.com/couchbase/vellum"
	"github.com/couchbase/vellum/levenshtein"
	"github.com/couchbase/vellum/regexp"
	"github.com/edsrzf/mmap-go"
)

// Mapped is an immutable, mmap'd lexicon file.
type Mapped struct {
	id     string
	path   string
	file   *os.File
	data   mmap.MMap
	footer Footer
	fst    *vellum.FST

	featureIDs map[string]uint32
	dims       []string
}

// Open opens an existing lexicon file with mmap.
func Open(path, id string) (*Mapped, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if stat.Size() < int64(headerSize+trailerSize) {
		file.Close()
		return nil, fmt.Errorf("lexicon file too small: %s", path)
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap lexicon %s: %w", path, err)
	}

	m := &Mapped{id: id, path: path, file: file, data: data}
	if err := m.load(); err != nil {
		m.Close()
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return m, nil
}

func (m *Mapped) load() error {
	data := m.data
	if string(data[:len(FileMagic)]) != FileMagic {
		return fmt.Errorf("invalid lexicon magic")
	}
	if v := binary.BigEndian.Uint32(data[len(FileMagic):]); v != FileVersion {
		return fmt.Errorf("unsupported lexicon version %d", v)
	}

	size := uint64(len(data))
	footerOffset := binary.BigEndian.Uint64(data[size-16 : size-8])
	footerSize := binary.BigEndian.Uint64(data[size-8:])
	if footerOffset+footerSize > size-trailerSize {
		return fmt.Errorf("footer out of range")
	}
	footer, err := DecodeFooter(data[footerOffset : footerOffset+footerSize])
	if err != nil {
		return err
	}
	if footer.DictOffset+footer.DictSize > footerOffset {
		return fmt.Errorf("dictionary out of range")
	}

	fst, err := vellum.Load(data[footer.DictOffset : footer.DictOffset+footer.DictSize])
	if err != nil {
		return fmt.Errorf("failed to load FST: %w", err)
	}

	m.footer = footer
	m.fst = fst
	m.featureIDs = make(map[string]uint32, len(footer.Features))
	for i, f := range footer.Features {
		m.featureIDs[f] = uint32(i)
	}
	m.dims = dimensionsOf(footer.Features)
	return nil
}

// ID returns the lexicon ID.
func (m *Mapped) ID() string { return m.id }

// Path returns the lexicon file path.
func (m *Mapped) Path() string { return m.path }

func (m *Mapped) NumWords() uint64 { return m.footer.NumWords }

func (m *Mapped) Dimensions() []string {
	return append([]string(nil), m.dims...)
}

func (m *Mapped) HasDimension(dim string) bool {
	for _, d := range m.dims {
		if d == dim {
			return true
		}
	}
	return false
}

func (m *Mapped) Feature(dim, value string) (uint32, bool) {
	id, ok := m.featureIDs[FeatureKey(dim, value)]
	return id, ok
}

// FeatureName returns the dim=value key of a feature id.
func (m *Mapped) FeatureName(id uint32) (string, bool) {
	if int(id) >= len(m.footer.Features) {
		return "", false
	}
	return m.footer.Features[id], true
}

// Lookup returns the feature ids of an already folded word, or nil.
func (m *Mapped) Lookup(word string) *roaring.Bitmap {
	val, exists, err := m.fst.Get([]byte(word))
	if err != nil || !exists {
		return nil
	}
	bm, err := m.bitmapAt(val)
	if err != nil {
		return nil
	}
	return bm
}

func (m *Mapped) bitmapAt(rel uint64) (*roaring.Bitmap, error) {
	off := m.footer.BitmapsOffset + rel
	if off >= m.footer.DictOffset {
		return nil, fmt.Errorf("bitmap offset %d out of range", off)
	}
	bm := roaring.New()
	if _, err := bm.ReadFrom(bytes.NewReader(m.data[off:m.footer.DictOffset])); err != nil {
		return nil, fmt.Errorf("failed to read bitmap: %w", err)
	}
	return bm, nil
}

// Words returns all words starting with prefix, in byte order.
// Uses an FST range scan instead of an automaton.
func (m *Mapped) Words(prefix string) ([]string, error) {
	var start, end []byte
	if prefix != "" {
		start = []byte(prefix)
		end = prefixSuccessor(start)
	}
	iter, err := m.fst.Iterator(start, end)
	return collect(iter, err)
}

// MatchingWords returns all words matching the regex pattern.
func (m *Mapped) MatchingWords(pattern string) ([]string, error) {
	aut, err := regexp.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return m.searchWithAutomaton(aut)
}

// SimilarWords returns all words within edit distance fuzziness of word.
// It helps spot misspelled lexicon entries; matching never uses it.
func (m *Mapped) SimilarWords(word string, fuzziness uint8) ([]string, error) {
	builder, err := levenshtein.NewLevenshteinAutomatonBuilder(fuzziness, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create levenshtein builder: %w", err)
	}
	aut, err := builder.BuildDfa(word, fuzziness)
	if err != nil {
		return nil, fmt.Errorf("failed to build fuzzy automaton: %w", err)
	}
	return m.searchWithAutomaton(aut)
}

func (m *Mapped) searchWithAutomaton(aut vellum.Automaton) ([]string, error) {
	iter, err := m.fst.Search(aut, nil, nil)
	return collect(iter, err)
}

func collect(iter *vellum.FSTIterator, err error) ([]string, error) {
	var words []string
	for err == nil {
		key, _ := iter.Current()
		words = append(words, string(key))
		err = iter.Next()
	}
	if err != vellum.ErrIteratorDone {
		return nil, err
	}
	return words, nil
}

// Close releases lexicon resources.
func (m *Mapped) Close() error {
	if m.fst != nil {
		m.fst.Close()
		m.fst = nil
	}
	if m.data != nil {
		m.data.Unmap()
		m.data = nil
	}
	if m.file != nil {
		err := m.file.Close()
		m.file = nil
		return err
	}
	return nil
}
