package lexicon

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/couchbase/vellum"
)

// Build writes the lexicon to dir and returns the file path.
func (b *Builder) Build(dir, id string) (string, error) {
	path := filepath.Join(dir, id+FileExt)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	// Write header
	if _, err := file.WriteString(FileMagic); err != nil {
		return "", err
	}
	if err := binary.Write(file, binary.BigEndian, FileVersion); err != nil {
		return "", err
	}
	if err := binary.Write(file, binary.BigEndian, b.NumWords()); err != nil {
		return "", err
	}

	words := b.SortedWords()

	bitmapsOffset, err := file.Seek(0, 1)
	if err != nil {
		return "", err
	}
	offsets, err := b.writeBitmaps(file, words, uint64(bitmapsOffset))
	if err != nil {
		return "", err
	}

	dictOffset, err := file.Seek(0, 1)
	if err != nil {
		return "", err
	}
	dictSize, err := writeDict(file, words, offsets)
	if err != nil {
		return "", err
	}

	footerOffset, err := file.Seek(0, 1)
	if err != nil {
		return "", err
	}
	footerData, err := EncodeFooter(Footer{
		BitmapsOffset: uint64(bitmapsOffset),
		DictOffset:    uint64(dictOffset),
		DictSize:      dictSize,
		Features:      b.Features,
		NumWords:      b.NumWords(),
	})
	if err != nil {
		return "", err
	}
	if _, err := file.Write(footerData); err != nil {
		return "", err
	}
	if err := binary.Write(file, binary.BigEndian, uint64(footerOffset)); err != nil {
		return "", err
	}
	if err := binary.Write(file, binary.BigEndian, uint64(len(footerData))); err != nil {
		return "", err
	}

	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", err
	}
	return path, nil
}

// writeBitmaps writes one serialized bitmap per word and returns each word's
// offset relative to base.
func (b *Builder) writeBitmaps(file *os.File, words []string, base uint64) ([]uint64, error) {
	offsets := make([]uint64, len(words))
	pos := base
	for i, w := range words {
		bm := b.Words[w]
		bm.RunOptimize()
		offsets[i] = pos - base
		n, err := bm.WriteTo(file)
		if err != nil {
			return nil, err
		}
		pos += uint64(n)
	}
	return offsets, nil
}

// writeDict writes the word FST and returns its size in bytes.
func writeDict(file *os.File, words []string, offsets []uint64) (uint64, error) {
	var fstBuf bytes.Buffer
	fstBuilder, err := vellum.New(&fstBuf, nil)
	if err != nil {
		return 0, err
	}
	for i, w := range words {
		if err := fstBuilder.Insert([]byte(w), offsets[i]); err != nil {
			return 0, err
		}
	}
	if err := fstBuilder.Close(); err != nil {
		return 0, err
	}
	if _, err := file.Write(fstBuf.Bytes()); err != nil {
		return 0, err
	}
	return uint64(fstBuf.Len()), nil
}
