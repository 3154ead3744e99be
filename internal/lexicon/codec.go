package lexicon

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// Lexicon file format constants
const (
	FileMagic   = "PLX\x00"
	FileVersion = uint32(1)
	FileExt     = ".lex"

	// magic + version + word count, then the 16 byte trailer.
	headerSize  = len(FileMagic) + 4 + 8
	trailerSize = 16
)

// Footer describes the sections of a lexicon file.
type Footer struct {
	BitmapsOffset uint64   `json:"bitmaps_offset"`
	DictOffset    uint64   `json:"dict_offset"`
	DictSize      uint64   `json:"dict_size"`
	Features      []string `json:"features"`
	NumWords      uint64   `json:"num_words"`
}

// EncodeFooter serializes and compresses a footer.
func EncodeFooter(f Footer) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

// DecodeFooter reverses EncodeFooter.
func DecodeFooter(data []byte) (Footer, error) {
	var f Footer
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return f, fmt.Errorf("failed to decompress footer: %w", err)
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("failed to parse footer: %w", err)
	}
	return f, nil
}
