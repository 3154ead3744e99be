package preprocess

import (
	"fmt"

	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/ustring"
)

// Options selects the configurable preprocessing steps.
type Options struct {
	// DestutterMaxConsecutive caps runs of one code point; 0 disables.
	DestutterMaxConsecutive int
	// ReplaceHTMLEntities decodes &amp; &lt; &gt; &quot; and numeric entities.
	ReplaceHTMLEntities bool
}

// DefaultOptions returns the options used when a caller sets none.
func DefaultOptions() Options {
	return Options{
		DestutterMaxConsecutive: 3,
		ReplaceHTMLEntities:     true,
	}
}

// Buffer is the text being cleaned plus its provenance.
//
// Clean2Original[i] is the index in the original text of the code point that
// produced Text[i]. Every step keeps the two slices the same length.
type Buffer struct {
	Text           ustring.String
	Clean2Original []uint16
	Chr2Drop       map[rune]int
}

// NewBuffer starts a buffer over a copy of original.
func NewBuffer(original ustring.String) (*Buffer, error) {
	if len(original) > ustring.MaxLen {
		return nil, fmt.Errorf("%w: %d code points, max %d", diag.ErrInputTooLong, len(original), ustring.MaxLen)
	}

	c2o := make([]uint16, len(original))
	for i := range c2o {
		c2o[i] = uint16(i)
	}

	return &Buffer{
		Text:           original.Clone(),
		Clean2Original: c2o,
		Chr2Drop:       make(map[rune]int),
	}, nil
}

// Step rewrites a buffer in place.
type Step interface {
	Name() string
	Apply(b *Buffer)
}

// Pipeline runs its steps in order.
type Pipeline struct {
	steps []Step
}

// New builds the pipeline for opts: entity decoding (if enabled), case
// folding, then destuttering (if enabled).
func New(opts Options) *Pipeline {
	var steps []Step
	if opts.ReplaceHTMLEntities {
		steps = append(steps, EntityStep{})
	}
	steps = append(steps, FoldStep{})
	if opts.DestutterMaxConsecutive > 0 {
		steps = append(steps, DestutterStep{Max: opts.DestutterMaxConsecutive})
	}
	return &Pipeline{steps: steps}
}

// NewWithSteps builds a pipeline from explicit steps.
func NewWithSteps(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the step names in run order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run cleans original.
func (p *Pipeline) Run(original ustring.String) (*Buffer, error) {
	b, err := NewBuffer(original)
	if err != nil {
		return nil, err
	}
	for _, s := range p.steps {
		s.Apply(b)
	}
	if len(b.Text) != len(b.Clean2Original) {
		return nil, fmt.Errorf("%w: provenance length %d != text length %d", diag.ErrInternal, len(b.Clean2Original), len(b.Text))
	}
	return b, nil
}
