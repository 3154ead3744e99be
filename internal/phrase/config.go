// Package phrase parses phrase configurations and compiles them into
// detectors over token streams.
//
// A configuration declares the phrase and its pieces on the first line,
// followed by one dash-delimited block per piece:
//
//	plaudit = verb filler{1,2} object
//	----------
//	thanks
//	----------
//	@any
//	----------
//	obama
//	hitler
//
// A block may start with an @type line carrying dim=value filters; blocks
// without one are literal word lists.
package phrase

import (
	"fmt"
	"strings"

	"harshagw/phraser/internal/categorize"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/sequence"
)

// minDividerLen is the shortest run of dashes accepted as a block divider.
const minDividerLen = 5

// Config is a parsed, not yet compiled, phrase configuration.
type Config struct {
	Name   string
	Pieces []sequence.Piece
	Exprs  []categorize.Expression // one per piece
}

// Pattern returns the detector pattern of the configuration.
func (c *Config) Pattern() sequence.Pattern {
	return sequence.Pattern{Name: c.Name, Pieces: c.Pieces}
}

// String renders the configuration back into its text form.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString(c.Pattern().String())
	sb.WriteByte('\n')
	for _, e := range c.Exprs {
		sb.WriteString(strings.Repeat("-", 10))
		sb.WriteByte('\n')
		if e.Type != categorize.TypeLiteral || len(e.Filters) > 0 {
			sb.WriteString("@" + e.Type)
			for _, d := range e.FilterDims() {
				sb.WriteString(" " + d + "=" + e.Filters[d])
			}
			sb.WriteByte('\n')
		}
		for _, a := range e.Args {
			sb.WriteString(a)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseConfig parses the text form of one phrase.
func ParseConfig(text string) (*Config, error) {
	p := newParser(text)
	cfg, err := p.parse()
	if err != nil {
		if cfg != nil && cfg.Name != "" {
			return nil, fmt.Errorf("%w: phrase %s: %v", diag.ErrBadConfig, cfg.Name, err)
		}
		return nil, fmt.Errorf("%w: %v", diag.ErrBadConfig, err)
	}
	return cfg, nil
}

type parser struct {
	lines []string
	pos   int
}

func newParser(text string) *parser {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &parser{lines: strings.Split(text, "\n")}
}

func (p *parser) done() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) current() string {
	return strings.TrimSpace(p.lines[p.pos])
}

// skipBlank advances past blank lines.
func (p *parser) skipBlank() {
	for !p.done() && p.current() == "" {
		p.pos++
	}
}

func isDivider(line string) bool {
	return len(line) >= minDividerLen && strings.Trim(line, "-") == ""
}

func (p *parser) parse() (*Config, error) {
	p.skipBlank()
	if p.done() {
		return nil, fmt.Errorf("empty phrase configuration")
	}

	cfg := &Config{}
	if err := p.parseHeader(cfg); err != nil {
		return cfg, err
	}

	for {
		p.skipBlank()
		if p.done() {
			break
		}
		if !isDivider(p.current()) {
			return cfg, fmt.Errorf("line %d: expected divider, got %q", p.pos+1, p.current())
		}
		p.pos++
		idx := len(cfg.Exprs)
		if idx >= len(cfg.Pieces) {
			return cfg, fmt.Errorf("line %d: more blocks than the %d pieces declared", p.pos, len(cfg.Pieces))
		}
		expr, err := p.parseBlock()
		if err != nil {
			return cfg, fmt.Errorf("piece %s: %v", cfg.Pieces[idx].Name, err)
		}
		cfg.Exprs = append(cfg.Exprs, expr)
	}

	if len(cfg.Exprs) != len(cfg.Pieces) {
		return cfg, fmt.Errorf("declares %d pieces but configures %d", len(cfg.Pieces), len(cfg.Exprs))
	}
	return cfg, nil
}

// parseHeader parses "name = piece piece{n} piece{min,max}".
func (p *parser) parseHeader(cfg *Config) error {
	line := p.current()
	p.pos++

	name, rest, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("line %d: missing '=' in phrase header %q", p.pos, line)
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsFunc(name, isReserved) {
		return fmt.Errorf("line %d: invalid phrase name %q", p.pos, name)
	}
	cfg.Name = name

	specs := strings.Fields(rest)
	if len(specs) == 0 {
		return fmt.Errorf("no pieces declared")
	}
	// Piece names are labels and may repeat, as in "p = A A".
	for _, spec := range specs {
		piece, err := ParsePiece(spec)
		if err != nil {
			return err
		}
		cfg.Pieces = append(cfg.Pieces, piece)
	}
	return nil
}

// parseBlock reads the lines up to the next divider.
func (p *parser) parseBlock() (categorize.Expression, error) {
	expr := categorize.Expression{Type: categorize.TypeLiteral}
	first := true
	for ; !p.done(); p.pos++ {
		line := p.current()
		if isDivider(line) {
			break
		}
		if line == "" {
			continue
		}
		if first && strings.HasPrefix(line, "@") {
			if err := parseTypeLine(line, &expr); err != nil {
				return expr, fmt.Errorf("line %d: %v", p.pos+1, err)
			}
			first = false
			continue
		}
		first = false
		expr.Args = append(expr.Args, line)
	}
	return expr, nil
}

// parseTypeLine parses "@type dim=value ...".
func parseTypeLine(line string, expr *categorize.Expression) error {
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return fmt.Errorf("missing categorizer type after '@'")
	}
	expr.Type = fields[0]
	for _, f := range fields[1:] {
		dim, value, ok := strings.Cut(f, "=")
		if !ok || dim == "" || value == "" {
			return fmt.Errorf("malformed filter %q, want dim=value", f)
		}
		if expr.Filters == nil {
			expr.Filters = make(map[string]string)
		}
		if _, dup := expr.Filters[dim]; dup {
			return fmt.Errorf("duplicate filter dimension %q", dim)
		}
		expr.Filters[dim] = value
	}
	return nil
}

// ParsePiece parses one piece spec: name, name{n} or name{min,max}.
func ParsePiece(spec string) (sequence.Piece, error) {
	open := strings.IndexByte(spec, '{')
	if open < 0 {
		if strings.ContainsFunc(spec, isReserved) || spec == "" {
			return sequence.Piece{}, fmt.Errorf("invalid piece %q", spec)
		}
		return sequence.NewPiece(spec), nil
	}
	name := spec[:open]
	if name == "" || strings.ContainsFunc(name, isReserved) || !strings.HasSuffix(spec, "}") {
		return sequence.Piece{}, fmt.Errorf("invalid piece %q", spec)
	}
	bounds := spec[open+1 : len(spec)-1]

	lo, hi, ranged := strings.Cut(bounds, ",")
	minLen, err := parseBound(lo)
	if err != nil {
		return sequence.Piece{}, fmt.Errorf("piece %q: %v", spec, err)
	}
	maxLen := minLen
	if ranged {
		if maxLen, err = parseBound(hi); err != nil {
			return sequence.Piece{}, fmt.Errorf("piece %q: %v", spec, err)
		}
	}
	if minLen < 1 || maxLen < minLen {
		return sequence.Piece{}, fmt.Errorf("piece %q: want 1 <= min <= max", spec)
	}
	return sequence.Piece{Name: name, Min: minLen, Max: maxLen}, nil
}

func parseBound(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty bound")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("bad bound %q", s)
		}
		n = n*10 + int(c-'0')
		if n > 1<<16 {
			return 0, fmt.Errorf("bound %q too large", s)
		}
	}
	return n, nil
}

func isReserved(r rune) bool {
	return r == ' ' || r == '\t' || r == '{' || r == '}' || r == '='
}
