package liquid

import "strings"

// The tokenizer splits template source into literal text and the two markup
// forms: outputs {{ }} and tags {% %}. Expression markup is lexed separately
// by Lex.

// SegmentKind classifies a template token.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentOutput
	SegmentTag
)

// Segment is one template token.
type Segment struct {
	Kind      SegmentKind
	Source    string // raw text including delimiters
	Markup    string // inner markup without delimiters and trim markers
	Line      int
	TrimLeft  bool // {{- or {%-
	TrimRight bool // -}} or -%}
}

// TagName splits a tag segment's markup into the tag name and the rest.
// Inline comments are named "#".
func (s Segment) TagName() (name, markup string) {
	m := strings.TrimLeft(s.Markup, " \t\r\n\f\v")
	if strings.HasPrefix(m, "#") {
		return "#", m[1:]
	}
	i := 0
	for i < len(m) && isWordChar(m[i]) {
		i++
	}
	return m[:i], strings.TrimSpace(m[i:])
}

// Tokenizer yields the segments of a template in order.
type Tokenizer struct {
	segments []Segment
	pos      int
	lineMode bool
}

// NewTokenizer scans src. An unterminated {{ or {% is a syntax error.
func NewTokenizer(src string, pc *ParseContext) (*Tokenizer, error) {
	s := &scanner{src: src, n: len(src), line: 1}
	if pc != nil && pc.line > 1 {
		s.line = pc.line
	}
	var segs []Segment
	for {
		seg, ok, err := s.next(pc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Tokenizer{segments: segs}, nil
		}
		segs = append(segs, seg)
	}
}

// newLineTokenizer turns the body of a {% liquid %} tag into one tag segment
// per non-empty line.
func newLineTokenizer(markup string, line int) *Tokenizer {
	t := &Tokenizer{lineMode: true}
	for i, raw := range strings.Split(markup, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		t.segments = append(t.segments, Segment{
			Kind:   SegmentTag,
			Source: raw,
			Markup: text,
			Line:   line + i,
		})
	}
	return t
}

// Next returns the next segment, or false at the end of input.
func (t *Tokenizer) Next() (Segment, bool) {
	if t.pos >= len(t.segments) {
		return Segment{}, false
	}
	seg := t.segments[t.pos]
	t.pos++
	return seg, true
}

// LineMode reports whether the tokenizer reads {% liquid %} lines, where
// each line is a tag and raw text does not occur.
func (t *Tokenizer) LineMode() bool { return t.lineMode }

type scanner struct {
	src  string
	i    int
	n    int
	line int
}

func (s *scanner) next(pc *ParseContext) (Segment, bool, error) {
	if s.i >= s.n {
		return Segment{}, false, nil
	}
	start := s.i
	open := strings.Index(s.src[s.i:], "{")
	for open >= 0 {
		at := s.i + open
		if at+1 < s.n && (s.src[at+1] == '{' || s.src[at+1] == '%') {
			break
		}
		next := strings.Index(s.src[at+1:], "{")
		if next < 0 {
			open = -1
			break
		}
		open = at + 1 + next - s.i
	}
	if open < 0 {
		s.i = s.n
		return s.text(start), true, nil
	}
	if open > 0 {
		s.i += open
		return s.text(start), true, nil
	}
	return s.markup(pc)
}

func (s *scanner) text(start int) Segment {
	seg := Segment{Kind: SegmentText, Source: s.src[start:s.i], Markup: s.src[start:s.i], Line: s.line}
	s.line += strings.Count(seg.Source, "\n")
	return seg
}

func (s *scanner) markup(pc *ParseContext) (Segment, bool, error) {
	start := s.i
	kind, closer := SegmentOutput, "}}"
	if s.src[s.i+1] == '%' {
		kind, closer = SegmentTag, "%}"
	}
	end := s.findClose(start+2, closer, true)
	if end < 0 {
		end = s.findClose(start+2, closer, false)
	}
	if end < 0 {
		return Segment{}, false, s.unterminated(kind, pc)
	}
	s.i = end + len(closer)
	seg := Segment{Kind: kind, Source: s.src[start:s.i], Line: s.line}
	inner := s.src[start+2 : end]
	if strings.HasPrefix(inner, "-") {
		seg.TrimLeft = true
		inner = inner[1:]
	}
	if strings.HasSuffix(inner, "-") {
		seg.TrimRight = true
		inner = inner[:len(inner)-1]
	}
	seg.Markup = strings.TrimSpace(inner)
	s.line += strings.Count(seg.Source, "\n")
	return seg, true, nil
}

// findClose locates closer starting at from. With skipQuotes set, closers
// inside quoted strings are ignored; an unbalanced quote yields -1.
func (s *scanner) findClose(from int, closer string, skipQuotes bool) int {
	var quote byte
	for i := from; i+1 < s.n; i++ {
		c := s.src[i]
		if skipQuotes {
			if quote != 0 {
				if c == quote {
					quote = 0
				}
				continue
			}
			if c == '"' || c == '\'' {
				quote = c
				continue
			}
		}
		if c == closer[0] && s.src[i+1] == closer[1] {
			return i
		}
	}
	return -1
}

func (s *scanner) unterminated(kind SegmentKind, pc *ParseContext) error {
	token := s.src[s.i:]
	if nl := strings.IndexByte(token, '\n'); nl >= 0 {
		token = token[:nl]
	}
	key, tagEnd := "errors.syntax.variable_termination", "}}"
	if kind == SegmentTag {
		key, tagEnd = "errors.syntax.tag_termination", "%}"
	}
	loc := defaultLocale
	name := ""
	if pc != nil {
		loc = pc.env.Locale
		name = pc.templateName
	}
	e := SyntaxError("%s", loc.T(key, "token", token, "tag_end", tagEnd))
	e.Line = s.line
	e.TemplateName = name
	return e
}
