package liquid

import (
	"bytes"
	"regexp"
	"strings"
)

// rawTag outputs its body without interpreting markup.
type rawTag struct {
	BlockBase
	text string
}

func parseRaw(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	if pc.strict() && markup != "" {
		return nil, pc.SyntaxError("errors.syntax.tag_unexpected_args", "tag", name)
	}
	t := &rawTag{BlockBase: NewBlockBase(name, markup, pc)}
	var b strings.Builder
	for {
		seg, ok := tokens.Next()
		if !ok {
			e := pc.SyntaxError("errors.syntax.tag_never_closed", "block_name", name)
			e.Line = t.line
			return nil, e
		}
		if seg.Kind == SegmentTag {
			if tag, _ := seg.TagName(); tag == "end"+name {
				pc.line = seg.Line
				pc.trimWhitespace = seg.TrimRight
				t.text = b.String()
				return t, nil
			}
		}
		b.WriteString(seg.Source)
	}
}

func (t *rawTag) Render(_ *Context, out *bytes.Buffer) error {
	out.WriteString(t.text)
	return nil
}

func (t *rawTag) Blank() bool { return t.text == "" }

// commentTag discards its body. Nested comments must balance; raw blocks
// inside are skipped without looking for comment tags.
type commentTag struct {
	TagBase
}

func parseComment(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	t := &commentTag{TagBase: NewTagBase(name, markup, pc)}
	depth := 0
	inRaw := false
	for {
		seg, ok := tokens.Next()
		if !ok {
			e := pc.SyntaxError("errors.syntax.tag_never_closed", "block_name", name)
			e.Line = t.line
			return nil, e
		}
		if seg.Kind != SegmentTag {
			continue
		}
		tag, _ := seg.TagName()
		switch {
		case inRaw:
			inRaw = tag != "endraw"
		case tag == "raw":
			inRaw = true
		case tag == "comment":
			depth++
		case tag == "endcomment":
			if depth == 0 {
				pc.line = seg.Line
				pc.trimWhitespace = seg.TrimRight
				return t, nil
			}
			depth--
		}
	}
}

func (t *commentTag) Render(*Context, *bytes.Buffer) error { return nil }

func (t *commentTag) Blank() bool { return true }

var inlineCommentLineRe = regexp.MustCompile(`\n\s*[^#\s]`)

// parseInlineComment handles {% # text %}. Every further line must start
// with # as well.
func parseInlineComment(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	if inlineCommentLineRe.MatchString(markup) {
		return nil, pc.SyntaxError("errors.syntax.inline_comment_invalid")
	}
	return &commentTag{TagBase: NewTagBase(name, markup, pc)}, nil
}

// liquidTag holds one tag per line without delimiters:
//
//	{% liquid
//	  assign x = 1
//	  echo x
//	%}
type liquidTag struct {
	BlockBase
	body *BlockBody
}

func parseLiquid(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	t := &liquidTag{BlockBase: NewBlockBase(name, markup, pc)}
	lines := newLineTokenizer(markup, pc.line)
	trim, line := pc.trimWhitespace, pc.line
	defer func() { pc.trimWhitespace, pc.line = trim, line }()

	body := NewBlockBody()
	err := pc.nested(func() error {
		delim, _, err := body.Parse(lines, pc)
		if err != nil {
			return err
		}
		if delim != "" {
			return pc.SyntaxError("errors.syntax.unknown_tag", "tag", delim)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.body = body
	t.bodies = []*BlockBody{body}
	return t, nil
}

func (t *liquidTag) Render(ctx *Context, out *bytes.Buffer) error {
	return t.body.Render(ctx, out)
}
