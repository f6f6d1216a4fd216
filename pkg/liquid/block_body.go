package liquid

import (
	"bytes"
	"strings"
)

const whitespace = " \t\n\r\f\v"

// BlockBody is an ordered list of nodes.
type BlockBody struct {
	nodes []Node
	blank bool
}

// NewBlockBody returns an empty body.
func NewBlockBody() *BlockBody { return &BlockBody{blank: true} }

// Nodes returns the parsed nodes.
func (b *BlockBody) Nodes() []Node { return b.nodes }

// Blank reports whether every node is blank.
func (b *BlockBody) Blank() bool { return b.blank }

func (b *BlockBody) add(n Node) {
	b.nodes = append(b.nodes, n)
	b.blank = b.blank && n.Blank()
}

// Parse consumes segments until the input ends or a tag without a registered
// factory appears. That tag's name and markup are returned so the enclosing
// block can treat it as a delimiter; both are empty at end of input.
func (b *BlockBody) Parse(tokens *Tokenizer, pc *ParseContext) (endName, endMarkup string, err error) {
	for {
		seg, ok := tokens.Next()
		if !ok {
			return "", "", nil
		}
		pc.line = seg.Line
		switch seg.Kind {
		case SegmentText:
			text := seg.Source
			if pc.trimWhitespace {
				text = strings.TrimLeft(text, whitespace)
			}
			pc.trimWhitespace = false
			if text != "" {
				b.add(&Text{Value: text})
			}
		case SegmentOutput:
			b.whitespaceHandler(seg, pc)
			v, err := NewVariable(seg.Markup, pc)
			if err != nil {
				return "", "", err
			}
			b.add(v)
		case SegmentTag:
			b.whitespaceHandler(seg, pc)
			name, markup := seg.TagName()
			if name == "" {
				if tokens.LineMode() {
					return "", "", pc.SyntaxError("errors.syntax.unknown_tag", "tag", seg.Markup)
				}
				return "", "", pc.SyntaxError("errors.syntax.tag_termination", "token", seg.Source, "tag_end", "%}")
			}
			factory, ok := pc.env.Tag(name)
			if !ok {
				return name, markup, nil
			}
			tag, err := factory(name, markup, tokens, pc)
			if err != nil {
				return "", "", withPosition(err, seg.Line, pc.templateName)
			}
			b.add(tag)
		}
	}
}

// whitespaceHandler applies {%- by trimming the preceding text node and
// remembers -%} for the next text segment.
func (b *BlockBody) whitespaceHandler(seg Segment, pc *ParseContext) {
	if seg.TrimLeft && len(b.nodes) > 0 {
		if t, ok := b.nodes[len(b.nodes)-1].(*Text); ok {
			t.Value = strings.TrimRight(t.Value, whitespace)
			if t.Value == "" {
				b.nodes = b.nodes[:len(b.nodes)-1]
			}
		}
	}
	pc.trimWhitespace = seg.TrimRight
}

// Render renders nodes in order. Recoverable node errors are rendered inline
// through the context; fatal ones abort. Rendering stops early once a break
// or continue is pending.
func (b *BlockBody) Render(ctx *Context, out *bytes.Buffer) error {
	for _, node := range b.nodes {
		before := out.Len()
		if err := renderNode(ctx, node, out); err != nil {
			return err
		}
		score := 1
		if _, isBlock := node.(Block); !isBlock {
			score = max(out.Len()-before, 1)
		}
		if err := ctx.resourceLimits.IncrementRenderScore(score); err != nil {
			return ctx.limitError(err)
		}
		if ctx.interrupt != InterruptNone {
			break
		}
	}
	return nil
}

func renderNode(ctx *Context, node Node, out *bytes.Buffer) error {
	tag, isTag := node.(Tag)
	if d, ok := node.(Disableable); ok && d.Disableable() && ctx.TagDisabled(d.Name()) {
		return ctx.HandleError(DisabledError(d.Name(), ctx.locale()), d.Line(), out)
	}
	var err error
	if d, ok := node.(Disabler); ok {
		err = ctx.WithDisabledTags(d.DisabledTags(), func() error {
			return node.Render(ctx, out)
		})
	} else {
		err = node.Render(ctx, out)
	}
	if err == nil {
		return nil
	}
	line := 0
	switch {
	case isTag:
		line = tag.Line()
	default:
		if v, ok := node.(*Variable); ok {
			line = v.Line()
		}
	}
	return ctx.HandleError(err, line, out)
}
