package liquid

import "bytes"

// Document is the root of a parsed template.
type Document struct {
	body *BlockBody
}

// ParseDocument parses every segment of tokens. A delimiter tag outside any
// block is a syntax error.
func ParseDocument(tokens *Tokenizer, pc *ParseContext) (*Document, error) {
	body := NewBlockBody()
	name, _, err := body.Parse(tokens, pc)
	if err != nil {
		return nil, err
	}
	switch {
	case name == "":
		return &Document{body: body}, nil
	case name == "else" || len(name) > 3 && name[:3] == "end":
		return nil, pc.SyntaxError("errors.syntax.unexpected_outer_tag", "tag", name)
	}
	return nil, pc.SyntaxError("errors.syntax.unknown_tag", "tag", name)
}

// Body returns the top-level nodes.
func (d *Document) Body() *BlockBody { return d.body }

func (d *Document) Render(ctx *Context, out *bytes.Buffer) error {
	return d.body.Render(ctx, out)
}

func (d *Document) Blank() bool { return d.body.Blank() }
