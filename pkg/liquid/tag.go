package liquid

// Tag is a parsed {% %} tag.
type Tag interface {
	Node
	Name() string
	Markup() string
	Line() int
}

// Block is a tag that owns nested bodies closed by an end tag.
type Block interface {
	Tag
	Bodies() []*BlockBody
}

// Disableable tags render an error instead of output while their name is
// disabled in the context.
type Disableable interface {
	Tag
	Disableable() bool
}

// Disabler tags disable other tags while they render.
type Disabler interface {
	Tag
	DisabledTags() []string
}

// TagFactory parses a tag. Block factories consume their bodies from tokens.
type TagFactory func(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error)

// TagBase holds what every tag records at parse time. Embed it to implement
// Tag.
type TagBase struct {
	name   string
	markup string
	line   int
}

// NewTagBase records name, markup and the current line.
func NewTagBase(name, markup string, pc *ParseContext) TagBase {
	return TagBase{name: name, markup: markup, line: pc.Line()}
}

func (t *TagBase) Name() string   { return t.name }
func (t *TagBase) Markup() string { return t.markup }
func (t *TagBase) Line() int      { return t.line }
func (t *TagBase) Blank() bool    { return false }

// BlockBase is embedded by block tags.
type BlockBase struct {
	TagBase
	bodies []*BlockBody
}

// NewBlockBase records the opening tag.
func NewBlockBase(name, markup string, pc *ParseContext) BlockBase {
	return BlockBase{TagBase: NewTagBase(name, markup, pc)}
}

func (b *BlockBase) Bodies() []*BlockBody { return b.bodies }

// Blank reports whether all bodies are blank.
func (b *BlockBase) Blank() bool {
	for _, body := range b.bodies {
		if !body.Blank() {
			return false
		}
	}
	return true
}

// EndName is the tag that closes the block.
func (b *BlockBase) EndName() string { return "end" + b.name }

// ParseBody parses the next body of the block. It returns the delimiter tag
// that ended the body, or done when the end tag was reached. Reaching the end
// of input first is a syntax error.
func (b *BlockBase) ParseBody(tokens *Tokenizer, pc *ParseContext) (body *BlockBody, delim, markup string, done bool, err error) {
	body = NewBlockBody()
	err = pc.nested(func() error {
		var perr error
		delim, markup, perr = body.Parse(tokens, pc)
		return perr
	})
	if err != nil {
		return nil, "", "", false, err
	}
	b.bodies = append(b.bodies, body)
	switch delim {
	case "":
		e := pc.SyntaxError("errors.syntax.tag_never_closed", "block_name", b.name)
		e.Line = b.line
		return nil, "", "", false, e
	case b.EndName():
		return body, "", "", true, nil
	}
	return body, delim, markup, false, nil
}

// ParseSingleBody parses a block that accepts no delimiters.
func (b *BlockBase) ParseSingleBody(tokens *Tokenizer, pc *ParseContext) (*BlockBody, error) {
	body, delim, _, done, err := b.ParseBody(tokens, pc)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, b.UnknownTag(delim, pc)
	}
	return body, nil
}

// UnknownTag is the error for a delimiter the block does not accept.
func (b *BlockBase) UnknownTag(tag string, pc *ParseContext) error {
	switch {
	case tag == "else":
		return pc.SyntaxError("errors.syntax.unexpected_else", "block_name", b.name)
	case len(tag) > 3 && tag[:3] == "end":
		return pc.SyntaxError("errors.syntax.invalid_delimiter",
			"tag", tag, "block_name", b.name, "block_delimiter", b.EndName())
	}
	return pc.SyntaxError("errors.syntax.unknown_tag", "tag", tag)
}

// TagRegistry maps tag names to factories.
type TagRegistry map[string]TagFactory

// StandardTags returns the built-in tag set.
func StandardTags() TagRegistry {
	return TagRegistry{
		"assign":    parseAssign,
		"capture":   parseCapture,
		"increment": parseIncrement,
		"decrement": parseIncrement,
		"echo":      parseEcho,
		"cycle":     parseCycle,
		"if":        parseIf,
		"unless":    parseIf,
		"case":      parseCase,
		"ifchanged": parseIfChanged,
		"for":       parseFor,
		"break":     parseInterrupt,
		"continue":  parseInterrupt,
		"tablerow":  parseTableRow,
		"include":   parseInclude,
		"render":    parseRender,
		"raw":       parseRaw,
		"comment":   parseComment,
		"#":         parseInlineComment,
		"liquid":    parseLiquid,
	}
}
