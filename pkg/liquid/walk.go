package liquid

import (
	"bytes"
	"fmt"
)

// Visitor is called for every node reached by Walk.
type Visitor interface {
	Visit(n Node) error
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(n Node) error

func (f VisitorFunc) Visit(n Node) error { return f(n) }

// Walk visits n and then, depth first, the nodes of every body it owns.
// Partials are not followed.
func Walk(v Visitor, n Node) error {
	if err := v.Visit(n); err != nil {
		return err
	}
	var bodies []*BlockBody
	switch t := n.(type) {
	case *Document:
		bodies = []*BlockBody{t.body}
	case Block:
		bodies = t.Bodies()
	}
	for _, b := range bodies {
		for _, c := range b.nodes {
			if err := Walk(v, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pretty returns a line-oriented outline of a parsed template.
func Pretty(t *Template) string {
	var buf bytes.Buffer
	ppNode(&buf, 0, t.root)
	return buf.String()
}

func ppNode(buf *bytes.Buffer, indent int, n Node) {
	ind := func() {
		for i := 0; i < indent; i++ {
			buf.WriteByte(' ')
		}
	}
	ind()
	switch t := n.(type) {
	case *Document:
		buf.WriteString("Document\n")
		ppBody(buf, indent+2, t.body)
		return
	case *Text:
		fmt.Fprintf(buf, "Text(%q)\n", t.Value)
		return
	case *Variable:
		fmt.Fprintf(buf, "Output(%s", exprString(t.Expr))
		for _, f := range t.Filters {
			fmt.Fprintf(buf, " | %s", f.Name)
		}
		fmt.Fprintf(buf, ") line %d\n", t.line)
		return
	case Tag:
		fmt.Fprintf(buf, "Tag(%s %q) line %d", t.Name(), t.Markup(), t.Line())
		if t.Blank() {
			buf.WriteString(" blank")
		}
		buf.WriteByte('\n')
	}
	if b, ok := n.(Block); ok {
		for i, body := range b.Bodies() {
			ind()
			fmt.Fprintf(buf, "  Body %d\n", i)
			ppBody(buf, indent+4, body)
		}
	}
}

func ppBody(buf *bytes.Buffer, indent int, b *BlockBody) {
	for _, c := range b.nodes {
		ppNode(buf, indent, c)
	}
}
