package liquid

// Drop exposes named members of a host value to templates. Only what Resolve
// returns is reachable.
type Drop interface {
	Resolve(name string) (any, bool)
}

// ContextAware values receive the active context before they are used.
type ContextAware interface {
	SetContext(ctx *Context)
}

// Enumerable values can be iterated by for and tablerow.
type Enumerable interface {
	Items() []any
}

// MapDrop exposes a fixed set of members.
type MapDrop map[string]any

func (m MapDrop) Resolve(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// ForloopDrop is the forloop variable inside a for tag.
type ForloopDrop struct {
	name       string
	length     int
	index      int // zero based
	parentloop *ForloopDrop
}

func newForloopDrop(name string, length int, parent *ForloopDrop) *ForloopDrop {
	return &ForloopDrop{name: name, length: length, parentloop: parent}
}

func (f *ForloopDrop) Resolve(member string) (any, bool) {
	switch member {
	case "name":
		return f.name, true
	case "length":
		return f.length, true
	case "index":
		return f.index + 1, true
	case "index0":
		return f.index, true
	case "rindex":
		return f.length - f.index, true
	case "rindex0":
		return f.length - f.index - 1, true
	case "first":
		return f.index == 0, true
	case "last":
		return f.index == f.length-1, true
	case "parentloop":
		if f.parentloop == nil {
			return nil, true
		}
		return f.parentloop, true
	}
	return nil, false
}

func (f *ForloopDrop) increment() { f.index++ }

// TablerowloopDrop is the tablerowloop variable inside a tablerow tag.
type TablerowloopDrop struct {
	length int
	cols   int
	index  int
	row    int
	col    int
}

func newTablerowloopDrop(length, cols int) *TablerowloopDrop {
	return &TablerowloopDrop{length: length, cols: cols, row: 1, col: 1}
}

func (t *TablerowloopDrop) Resolve(member string) (any, bool) {
	switch member {
	case "length":
		return t.length, true
	case "index":
		return t.index + 1, true
	case "index0":
		return t.index, true
	case "rindex":
		return t.length - t.index, true
	case "rindex0":
		return t.length - t.index - 1, true
	case "first":
		return t.index == 0, true
	case "last":
		return t.index == t.length-1, true
	case "col":
		return t.col, true
	case "col0":
		return t.col - 1, true
	case "col_first":
		return t.col == 1, true
	case "col_last":
		return t.col == t.cols, true
	case "row":
		return t.row, true
	}
	return nil, false
}

func (t *TablerowloopDrop) increment() {
	t.index++
	if t.col == t.cols {
		t.col = 1
		t.row++
		return
	}
	t.col++
}
