package starlark

import (
	"fmt"
	"sort"

	"github.com/neurodesk/liquid/pkg/liquid"
	"go.starlark.net/starlark"
)

// ToStarlark converts a template value to a Starlark value. Drops are wrapped
// so scripts can read their members as attributes.
func ToStarlark(val any) starlark.Value {
	switch v := val.(type) {
	case nil:
		return starlark.None
	case starlark.Value:
		return v
	case Value:
		return v.V
	case string:
		return starlark.String(v)
	case bool:
		return starlark.Bool(v)
	case int:
		return starlark.MakeInt(v)
	case int64:
		return starlark.MakeInt64(v)
	case int32:
		return starlark.MakeInt64(int64(v))
	case uint:
		return starlark.MakeUint(v)
	case uint64:
		return starlark.MakeUint64(v)
	case float64:
		return starlark.Float(v)
	case float32:
		return starlark.Float(float64(v))
	case []any:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = ToStarlark(item)
		}
		return starlark.NewList(items)
	case []string:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = starlark.String(item)
		}
		return starlark.NewList(items)
	case map[string]any:
		dict := starlark.NewDict(len(v))
		for _, key := range sortedKeys(v) {
			_ = dict.SetKey(starlark.String(key), ToStarlark(v[key]))
		}
		return dict
	case liquid.Range:
		return ToStarlark(v.Items())
	case liquid.Liquidizer:
		return ToStarlark(v.ToLiquid())
	case liquid.Drop:
		return &dropValue{drop: v}
	case liquid.Enumerable:
		return ToStarlark(v.Items())
	}
	// Anything else is seen by scripts the way a template would print it.
	return starlark.String(liquid.ToString(val))
}

// FromStarlark converts a Starlark value back to a template value.
func FromStarlark(val starlark.Value) any {
	if val == nil || val == starlark.None {
		return nil
	}

	switch v := val.(type) {
	case starlark.String:
		return string(v)
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return int(i)
		}
		return v.String()
	case starlark.Float:
		return float64(v)
	case starlark.Bool:
		return bool(v)
	case *starlark.List:
		items := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = FromStarlark(v.Index(i))
		}
		return items
	case starlark.Tuple:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = FromStarlark(item)
		}
		return items
	case *starlark.Dict:
		dict := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			key := item[0]
			if keyStr, ok := key.(starlark.String); ok {
				dict[string(keyStr)] = FromStarlark(item[1])
			} else {
				dict[key.String()] = FromStarlark(item[1])
			}
		}
		return dict
	case *dropValue:
		return v.drop
	default:
		return Value{V: val}
	}
}

// Value exposes a Starlark value that has no plain Go counterpart (a struct,
// a set, a function) to templates as a drop.
type Value struct {
	V starlark.Value
}

// Resolve looks name up as a mapping key first, then as an attribute.
func (w Value) Resolve(name string) (any, bool) {
	if m, ok := w.V.(starlark.Mapping); ok {
		if v, found, err := m.Get(starlark.String(name)); err == nil && found {
			return FromStarlark(v), true
		}
	}
	if h, ok := w.V.(starlark.HasAttrs); ok {
		if v, err := h.Attr(name); err == nil && v != nil {
			return FromStarlark(v), true
		}
	}
	return nil, false
}

// Items lets for loops walk iterable Starlark values.
func (w Value) Items() []any {
	iterable, ok := w.V.(starlark.Iterable)
	if !ok {
		return []any{w}
	}
	it := iterable.Iterate()
	defer it.Done()
	var items []any
	var x starlark.Value
	for it.Next(&x) {
		items = append(items, FromStarlark(x))
	}
	return items
}

func (w Value) String() string {
	if s, ok := w.V.(starlark.String); ok {
		return string(s)
	}
	return w.V.String()
}

var (
	_ liquid.Drop       = Value{}
	_ liquid.Enumerable = Value{}
)

// dropValue lets scripts read drop members with attribute syntax.
type dropValue struct {
	drop liquid.Drop
}

var _ starlark.HasAttrs = (*dropValue)(nil)

func (d *dropValue) String() string        { return fmt.Sprintf("<drop %T>", d.drop) }
func (d *dropValue) Type() string          { return "drop" }
func (d *dropValue) Freeze()               {}
func (d *dropValue) Truth() starlark.Bool  { return starlark.True }
func (d *dropValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: drop") }
func (d *dropValue) AttrNames() []string   { return nil }

func (d *dropValue) Attr(name string) (starlark.Value, error) {
	v, ok := d.drop.Resolve(name)
	if !ok {
		// None, not an error, so missing members behave as in templates.
		return starlark.None, nil
	}
	return ToStarlark(v), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
