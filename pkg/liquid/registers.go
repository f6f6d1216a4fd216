package liquid

// Well-known register keys.
const (
	RegisterFileSystem     = "file_system"
	RegisterResourceLimits = "resource_limits"
	RegisterCachedPartials = "cached_partials"

	registerCycle     = "cycle"
	registerFor       = "for"
	registerForStack  = "for_stack"
	registerIfChanged = "ifchanged"
)

// Registers is the side channel between tags and the host. Values passed in
// by the host are never modified; writes go to a change layer. Child layers
// created for isolated subcontexts read through to their parent.
type Registers struct {
	static  map[string]any
	changes map[string]any
	parent  *Registers
}

// NewRegisters wraps host-supplied register values.
func NewRegisters(static map[string]any) *Registers {
	if static == nil {
		static = map[string]any{}
	}
	return &Registers{static: static, changes: map[string]any{}}
}

func (r *Registers) child() *Registers {
	return &Registers{static: map[string]any{}, changes: map[string]any{}, parent: r}
}

// Get looks key up in this layer, then the host values, then the parent.
func (r *Registers) Get(key string) (any, bool) {
	if v, ok := r.changes[key]; ok {
		return v, true
	}
	if v, ok := r.static[key]; ok {
		return v, true
	}
	if r.parent != nil {
		return r.parent.Get(key)
	}
	return nil, false
}

// Set writes to this layer.
func (r *Registers) Set(key string, v any) { r.changes[key] = v }

// Delete removes a change made in this layer.
func (r *Registers) Delete(key string) { delete(r.changes, key) }

// state returns the map stored under key, creating it in the outermost layer
// so it is shared with every subcontext of the render.
func (r *Registers) state(key string) map[string]any {
	if v, ok := r.Get(key); ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	root := r
	for root.parent != nil {
		root = root.parent
	}
	m := map[string]any{}
	root.Set(key, m)
	return m
}
