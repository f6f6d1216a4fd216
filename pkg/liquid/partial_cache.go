package liquid

// PartialCache memoises parsed partials for the lifetime of a register scope,
// which is one top-level render unless the host shares registers.
type PartialCache struct {
	entries map[string]*Template
}

// PartialCacheFor returns the cache stored in ctx's registers, creating it
// in the outermost register layer on first use.
func PartialCacheFor(ctx *Context) *PartialCache {
	if v, ok := ctx.registers.Get(RegisterCachedPartials); ok {
		if pc, ok := v.(*PartialCache); ok {
			return pc
		}
	}
	root := ctx.registers
	for root.parent != nil {
		root = root.parent
	}
	pc := &PartialCache{entries: map[string]*Template{}}
	root.Set(RegisterCachedPartials, pc)
	return pc
}

// Len returns the number of cached partials.
func (p *PartialCache) Len() int { return len(p.entries) }

// Get returns the parsed partial called name, reading and parsing it on the
// first request. Entries are keyed by name and error mode.
func (p *PartialCache) Get(name string, ctx *Context) (*Template, error) {
	key := name + ":" + ctx.errorMode.String()
	if t, ok := p.entries[key]; ok {
		return t, nil
	}
	src, err := ctx.fileSystem().ReadTemplate(name)
	if err != nil {
		return nil, fileSystemError(name, err, ctx.locale())
	}
	ctx.logger.Debug("partial loaded", "name", name, "bytes", len(src))
	mode := ctx.errorMode
	t, err := ctx.env.parse(src, &options{errorMode: &mode, templateName: name, partial: true})
	if err != nil {
		if le, ok := err.(*Error); ok && le.TemplateName == "" {
			le.TemplateName = name
		}
		return nil, err
	}
	p.entries[key] = t
	return t, nil
}

// fileSystem picks the file_system register, then the environment's.
func (c *Context) fileSystem() FileSystem {
	if v, ok := c.registers.Get(RegisterFileSystem); ok {
		if fs, ok := v.(FileSystem); ok {
			return fs
		}
	}
	if c.env.FileSystem != nil {
		return c.env.FileSystem
	}
	return BlankFileSystem{}
}
