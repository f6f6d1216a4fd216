package liquid

import "math"

// Limits configures the render budget. Zero means unlimited.
type Limits struct {
	RenderScore    int `yaml:"render_score"`
	AssignScore    int `yaml:"assign_score"`
	LoopIterations int `yaml:"loop_iterations"`
}

// ResourceLimits tracks one render's consumption against Limits. Counters
// only grow; once a limit is exceeded every later increment fails too.
type ResourceLimits struct {
	limits         Limits
	renderScore    int
	assignScore    int
	loopIterations int
	reached        bool
}

// NewResourceLimits returns a tracker with zeroed counters.
func NewResourceLimits(l Limits) *ResourceLimits {
	return &ResourceLimits{limits: l}
}

// Limits returns the configured maxima.
func (r *ResourceLimits) Limits() Limits { return r.limits }

func (r *ResourceLimits) RenderScore() int    { return r.renderScore }
func (r *ResourceLimits) AssignScore() int    { return r.assignScore }
func (r *ResourceLimits) LoopIterations() int { return r.loopIterations }

// Reached reports whether a limit has been exceeded.
func (r *ResourceLimits) Reached() bool { return r.reached }

// Reset clears the counters for a new render.
func (r *ResourceLimits) Reset() {
	r.renderScore, r.assignScore, r.loopIterations = 0, 0, 0
	r.reached = false
}

func (r *ResourceLimits) IncrementRenderScore(n int) error {
	return r.increment(&r.renderScore, r.limits.RenderScore, n)
}

func (r *ResourceLimits) IncrementAssignScore(n int) error {
	return r.increment(&r.assignScore, r.limits.AssignScore, n)
}

func (r *ResourceLimits) IncrementLoopIterations(n int) error {
	return r.increment(&r.loopIterations, r.limits.LoopIterations, n)
}

// CheckSize fails when n more units would overrun any configured budget.
// Counters are left alone; it guards work whose cost is known up front,
// such as expanding a range.
func (r *ResourceLimits) CheckSize(n int) error {
	if r.reached {
		return r.exceeded()
	}
	for _, c := range [...]struct{ used, limit int }{
		{r.renderScore, r.limits.RenderScore},
		{r.assignScore, r.limits.AssignScore},
		{r.loopIterations, r.limits.LoopIterations},
	} {
		if c.limit > 0 && n > c.limit-c.used {
			r.reached = true
			return r.exceeded()
		}
	}
	return nil
}

func (r *ResourceLimits) increment(counter *int, limit, n int) error {
	if r.reached {
		return r.exceeded()
	}
	if n > math.MaxInt-*counter {
		*counter = math.MaxInt
	} else {
		*counter += n
	}
	if limit > 0 && *counter > limit {
		r.reached = true
		return r.exceeded()
	}
	return nil
}

// exceeded uses the default catalog; Context.limitError localises it.
func (r *ResourceLimits) exceeded() error {
	return newError(ErrResourceLimit, "%s", defaultLocale.T("errors.runtime.memory"))
}
