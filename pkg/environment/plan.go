package environment

import (
	"github.com/zorro/takopi-docker/pkg/plan"
)

// Apply feeds the contributions of a single step into c.
func (c *Composer) Apply(e plan.Entry) {
	for _, v := range e.Step.Env {
		c.AddVar(v.Name, v.Value)
	}
	c.AddPath(e.Step.Path...)
}

// FromPlan composes the environment of every step the plan runs, in order.
func FromPlan(p *plan.Plan, seeds map[string]string, basePath string) Descriptor {
	c := NewComposer(seeds)
	for _, e := range p.Runnable() {
		c.Apply(e)
	}
	return c.Compose(basePath)
}
