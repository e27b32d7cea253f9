// Package infer is the inference driver: it packages a problem, observed
// data, and priors into a posterior density and dispatches to one of several
// interchangeable sampling backends.
package infer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kmadler/bayesode/internal/chain"
	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/prior"
	"github.com/kmadler/bayesode/internal/sim"
)

// Driver validates inputs once and dispatches to its configured backend.
// It performs no inference itself.
type Driver struct {
	backend Backend
	opts    Options
}

func NewDriver(backend Backend, opts Options) *Driver {
	if opts.Samples <= 0 {
		opts.Samples = DefaultOptions().Samples
	}
	if opts.StepSize <= 0 {
		opts.StepSize = DefaultOptions().StepSize
	}
	if opts.Leapfrog <= 0 {
		opts.Leapfrog = DefaultOptions().Leapfrog
	}
	if opts.Solver == (sim.Options{}) {
		opts.Solver = sim.DefaultOptions()
	}
	return &Driver{backend: backend, opts: opts}
}

// Run estimates the problem's parameters from the observations and returns
// the posterior chain. The prior count is validated before the backend is
// invoked; backend errors come back wrapped with the backend's identity and
// are never masked by a fallback.
func (d *Driver) Run(ctx context.Context, prob *dyn.Problem, obs *sim.Observations, priors prior.Set) (*chain.Chain, error) {
	if err := priors.Validate(prob.ParamDim()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(obs.Times) == 0 {
		return nil, fmt.Errorf("no observations")
	}

	target := NewTarget(ctx, prob, obs, priors, d.opts.Solver)
	if lp := target.LogDensity(target.Init); math.IsInf(lp, -1) || math.IsNaN(lp) {
		return nil, &BackendError{
			Backend: d.backend.Name(),
			Wrapped: fmt.Errorf("initial point %v has zero posterior density", target.Init),
		}
	}

	req := Request{Target: target, Problem: prob, Obs: obs}

	start := time.Now()
	ch, err := d.backend.Sample(ctx, req, d.opts)
	if err != nil {
		if _, ok := err.(*BackendError); ok {
			return nil, err
		}
		return nil, &BackendError{Backend: d.backend.Name(), Wrapped: err}
	}

	ch.Backend = d.backend.Name()
	ch.Elapsed = time.Since(start)
	if len(ch.Names) == 0 {
		ch.Names = target.Names
	}
	return ch, nil
}
