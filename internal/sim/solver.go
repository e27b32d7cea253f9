package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/integrators"
)

// Options controls the forward solve.
type Options struct {
	Integrator string  // "rk45" (adaptive, default) or "rk4" (fixed step)
	Tolerance  float64 // local error tolerance for adaptive stepping
	InitDt     float64 // initial (or fixed) step size
	MinDt      float64 // adaptive step collapse threshold
	MaxSteps   int     // step budget
}

func DefaultOptions() Options {
	return Options{
		Integrator: "rk45",
		Tolerance:  1e-6,
		InitDt:     0.01,
		MinDt:      1e-10,
		MaxSteps:   1_000_000,
	}
}

// Solve integrates the problem over its time span and returns a dense
// trajectory. The call blocks until integration completes, fails, or ctx is
// canceled.
func Solve(ctx context.Context, prob *dyn.Problem, opts Options) (*Trajectory, error) {
	if opts.InitDt <= 0 {
		return nil, fmt.Errorf("step size must be positive, got %g", opts.InitDt)
	}
	if opts.MaxSteps <= 0 {
		return nil, fmt.Errorf("step budget must be positive, got %d", opts.MaxSteps)
	}

	integ, err := integrators.Get(opts.Integrator)
	if err != nil {
		return nil, err
	}
	adaptive, isAdaptive := integ.(dyn.AdaptiveIntegrator)
	if isAdaptive && opts.Tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive for adaptive stepping")
	}

	sys := prob.System
	p := prob.Params

	tr := &Trajectory{t0: prob.T0, t1: prob.T1}
	x := prob.X0.Clone()
	t := prob.T0
	dt := opts.InitDt

	record := func(t float64, x dyn.State) {
		tr.times = append(tr.times, t)
		tr.states = append(tr.states, x)
		tr.derivs = append(tr.derivs, sys.Derive(x, p, t))
	}
	record(t, x)

	for step := 0; t < prob.T1; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if step >= opts.MaxSteps {
			return nil, &dyn.SolveError{T: t, Step: step, Wrapped: dyn.ErrIntegrationFailure}
		}

		if t+dt > prob.T1 {
			dt = prob.T1 - t
		}

		var next dyn.State
		if isAdaptive {
			var errRatio, dtNext float64
			next, errRatio, dtNext = adaptive.StepAdaptive(sys, x, p, t, dt, opts.Tolerance)
			if errRatio > 1 {
				// Reject and retry with the shrunken step.
				if dtNext < opts.MinDt {
					return nil, &dyn.SolveError{T: t, Step: step,
						Wrapped: errors.Join(dyn.ErrIntegrationFailure, dyn.ErrStepTooSmall)}
				}
				dt = dtNext
				continue
			}
			t += dt
			dt = dtNext
		} else {
			next = integ.Step(sys, x, p, t, dt)
			t += dt
		}

		if !next.IsValid() {
			return nil, &dyn.SolveError{T: t, Step: step, Wrapped: dyn.ErrIntegrationFailure}
		}

		x = next
		record(t, x)
	}

	return tr, nil
}
