package sim

import (
	"fmt"
	"sort"

	"github.com/kmadler/bayesode/internal/dyn"
)

// Trajectory is the dense solution of a Problem: the accepted solver steps
// plus the state derivative at each, interpolated with a cubic Hermite
// polynomial between steps. Read-only once returned by Solve.
type Trajectory struct {
	times  []float64
	states []dyn.State
	derivs []dyn.State
	t0, t1 float64
}

// Span returns the solved time window.
func (tr *Trajectory) Span() (float64, float64) { return tr.t0, tr.t1 }

// Steps returns the number of accepted solver steps.
func (tr *Trajectory) Steps() int { return len(tr.times) - 1 }

// Dim returns the state dimension.
func (tr *Trajectory) Dim() int {
	if len(tr.states) == 0 {
		return 0
	}
	return len(tr.states[0])
}

// Times returns the accepted step times. Do not mutate.
func (tr *Trajectory) Times() []float64 { return tr.times }

// States returns the states at the accepted step times. Do not mutate.
func (tr *Trajectory) States() []dyn.State { return tr.states }

// At evaluates the trajectory at an arbitrary t within the solved span.
func (tr *Trajectory) At(t float64) (dyn.State, error) {
	if t < tr.t0 || t > tr.t1 {
		return nil, fmt.Errorf("%w: t=%g not in [%g, %g]", dyn.ErrOutOfRange, t, tr.t0, tr.t1)
	}

	// Index of the interval [times[i], times[i+1]] containing t.
	i := sort.SearchFloat64s(tr.times, t)
	if i > 0 {
		i--
	}
	if i >= len(tr.times)-1 {
		i = len(tr.times) - 2
	}

	h := tr.times[i+1] - tr.times[i]
	s := (t - tr.times[i]) / h

	h00 := (1 + 2*s) * (1 - s) * (1 - s)
	h10 := s * (1 - s) * (1 - s)
	h01 := s * s * (3 - 2*s)
	h11 := s * s * (s - 1)

	x0, x1 := tr.states[i], tr.states[i+1]
	d0, d1 := tr.derivs[i], tr.derivs[i+1]

	out := make(dyn.State, len(x0))
	for j := range out {
		out[j] = h00*x0[j] + h10*h*d0[j] + h01*x1[j] + h11*h*d1[j]
	}
	return out, nil
}

// AtMany evaluates the trajectory at each time in ts.
func (tr *Trajectory) AtMany(ts []float64) ([]dyn.State, error) {
	out := make([]dyn.State, len(ts))
	for i, t := range ts {
		x, err := tr.At(t)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
