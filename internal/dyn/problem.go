package dyn

import "fmt"

// Problem bundles a model with an initial state, a time span, and a parameter
// vector. Create once, never mutate; pass by pointer.
type Problem struct {
	System System
	X0     State
	T0, T1 float64
	Params Params
}

// NewProblem validates the pieces eagerly so that a bad parameter vector
// fails here rather than mid-integration.
func NewProblem(sys System, x0 State, t0, t1 float64, p Params) (*Problem, error) {
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, model %q needs %d",
			ErrDimensionMismatch, len(x0), sys.Name(), sys.StateDim())
	}
	if t1 <= t0 {
		return nil, fmt.Errorf("time span [%g, %g] is empty", t0, t1)
	}
	if len(p) != sys.ParamDim() {
		return nil, fmt.Errorf("%w: got %d parameters, model %q needs %d",
			ErrDimensionMismatch, len(p), sys.Name(), sys.ParamDim())
	}
	if err := sys.CheckParams(p); err != nil {
		return nil, err
	}
	return &Problem{
		System: sys,
		X0:     x0.Clone(),
		T0:     t0,
		T1:     t1,
		Params: p.Clone(),
	}, nil
}

// WithParams returns a copy of the problem carrying a different parameter
// vector. Used by inference backends, which re-solve the same problem at
// every proposal.
func (pr *Problem) WithParams(p Params) (*Problem, error) {
	return NewProblem(pr.System, pr.X0, pr.T0, pr.T1, p)
}

func (pr *Problem) ParamDim() int { return pr.System.ParamDim() }
func (pr *Problem) StateDim() int { return pr.System.StateDim() }
