package dyn

import "math"

// State is the state vector of an ODE system.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Params is the parameter vector of an ODE system. Order is fixed per model.
type Params []float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	copy(c, p)
	return c
}

// System is an ODE model: du/dt = Derive(u, p, t).
type System interface {
	// Derive returns the time derivative of the state. Pure and deterministic.
	Derive(x State, p Params, t float64) State
	StateDim() int
	ParamDim() int
	// ParamNames returns one label per parameter, in Params order.
	ParamNames() []string
	// CheckParams reports whether p makes the derivative well defined.
	CheckParams(p Params) error
	Name() string
}

// Integrator advances a system by one fixed step.
type Integrator interface {
	Step(sys System, x State, p Params, t, dt float64) State
}

// AdaptiveIntegrator additionally estimates the local error of a step.
// errRatio is local error over tolerance: a step with errRatio > 1 should be
// rejected and retried with dtNext.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, p Params, t, dt, tol float64) (next State, errRatio, dtNext float64)
}
