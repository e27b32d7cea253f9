package model

import (
	"fmt"
	"math"

	"github.com/kmadler/bayesode/internal/dyn"
)

// Oscillator is a damped harmonic oscillator: p[0] = k (stiffness),
// p[1] = c (damping). With c = 0 it has the closed-form solution
// x(t) = x0*cos(sqrt(k)*t) + v0/sqrt(k)*sin(sqrt(k)*t), which the solver
// tests compare against.
type Oscillator struct{}

func NewOscillator() *Oscillator { return &Oscillator{} }

func (o *Oscillator) Name() string         { return "oscillator" }
func (o *Oscillator) StateDim() int        { return 2 }
func (o *Oscillator) ParamDim() int        { return 2 }
func (o *Oscillator) ParamNames() []string { return []string{"k", "c"} }

func (o *Oscillator) Derive(x dyn.State, p dyn.Params, t float64) dyn.State {
	return dyn.State{x[1], -p[0]*x[0] - p[1]*x[1]}
}

func (o *Oscillator) CheckParams(p dyn.Params) error {
	if len(p) != o.ParamDim() {
		return fmt.Errorf("%w: oscillator needs %d parameters, got %d",
			dyn.ErrDimensionMismatch, o.ParamDim(), len(p))
	}
	if p[0] <= 0 {
		return fmt.Errorf("%w: stiffness k=%g", dyn.ErrModelEval, p[0])
	}
	if p[1] < 0 {
		return fmt.Errorf("%w: damping c=%g", dyn.ErrModelEval, p[1])
	}
	return nil
}

// Exact evaluates the undamped (c=0) solution at t.
func (o *Oscillator) Exact(x0 dyn.State, p dyn.Params, t float64) dyn.State {
	w := math.Sqrt(p[0])
	return dyn.State{
		x0[0]*math.Cos(w*t) + x0[1]/w*math.Sin(w*t),
		-x0[0]*w*math.Sin(w*t) + x0[1]*math.Cos(w*t),
	}
}

func (o *Oscillator) Energy(x dyn.State, p dyn.Params) float64 {
	return 0.5*p[0]*x[0]*x[0] + 0.5*x[1]*x[1]
}
