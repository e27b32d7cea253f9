package model

import (
	"fmt"
	"math"

	"github.com/kmadler/bayesode/internal/dyn"
)

// Gravity is the gravitational acceleration used by all models here.
const Gravity = 9.8

// Pendulum is a damped pendulum with two unknown parameters:
// p[0] = omega (damping coefficient), p[1] = L (length).
//
//	theta' = v
//	v'     = -omega*v - (g/L)*sin(theta)
type Pendulum struct{}

func NewPendulum() *Pendulum { return &Pendulum{} }

func (pd *Pendulum) Name() string         { return "pendulum" }
func (pd *Pendulum) StateDim() int        { return 2 }
func (pd *Pendulum) ParamDim() int        { return 2 }
func (pd *Pendulum) ParamNames() []string { return []string{"omega", "L"} }

func (pd *Pendulum) Derive(x dyn.State, p dyn.Params, t float64) dyn.State {
	theta := x[0]
	v := x[1]
	omega := p[0]
	length := p[1]
	return dyn.State{v, -omega*v - (Gravity/length)*math.Sin(theta)}
}

func (pd *Pendulum) CheckParams(p dyn.Params) error {
	if len(p) != pd.ParamDim() {
		return fmt.Errorf("%w: pendulum needs %d parameters, got %d",
			dyn.ErrDimensionMismatch, pd.ParamDim(), len(p))
	}
	if p[1] <= 0 {
		return fmt.Errorf("%w: length L=%g", dyn.ErrModelEval, p[1])
	}
	if p[0] < 0 {
		return fmt.Errorf("%w: damping omega=%g", dyn.ErrModelEval, p[0])
	}
	return nil
}

// Energy of the undamped pendulum, per unit mass. Decays monotonically when
// the damping coefficient is positive, which the solver tests rely on.
func (pd *Pendulum) Energy(x dyn.State, p dyn.Params) float64 {
	length := p[1]
	v := length * x[1]
	return 0.5*v*v + Gravity*length*(1.0-math.Cos(x[0]))
}
