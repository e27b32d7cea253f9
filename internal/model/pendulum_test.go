package model

import (
	"errors"
	"math"
	"testing"

	"github.com/kmadler/bayesode/internal/dyn"
)

func TestPendulumEquilibrium(t *testing.T) {
	pd := NewPendulum()

	x := dyn.State{0, 0}
	p := dyn.Params{1.0, 2.5}

	dx := pd.Derive(x, p, 0)

	if math.Abs(dx[0]) > 1e-10 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}

	if math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestPendulumGravity(t *testing.T) {
	pd := NewPendulum()

	// Undamped, horizontal: acceleration is -g/L.
	x := dyn.State{math.Pi / 2, 0}
	p := dyn.Params{0.0, 2.5}

	dx := pd.Derive(x, p, 0)

	expected := -Gravity / p[1]
	if math.Abs(dx[1]-expected) > 1e-6 {
		t.Errorf("expected acceleration %f, got %f", expected, dx[1])
	}
}

func TestPendulumDamping(t *testing.T) {
	pd := NewPendulum()

	// At the bottom with velocity, only the damping term acts.
	x := dyn.State{0, 2.0}
	p := dyn.Params{0.5, 1.0}

	dx := pd.Derive(x, p, 0)

	if math.Abs(dx[1]-(-0.5*2.0)) > 1e-10 {
		t.Errorf("expected damping acceleration %f, got %f", -0.5*2.0, dx[1])
	}
}

func TestPendulumCheckParams(t *testing.T) {
	pd := NewPendulum()

	tests := []struct {
		name   string
		params dyn.Params
		valid  bool
	}{
		{"ok", dyn.Params{1.0, 2.5}, true},
		{"undamped", dyn.Params{0.0, 2.5}, true},
		{"zero length", dyn.Params{1.0, 0.0}, false},
		{"negative length", dyn.Params{1.0, -1.0}, false},
		{"negative damping", dyn.Params{-0.1, 2.5}, false},
		{"wrong count", dyn.Params{1.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pd.CheckParams(tt.params)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPendulumZeroLengthIsModelEval(t *testing.T) {
	pd := NewPendulum()
	err := pd.CheckParams(dyn.Params{1.0, 0.0})
	if !errors.Is(err, dyn.ErrModelEval) {
		t.Errorf("expected ErrModelEval, got %v", err)
	}
}

func TestOscillatorExact(t *testing.T) {
	o := NewOscillator()
	x0 := dyn.State{1.0, 0.0}
	p := dyn.Params{4.0, 0.0}

	// x(t) = cos(2t) for k=4, c=0.
	got := o.Exact(x0, p, math.Pi/4)
	if math.Abs(got[0]-math.Cos(math.Pi/2)) > 1e-12 {
		t.Errorf("exact position wrong: %f", got[0])
	}
	if math.Abs(got[1]-(-2.0)) > 1e-12 {
		t.Errorf("exact velocity wrong: %f", got[1])
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range List() {
		sys, err := Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if sys.Name() != name {
			t.Errorf("name mismatch: %s vs %s", sys.Name(), name)
		}
		if len(sys.ParamNames()) != sys.ParamDim() {
			t.Errorf("%s: %d param names for %d params", name, len(sys.ParamNames()), sys.ParamDim())
		}
	}

	if _, err := Get("lorenz"); err == nil {
		t.Error("expected error for unknown model")
	}
}
