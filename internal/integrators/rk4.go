package integrators

import "github.com/kmadler/bayesode/internal/dyn"

// RK4 is the classic fixed-step 4th-order Runge-Kutta method.
type RK4 struct {
	k1, k2, k3, k4 dyn.State
	scratch        dyn.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dyn.State, n)
		r.k2 = make(dyn.State, n)
		r.k3 = make(dyn.State, n)
		r.k4 = make(dyn.State, n)
		r.scratch = make(dyn.State, n)
	}
}

func (r *RK4) Step(sys dyn.System, x dyn.State, p dyn.Params, t, dt float64) dyn.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, p, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, sys.Derive(r.scratch, p, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, sys.Derive(r.scratch, p, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, sys.Derive(r.scratch, p, t+dt))

	result := make(dyn.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
