package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/kmadler/bayesode/internal/dyn"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSigma is the observation noise standard deviation used when the
// caller does not specify one.
const DefaultSigma = 0.01

// Observations is an ordered set of noisy samples of a trajectory.
type Observations struct {
	Times  []float64
	Values []dyn.State
	Sigma  float64
}

// Observe samples the trajectory at the given times and adds independent
// zero-mean Gaussian noise of standard deviation sigma to every state
// component. Times must be strictly increasing and inside the solved span.
// The same source yields bit-identical observations.
func Observe(tr *Trajectory, times []float64, sigma float64, src rand.Source) (*Observations, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("noise sigma must be positive, got %g", sigma)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no observation times given")
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("observation times must be strictly increasing: t[%d]=%g, t[%d]=%g",
				i-1, times[i-1], i, times[i])
		}
	}

	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}

	obs := &Observations{
		Times:  append([]float64(nil), times...),
		Values: make([]dyn.State, len(times)),
		Sigma:  sigma,
	}
	for i, t := range times {
		x, err := tr.At(t)
		if err != nil {
			return nil, err
		}
		y := make(dyn.State, len(x))
		for j := range x {
			y[j] = x[j] + noise.Rand()
		}
		obs.Values[i] = y
	}
	return obs, nil
}

// UniformTimes returns n times evenly spaced over [start, stop], endpoints
// included.
func UniformTimes(start, stop float64, n int) []float64 {
	if n < 2 {
		return []float64{start}
	}
	ts := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range ts {
		ts[i] = start + float64(i)*step
	}
	ts[n-1] = stop
	return ts
}
