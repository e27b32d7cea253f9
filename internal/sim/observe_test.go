package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/model"
	"gonum.org/v1/gonum/stat"
)

func solveTestTrajectory(t *testing.T) *Trajectory {
	t.Helper()
	sys := model.NewPendulum()
	prob, err := dyn.NewProblem(sys, dyn.State{1.0, 0.1}, 0, 10, dyn.Params{1.0, 2.5})
	if err != nil {
		t.Fatal(err)
	}
	tr, err := Solve(context.Background(), prob, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestObserveDeterministic(t *testing.T) {
	tr := solveTestTrajectory(t)
	times := UniformTimes(1, 10, 10)

	a, err := Observe(tr, times, DefaultSigma, rand.NewPCG(42, 0))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	b, err := Observe(tr, times, DefaultSigma, rand.NewPCG(42, 0))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}

	for i := range a.Values {
		for j := range a.Values[i] {
			if a.Values[i][j] != b.Values[i][j] {
				t.Fatalf("same seed produced different observations at [%d][%d]", i, j)
			}
		}
	}
}

func TestObserveNoiseStatistics(t *testing.T) {
	tr := solveTestTrajectory(t)

	truth, err := tr.At(5.0)
	if err != nil {
		t.Fatal(err)
	}

	const (
		n     = 20000
		sigma = 0.01
	)
	src := rand.NewPCG(7, 0)

	draws := make([]float64, n)
	for i := 0; i < n; i++ {
		obs, err := Observe(tr, []float64{5.0}, sigma, src)
		if err != nil {
			t.Fatal(err)
		}
		draws[i] = obs.Values[0][0]
	}

	mean := stat.Mean(draws, nil)
	sd := stat.StdDev(draws, nil)

	// Standard error of the mean is sigma/sqrt(n) ~ 7e-5; allow 5x.
	if math.Abs(mean-truth[0]) > 5*sigma/math.Sqrt(n) {
		t.Errorf("empirical mean %f too far from truth %f", mean, truth[0])
	}
	if math.Abs(sd-sigma) > 0.1*sigma {
		t.Errorf("empirical stddev %f too far from sigma %f", sd, sigma)
	}
}

func TestObserveValidation(t *testing.T) {
	tr := solveTestTrajectory(t)
	src := rand.NewPCG(1, 0)

	tests := []struct {
		name  string
		times []float64
		sigma float64
	}{
		{"empty times", nil, 0.01},
		{"non-increasing", []float64{1, 1}, 0.01},
		{"decreasing", []float64{2, 1}, 0.01},
		{"out of range", []float64{5, 11}, 0.01},
		{"zero sigma", []float64{1, 2}, 0},
		{"negative sigma", []float64{1, 2}, -0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Observe(tr, tt.times, tt.sigma, src); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestUniformTimes(t *testing.T) {
	ts := UniformTimes(1, 10, 10)
	if len(ts) != 10 {
		t.Fatalf("expected 10 times, got %d", len(ts))
	}
	if ts[0] != 1 || ts[9] != 10 {
		t.Errorf("endpoints wrong: %f, %f", ts[0], ts[9])
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			t.Error("times not strictly increasing")
		}
	}
}
