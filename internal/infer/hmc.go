package infer

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/kmadler/bayesode/internal/chain"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// HMC is a Hamiltonian Monte Carlo sampler. The posterior gradient is
// approximated by central finite differences (the ODE solve inside the
// density is not differentiable in closed form).
type HMC struct{}

func NewHMC() *HMC { return &HMC{} }

func (h *HMC) Name() string { return "hmc" }

func (h *HMC) Sample(ctx context.Context, req Request, opts Options) (*chain.Chain, error) {
	target := req.Target
	rng := rand.New(rand.NewPCG(opts.Seed, 0x686d63))
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	fdSettings := &fd.Settings{Formula: fd.Central}
	grad := func(dst, p []float64) bool {
		fd.Gradient(dst, target.LogDensity, p, fdSettings)
		for _, g := range dst {
			if math.IsNaN(g) || math.IsInf(g, 0) {
				return false
			}
		}
		return true
	}

	dim := target.Dim
	cur := append([]float64(nil), target.Init...)
	curLogp := target.LogDensity(cur)

	ch := chain.New(h.Name(), target.Names, opts.Samples)

	pos := make([]float64, dim)
	mom := make([]float64, dim)
	g := make([]float64, dim)

	total := opts.Warmup + opts.Samples
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		copy(pos, cur)
		kinetic0 := 0.0
		for j := range mom {
			mom[j] = normal.Rand()
			kinetic0 += 0.5 * mom[j] * mom[j]
		}

		// Leapfrog trajectory. A gradient that blows up (e.g. at a prior
		// support boundary) aborts the trajectory and rejects.
		ok := grad(g, pos)
		if ok {
			for s := 0; s < opts.Leapfrog && ok; s++ {
				floats.AddScaled(mom, 0.5*opts.StepSize, g)
				floats.AddScaled(pos, opts.StepSize, mom)
				if ok = grad(g, pos); ok {
					floats.AddScaled(mom, 0.5*opts.StepSize, g)
				}
			}
		}

		accepted := false
		if ok {
			propLogp := target.LogDensity(pos)
			kinetic1 := 0.0
			for _, m := range mom {
				kinetic1 += 0.5 * m * m
			}
			dH := (curLogp - kinetic0) - (propLogp - kinetic1)
			if !math.IsInf(propLogp, -1) && !math.IsNaN(propLogp) && -dH >= math.Log(rng.Float64()) {
				copy(cur, pos)
				curLogp = propLogp
				accepted = true
			}
		}

		if i < opts.Warmup {
			continue
		}
		ch.Samples = append(ch.Samples, append([]float64(nil), cur...))
		if accepted {
			ch.Accepted++
		}
		if opts.Progress != nil {
			opts.Progress(len(ch.Samples), opts.Samples, cur, curLogp, accepted)
		}
	}

	return ch, nil
}
