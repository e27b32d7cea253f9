package infer

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/kmadler/bayesode/internal/chain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Metropolis is an adaptive random-walk Metropolis sampler: Gaussian
// proposals whose scale is tuned during warmup toward a healthy acceptance
// rate, then frozen.
type Metropolis struct{}

func NewMetropolis() *Metropolis { return &Metropolis{} }

func (m *Metropolis) Name() string { return "metropolis" }

// acceptProposal applies the Metropolis criterion with uniform draw u. A
// zero-density proposal is never accepted: u can be exactly 0, which would
// otherwise make the log threshold -Inf and admit it.
func acceptProposal(propLogp, curLogp, u float64) bool {
	if math.IsInf(propLogp, -1) || math.IsNaN(propLogp) {
		return false
	}
	return propLogp-curLogp >= math.Log(u)
}

func (m *Metropolis) Sample(ctx context.Context, req Request, opts Options) (*chain.Chain, error) {
	target := req.Target
	rng := rand.New(rand.NewPCG(opts.Seed, 0x6d65))
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	// Per-dimension proposal scale, relative to the starting point.
	scale := make([]float64, target.Dim)
	for j, v := range target.Init {
		scale[j] = opts.StepSize * (math.Abs(v) + 1)
	}

	cur := append([]float64(nil), target.Init...)
	curLogp := target.LogDensity(cur)

	ch := chain.New(m.Name(), target.Names, opts.Samples)
	prop := make([]float64, target.Dim)

	windowAccepted := 0
	total := opts.Warmup + opts.Samples

	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for j := range prop {
			prop[j] = cur[j] + scale[j]*normal.Rand()
		}
		propLogp := target.LogDensity(prop)

		accepted := false
		if acceptProposal(propLogp, curLogp, rng.Float64()) {
			copy(cur, prop)
			curLogp = propLogp
			accepted = true
		}

		warmup := i < opts.Warmup
		if warmup {
			if accepted {
				windowAccepted++
			}
			// Every 50 warmup proposals, nudge the scale toward ~25% acceptance.
			if (i+1)%50 == 0 {
				rate := float64(windowAccepted) / 50
				if rate > 0.35 {
					floats.Scale(1.2, scale)
				} else if rate < 0.15 {
					floats.Scale(0.8, scale)
				}
				windowAccepted = 0
			}
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
