package infer

import (
	"context"
	"math"

	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/prior"
	"github.com/kmadler/bayesode/internal/sim"
	"gonum.org/v1/gonum/stat/distuv"
)

// Target is the posterior log density a backend samples from.
type Target struct {
	Dim   int
	Names []string
	Init  []float64

	// LogDensity is the unnormalized log posterior. A parameter vector the
	// model rejects, or one whose forward solve fails, scores -Inf.
	LogDensity func(p []float64) float64
}

// NewTarget assembles log prior + Gaussian log likelihood around a forward
// solve of the problem at each proposal.
func NewTarget(ctx context.Context, prob *dyn.Problem, obs *sim.Observations, priors prior.Set, solver sim.Options) Target {
	noise := distuv.Normal{Mu: 0, Sigma: obs.Sigma}

	logDensity := func(p []float64) float64 {
		lp := priors.LogProb(dyn.Params(p))
		if math.IsInf(lp, -1) || math.IsNaN(lp) {
			return math.Inf(-1)
		}

		candidate, err := prob.WithParams(dyn.Params(p))
		if err != nil {
			return math.Inf(-1)
		}
		tr, err := sim.Solve(ctx, candidate, solver)
		if err != nil {
			return math.Inf(-1)
		}

		for i, t := range obs.Times {
			x, err := tr.At(t)
			if err != nil {
				return math.Inf(-1)
			}
			for j, y := range obs.Values[i] {
				lp += noise.LogProb(y - x[j])
			}
		}
		return lp
	}

	return Target{
		Dim:        prob.ParamDim(),
		Names:      prob.System.ParamNames(),
		Init:       priors.Means(),
		LogDensity: logDensity,
	}
}
