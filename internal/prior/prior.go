// Package prior declares per-parameter probability distributions for the
// inference driver. Distributions are gonum distuv types behind a small
// interface; a Set pairs one distribution with each model parameter, in
// parameter order.
package prior

import (
	"fmt"
	"math/rand/v2"

	"github.com/kmadler/bayesode/internal/dyn"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dist is the slice of a distribution the estimation pipeline needs.
// distuv.Uniform, distuv.Normal and distuv.LogNormal satisfy it.
type Dist interface {
	LogProb(x float64) float64
	Rand() float64
	Mean() float64
	Quantile(p float64) float64
}

// Set is one prior per parameter, positional with dyn.Params.
type Set []Dist

// Validate checks the count invariant against a model's parameter dimension.
func (s Set) Validate(paramDim int) error {
	if len(s) != paramDim {
		return fmt.Errorf("%w: %d priors for %d parameters",
			dyn.ErrPriorCountMismatch, len(s), paramDim)
	}
	return nil
}

// LogProb accumulates the joint log prior density at p.
func (s Set) LogProb(p dyn.Params) float64 {
	ll := 0.0
	for i, d := range s {
		ll += d.LogProb(p[i])
	}
	return ll
}

// Sample draws one parameter vector from the joint prior.
func (s Set) Sample() dyn.Params {
	p := make(dyn.Params, len(s))
	for i, d := range s {
		p[i] = d.Rand()
	}
	return p
}

// Means returns the per-parameter prior means, a convenient chain start.
func (s Set) Means() dyn.Params {
	p := make(dyn.Params, len(s))
	for i, d := range s {
		p[i] = d.Mean()
	}
	return p
}

// Uniform returns a Uniform(low, high) prior drawing from src.
func Uniform(low, high float64, src rand.Source) Dist {
	return distuv.Uniform{Min: low, Max: high, Src: src}
}

// Normal returns a Normal(mean, stddev) prior drawing from src.
func Normal(mean, stddev float64, src rand.Source) Dist {
	return distuv.Normal{Mu: mean, Sigma: stddev, Src: src}
}

// LogNormal returns a LogNormal prior whose underlying normal has the given
// mean and stddev, drawing from src.
func LogNormal(mean, stddev float64, src rand.Source) Dist {
	return distuv.LogNormal{Mu: mean, Sigma: stddev, Src: src}
}
