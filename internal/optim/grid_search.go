// Package optim provides a cheap maximum-a-posteriori point estimate by grid
// search, useful as a sanity check before committing to a long sampling run.
package optim

import (
	"context"
	"math"

	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/infer"
	"github.com/kmadler/bayesode/internal/prior"
)

type GridSearch struct {
	points int // grid points per dimension
}

func NewGridSearch(points int) *GridSearch {
	if points < 2 {
		points = 2
	}
	return &GridSearch{points: points}
}

// Search evaluates the target on a grid spanning the central prior mass
// (quantiles 0.01 to 0.99 per parameter) and returns the best point and its
// log density.
func (g *GridSearch) Search(ctx context.Context, target infer.Target, priors prior.Set) (dyn.Params, float64, error) {
	axes := make([][]float64, len(priors))
	for i, d := range priors {
		axis := make([]float64, g.points)
		for j := range axis {
			q := 0.01 + (0.99-0.01)*float64(j)/float64(g.points-1)
			axis[j] = d.Quantile(q)
		}
		axes[i] = axis
	}

	best := math.Inf(-1)
	var bestParams dyn.Params

	current := make([]float64, len(axes))
	err := g.searchRecursive(ctx, 0, current, axes, target, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current []float64,
	axes [][]float64,
	target infer.Target,
	best *float64,
	bestParams *dyn.Params,
) error {
	if depth == len(axes) {
		val := target.LogDensity(current)
		if val > *best {
			*best = val
			*bestParams = append(dyn.Params(nil), current...)
		}
		return nil
	}

	for _, v := range axes[depth] {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		current[depth] = v
		if err := g.searchRecursive(ctx, depth+1, current, axes, target, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
