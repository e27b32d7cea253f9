package infer

import (
	"context"
	"sync"

	"github.com/kmadler/bayesode/internal/chain"
	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/prior"
	"github.com/kmadler/bayesode/internal/sim"
)

// Ensemble runs several chains of the same backend concurrently with
// consecutive seeds. Problem, observations and priors are read-only, so the
// chains share them without locking.
type Ensemble struct {
	backend Backend
	opts    Options
	chains  int
}

func NewEnsemble(backend Backend, opts Options, chains int) *Ensemble {
	if chains < 1 {
		chains = 1
	}
	return &Ensemble{backend: backend, opts: opts, chains: chains}
}

// Run returns the per-chain results and their merged chain.
func (e *Ensemble) Run(ctx context.Context, prob *dyn.Problem, obs *sim.Observations, priors prior.Set) ([]*chain.Chain, *chain.Chain, error) {
	results := make([]*chain.Chain, e.chains)
	errs := make([]error, e.chains)

	var wg sync.WaitGroup
	for i := 0; i < e.chains; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			optsCopy := e.opts
			optsCopy.Seed = e.opts.Seed + uint64(idx)
			if idx > 0 {
				optsCopy.Progress = nil // only the first chain reports
			}

			d := NewDriver(e.backend, optsCopy)
			results[idx], errs[idx] = d.Run(ctx, prob, obs, priors)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	merged, err := chain.Merge(results...)
	if err != nil {
		return nil, nil, err
	}
	return results, merged, nil
}
