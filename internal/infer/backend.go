package infer

import (
	"context"
	"fmt"
	"sort"

	"github.com/kmadler/bayesode/internal/chain"
	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/prior"
	"github.com/kmadler/bayesode/internal/sim"
)

// Options is the shared sampler configuration. Backends read the fields they
// understand and ignore the rest.
type Options struct {
	Samples  int
	Warmup   int
	Seed     uint64
	StepSize float64 // metropolis proposal scale factor, hmc leapfrog step
	Leapfrog int     // hmc leapfrog steps per proposal

	// Command and Args configure the external process backend.
	Command string
	Args    []string

	// PriorSpecs is the declarative prior form, serialized for the external
	// backend. In-process backends ignore it.
	PriorSpecs []prior.Spec

	// Progress, when non-nil, is called after every post-warmup iteration.
	Progress ProgressFunc

	// Solver controls the forward solve inside the posterior density.
	Solver sim.Options
}

// ProgressFunc observes sampling as it happens (used by the live view).
type ProgressFunc func(iter, total int, point []float64, logp float64, accepted bool)

func DefaultOptions() Options {
	return Options{
		Samples:  10_000,
		Warmup:   1_000,
		Seed:     1,
		StepSize: 0.05,
		Leapfrog: 10,
		Solver:   sim.DefaultOptions(),
	}
}

// Request is what the driver hands a backend: the in-process density plus
// the raw problem pieces a process-based backend can serialize.
type Request struct {
	Target  Target
	Problem *dyn.Problem
	Obs     *sim.Observations
}

// Backend is a substitutable sampling engine. Sample blocks until the chain
// is complete, the backend fails, or ctx is canceled.
type Backend interface {
	Name() string
	Sample(ctx context.Context, req Request, opts Options) (*chain.Chain, error)
}

// BackendError attaches the backend identity to a sampler failure.
type BackendError struct {
	Backend string
	Wrapped error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Wrapped)
}

func (e *BackendError) Unwrap() error { return e.Wrapped }

// Is lets errors.Is(err, dyn.ErrBackendFailure) match any BackendError.
func (e *BackendError) Is(target error) bool { return target == dyn.ErrBackendFailure }

var backends = map[string]func() Backend{
	"metropolis": func() Backend { return NewMetropolis() },
	"hmc":        func() Backend { return NewHMC() },
	"external":   func() Backend { return NewExternal() },
}

// GetBackend returns a backend by name.
func GetBackend(name string) (Backend, error) {
	fn, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(), nil
}

// ListBackends returns the registered backend names, sorted.
func ListBackends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
