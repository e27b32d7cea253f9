package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kmadler/bayesode/internal/chain"
	"github.com/kmadler/bayesode/internal/prior"
)

// External invokes a separate sampler executable. The job (model, data,
// priors, sampler options) is serialized to a JSON file whose path is passed
// as the executable's last argument; the executable writes its chain as CSV
// (header of parameter names, one row per sample) to stdout.
//
// The child process is a scoped resource: exec.CommandContext guarantees it
// is killed when ctx is canceled, and Run does not return before the process
// is reaped, on every exit path.
type External struct{}

func NewExternal() *External { return &External{} }

func (e *External) Name() string { return "external" }

// Job is the wire format handed to the external sampler.
type Job struct {
	Model        string       `json:"model"`
	ParamNames   []string     `json:"param_names"`
	InitialState []float64    `json:"initial_state"`
	T0           float64      `json:"t0"`
	T1           float64      `json:"t1"`
	Times        []float64    `json:"times"`
	Observations [][]float64  `json:"observations"`
	Sigma        float64      `json:"sigma"`
	Priors       []prior.Spec `json:"priors"`
	Samples      int          `json:"samples"`
	Warmup       int          `json:"warmup"`
	Seed         uint64       `json:"seed"`
}

func (e *External) Sample(ctx context.Context, req Request, opts Options) (*chain.Chain, error) {
	if opts.Command == "" {
		return nil, &BackendError{Backend: e.Name(), Wrapped: fmt.Errorf("no sampler command configured")}
	}

	job := Job{
		Model:        req.Problem.System.Name(),
		ParamNames:   req.Problem.System.ParamNames(),
		InitialState: req.Problem.X0,
		T0:           req.Problem.T0,
		T1:           req.Problem.T1,
		Times:        req.Obs.Times,
		Observations: make([][]float64, len(req.Obs.Values)),
		Sigma:        req.Obs.Sigma,
		Priors:       opts.PriorSpecs,
		Samples:      opts.Samples,
		Warmup:       opts.Warmup,
		Seed:         opts.Seed,
	}
	for i, v := range req.Obs.Values {
		job.Observations[i] = v
	}

	dir, err := os.MkdirTemp("", "bayesode-job-")
	if err != nil {
		return nil, &BackendError{Backend: e.Name(), Wrapped: err}
	}
	defer os.RemoveAll(dir)

	jobPath := filepath.Join(dir, "job.json")
	data, err := json.Marshal(job)
	if err != nil {
		return nil, &BackendError{Backend: e.Name(), Wrapped: err}
	}
	if err := os.WriteFile(jobPath, data, 0644); err != nil {
		return nil, &BackendError{Backend: e.Name(), Wrapped: err}
	}

	args := append(append([]string(nil), opts.Args...), jobPath)
	cmd := exec.CommandContext(ctx, opts.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Cancellation must terminate the sampler and everything it spawned:
	// kill its whole process group, and abandon the output pipes after a
	// grace period so an orphaned grandchild holding the pipes open cannot
	// block Wait past ctx cancellation.
	setProcessGroup(cmd)
	cmd.WaitDelay = 3 * time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &BackendError{Backend: e.Name(),
			Wrapped: fmt.Errorf("sampler %q: %w: %s", opts.Command, err, bytes.TrimSpace(stderr.Bytes()))}
	}

	ch, err := chain.ReadCSV(&stdout)
	if err != nil {
		return nil, &BackendError{Backend: e.Name(),
			Wrapped: fmt.Errorf("unparsable sampler output: %w", err)}
	}
	if ch.Dim() != req.Target.Dim {
		return nil, &BackendError{Backend: e.Name(),
			Wrapped: fmt.Errorf("sampler returned %d-dimensional samples, want %d", ch.Dim(), req.Target.Dim)}
	}
	return ch, nil
}
