package infer

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/prior"
)

// writeStub creates a fake sampler executable emitting the given stdout.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub sampler scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "sampler")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func externalOptions(cmd string) Options {
	opts := DefaultOptions()
	opts.Samples = 3
	opts.Warmup = 0
	opts.Command = cmd
	opts.PriorSpecs = []prior.Spec{
		{Dist: "uniform", Low: 0.1, High: 3.0},
		{Dist: "normal", Mean: 3.0, Stddev: 1.0},
	}
	return opts
}

func TestExternalBackendParsesChain(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 20)

	stub := writeStub(t, `cat >/dev/null # job path is in "$1", chain is canned
echo "omega,L"
echo "1.01,2.49"
echo "0.98,2.52"
echo "1.02,2.47"
`)

	d := NewDriver(NewExternal(), externalOptions(stub))
	ch, err := d.Run(context.Background(), prob, obs, testPriors(rand.NewPCG(21, 0)))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if ch.Backend != "external" {
		t.Errorf("backend = %q", ch.Backend)
	}
	if ch.Len() != 3 {
		t.Errorf("chain length %d, want 3", ch.Len())
	}
	for _, s := range ch.Samples {
		if len(s) != prob.ParamDim() {
			t.Fatalf("sample width %d, want %d", len(s), prob.ParamDim())
		}
	}
}

func TestExternalBackendReceivesJob(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 22)

	// The stub verifies the job file exists and mentions the model, then
	// echoes a minimal chain.
	stub := writeStub(t, `grep -q '"model":"pendulum"' "$1" || exit 3
grep -q '"sigma":0.01' "$1" || exit 4
echo "omega,L"
echo "1.0,2.5"
`)

	d := NewDriver(NewExternal(), externalOptions(stub))
	if _, err := d.Run(context.Background(), prob, obs, testPriors(rand.NewPCG(23, 0))); err != nil {
		t.Fatalf("stub rejected job file: %v", err)
	}
}

func TestExternalBackendLaunchFailure(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 24)

	d := NewDriver(NewExternal(), externalOptions("/nonexistent/sampler"))
	_, err := d.Run(context.Background(), prob, obs, testPriors(rand.NewPCG(25, 0)))

	if !errors.Is(err, dyn.ErrBackendFailure) {
		t.Fatalf("expected backend failure, got %v", err)
	}
	var be *BackendError
	if !errors.As(err, &be) || be.Backend != "external" {
		t.Errorf("expected BackendError with external identity, got %v", err)
	}
}

func TestExternalBackendNonzeroExit(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 26)

	stub := writeStub(t, `echo "sampler diverged" >&2
exit 1
`)

	d := NewDriver(NewExternal(), externalOptions(stub))
	_, err := d.Run(context.Background(), prob, obs, testPriors(rand.NewPCG(27, 0)))
	if !errors.Is(err, dyn.ErrBackendFailure) {
		t.Fatalf("expected backend failure, got %v", err)
	}
}

func TestExternalBackendUnparsableOutput(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 28)

	tests := []struct {
		name string
		body string
	}{
		{"garbage", `echo "this is not a chain"` + "\n" + `echo "neither is this"`},
		{"empty", `true`},
		{"wrong width", "echo \"omega\"\necho \"1.0\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := writeStub(t, tt.body+"\n")
			d := NewDriver(NewExternal(), externalOptions(stub))
			_, err := d.Run(context.Background(), prob, obs, testPriors(rand.NewPCG(29, 0)))
			if !errors.Is(err, dyn.ErrBackendFailure) {
				t.Errorf("expected backend failure, got %v", err)
			}
		})
	}
}

func TestExternalBackendCanceledProcess(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 30)

	stub := writeStub(t, `sleep 30
echo "omega,L"
echo "1.0,2.5"
`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	d := NewDriver(NewExternal(), externalOptions(stub))
	start := time.Now()
	_, err := d.Run(ctx, prob, obs, testPriors(rand.NewPCG(31, 0)))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run blocked %v past a 100ms deadline", elapsed)
	}
}

func TestExternalBackendCancellationReapsSamplerChildren(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 34)

	// The sampler spawns its own child holding the stdout pipe open. Killing
	// only the direct child would leave Wait blocked on the pipe until the
	// grandchild's sleep finishes.
	stub := writeStub(t, `sleep 10 &
wait
echo "omega,L"
echo "1.0,2.5"
`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	d := NewDriver(NewExternal(), externalOptions(stub))
	start := time.Now()
	_, err := d.Run(ctx, prob, obs, testPriors(rand.NewPCG(35, 0)))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run blocked %v past a 100ms deadline", elapsed)
	}
}

func TestExternalBackendNoCommand(t *testing.T) {
	prob := testProblem(t)
	obs := testObservations(t, prob, 32)

	opts := externalOptions("")
	d := NewDriver(NewExternal(), opts)
	_, err := d.Run(context.Background(), prob, obs, testPriors(rand.NewPCG(33, 0)))
	if !errors.Is(err, dyn.ErrBackendFailure) {
		t.Fatalf("expected backend failure, got %v", err)
	}
}
