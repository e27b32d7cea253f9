package storage

import (
	"math"
	"testing"
	"time"

	"github.com/kmadler/bayesode/internal/chain"
)

func testChain() *chain.Chain {
	ch := chain.New("metropolis", []string{"omega", "length"}, 4)
	ch.Samples = append(ch.Samples,
		[]float64{0.9, 2.4},
		[]float64{1.1, 2.6},
		[]float64{1.0, 2.5},
		[]float64{1.05, 2.45},
	)
	ch.Accepted = 3
	ch.Elapsed = 250 * time.Millisecond
	return ch
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	ch := testChain()
	runID, err := store.Save(RunMetadata{
		Model:      "pendulum",
		Backend:    "metropolis",
		Integrator: "rk45",
		Warmup:     100,
		Seed:       7,
		Sigma:      0.01,
		TrueParams: []float64{1.0, 2.5},
	}, ch)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Model != "pendulum" || meta.Backend != "metropolis" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Samples != 4 {
		t.Errorf("samples = %d, want 4", meta.Samples)
	}
	if math.Abs(meta.AcceptRate-0.75) > 1e-12 {
		t.Errorf("accept rate = %v, want 0.75", meta.AcceptRate)
	}
	if len(meta.ParamNames) != 2 || meta.ParamNames[0] != "omega" {
		t.Errorf("param names = %v", meta.ParamNames)
	}
}

func TestLoadChainRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	ch := testChain()
	runID, err := store.Save(RunMetadata{Model: "pendulum", Backend: "hmc"}, ch)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadChain(runID)
	if err != nil {
		t.Fatalf("load chain: %v", err)
	}
	if loaded.Len() != ch.Len() || loaded.Dim() != ch.Dim() {
		t.Fatalf("dims: got %dx%d, want %dx%d", loaded.Len(), loaded.Dim(), ch.Len(), ch.Dim())
	}
	if loaded.Backend != "hmc" {
		t.Errorf("backend = %q, want hmc", loaded.Backend)
	}
	for i, row := range loaded.Samples {
		for j, v := range row {
			if math.Abs(v-ch.Samples[i][j]) > 1e-12 {
				t.Errorf("sample[%d][%d] = %v, want %v", i, j, v, ch.Samples[i][j])
			}
		}
	}
}

func TestListOrdering(t *testing.T) {
	store := New(t.TempDir())

	for _, model := range []string{"pendulum", "oscillator"} {
		if _, err := store.Save(RunMetadata{Model: model, Backend: "metropolis"}, testChain()); err != nil {
			t.Fatalf("save %s: %v", model, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Model != "oscillator" {
		t.Errorf("newest first: got %q", runs[0].Model)
	}
}

func TestListEmpty(t *testing.T) {
	store := New(t.TempDir() + "/never-created")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}

func TestLoadMissingRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("no-such-run"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := store.LoadChain("no-such-run"); err == nil {
		t.Error("expected error for missing chain")
	}
}
