package chain

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

func syntheticChain(n int, seed uint64) *Chain {
	rng := rand.New(rand.NewPCG(seed, 0))
	c := New("test", []string{"a", "b"}, n)
	for i := 0; i < n; i++ {
		c.Samples = append(c.Samples, []float64{
			1.0 + 0.1*rng.NormFloat64(),
			2.5 + 0.5*rng.NormFloat64(),
		})
	}
	c.Accepted = n / 2
	return c
}

func TestChainStatistics(t *testing.T) {
	c := syntheticChain(5000, 1)

	if math.Abs(c.Mean(0)-1.0) > 0.01 {
		t.Errorf("mean(a) = %f, want ~1.0", c.Mean(0))
	}
	if math.Abs(c.StdDev(1)-0.5) > 0.05 {
		t.Errorf("stddev(b) = %f, want ~0.5", c.StdDev(1))
	}

	lo := c.Quantile(1, 0.025)
	hi := c.Quantile(1, 0.975)
	if lo >= c.Mean(1) || hi <= c.Mean(1) {
		t.Errorf("quantiles [%f, %f] do not bracket mean %f", lo, hi, c.Mean(1))
	}

	if got := c.AcceptRate(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("accept rate = %f, want 0.5", got)
	}
}

func TestESSIndependentSamples(t *testing.T) {
	c := syntheticChain(2000, 2)

	// Independent draws should have ESS near n.
	ess := c.ESS(0)
	if ess < 1500 {
		t.Errorf("ESS of independent samples too low: %f", ess)
	}
	if ess > 2000 {
		t.Errorf("ESS above sample count: %f", ess)
	}
}

func TestESSCorrelatedSamples(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 0))
	c := New("test", []string{"a"}, 2000)

	// AR(1) with strong autocorrelation.
	x := 0.0
	for i := 0; i < 2000; i++ {
		x = 0.95*x + rng.NormFloat64()
		c.Samples = append(c.Samples, []float64{x})
	}

	if ess := c.ESS(0); ess > 500 {
		t.Errorf("ESS of strongly correlated samples too high: %f", ess)
	}
}

func TestMerge(t *testing.T) {
	a := syntheticChain(100, 4)
	b := syntheticChain(200, 5)

	m, err := Merge(a, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if m.Len() != 300 {
		t.Errorf("merged length %d, want 300", m.Len())
	}
	if m.Accepted != a.Accepted+b.Accepted {
		t.Error("merged accepted count wrong")
	}

	bad := New("test", []string{"only"}, 0)
	bad.Samples = [][]float64{{1}}
	if _, err := Merge(a, bad); err == nil {
		t.Error("expected error merging mismatched chains")
	}
}

func TestRHatWellMixed(t *testing.T) {
	chains := []*Chain{syntheticChain(1000, 6), syntheticChain(1000, 7), syntheticChain(1000, 8)}

	r := RHat(chains, 0)
	if r < 0.95 || r > 1.05 {
		t.Errorf("rhat of identically distributed chains = %f, want ~1", r)
	}
}

func TestRHatDiverged(t *testing.T) {
	a := syntheticChain(1000, 9)
	b := syntheticChain(1000, 10)
	for i := range b.Samples {
		b.Samples[i][0] += 10 // disjoint mode
	}

	if r := RHat([]*Chain{a, b}, 0); r < 1.5 {
		t.Errorf("rhat of disjoint chains = %f, want >> 1", r)
	}
}

func TestRHatUnequalLengths(t *testing.T) {
	long := syntheticChain(1000, 13)
	short := syntheticChain(400, 14)

	got := RHat([]*Chain{long, short}, 0)

	truncated := New(long.Backend, long.Names, 400)
	truncated.Samples = long.Samples[:400]
	want := RHat([]*Chain{truncated, short}, 0)

	if math.Abs(got-want) > 1e-12 {
		t.Errorf("rhat with unequal chains = %f, want %f (shortest-length truncation)", got, want)
	}
	if got < 0.95 || got > 1.05 {
		t.Errorf("rhat of identically distributed unequal chains = %f, want ~1", got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	c := syntheticChain(50, 11)

	var buf bytes.Buffer
	if err := c.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Len() != c.Len() || got.Dim() != c.Dim() {
		t.Fatalf("round trip shape mismatch: %dx%d vs %dx%d", got.Len(), got.Dim(), c.Len(), c.Dim())
	}
	for i := range c.Samples {
		for j := range c.Samples[i] {
			if got.Samples[i][j] != c.Samples[i][j] {
				t.Fatalf("sample [%d][%d] not preserved", i, j)
			}
		}
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"header only", "a,b\n"},
		{"non-numeric", "a,b\n1.0,up\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSummaryContainsNames(t *testing.T) {
	c := syntheticChain(100, 12)
	s := c.Summary()
	if !strings.Contains(s, "a") || !strings.Contains(s, "MEAN") {
		t.Errorf("summary missing content:\n%s", s)
	}
}

func TestWriteJSON(t *testing.T) {
	c := syntheticChain(10, 3)
	c.Backend = "metropolis"

	var buf bytes.Buffer
	if err := c.WriteJSON(&buf); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var decoded struct {
		Backend string      `json:"backend"`
		Names   []string    `json:"param_names"`
		Samples [][]float64 `json:"samples"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Backend != "metropolis" {
		t.Errorf("backend = %q", decoded.Backend)
	}
	if len(decoded.Samples) != 10 || len(decoded.Names) != 2 {
		t.Errorf("got %d samples, %d names", len(decoded.Samples), len(decoded.Names))
	}
}
