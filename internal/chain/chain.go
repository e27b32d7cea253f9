// Package chain holds posterior sample collections and their summary
// statistics and diagnostics.
package chain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Chain is an ordered sequence of sampled parameter vectors plus metadata
// about where it came from.
type Chain struct {
	Backend  string
	Names    []string
	Samples  [][]float64
	Accepted int
	Elapsed  time.Duration
}

func New(backend string, names []string, capacity int) *Chain {
	return &Chain{
		Backend: backend,
		Names:   append([]string(nil), names...),
		Samples: make([][]float64, 0, capacity),
	}
}

func (c *Chain) Len() int { return len(c.Samples) }

func (c *Chain) Dim() int { return len(c.Names) }

// Param returns a copy of the i-th parameter's sample column.
func (c *Chain) Param(i int) []float64 {
	col := make([]float64, len(c.Samples))
	for j, s := range c.Samples {
		col[j] = s[i]
	}
	return col
}

func (c *Chain) Mean(i int) float64 {
	return stat.Mean(c.Param(i), nil)
}

func (c *Chain) StdDev(i int) float64 {
	return stat.StdDev(c.Param(i), nil)
}

// Quantile returns the empirical q-quantile of the i-th parameter.
func (c *Chain) Quantile(i int, q float64) float64 {
	col := c.Param(i)
	sort.Float64s(col)
	return stat.Quantile(q, stat.Empirical, col, nil)
}

// AcceptRate is the fraction of proposals the sampler accepted. Zero for
// backends that do not report acceptance.
func (c *Chain) AcceptRate() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(len(c.Samples))
}

// ESS estimates the effective sample size of the i-th parameter using the
// initial-positive-sequence truncation of the autocorrelation sum.
func (c *Chain) ESS(i int) float64 {
	col := c.Param(i)
	n := len(col)
	if n < 4 {
		return float64(n)
	}

	mean := stat.Mean(col, nil)
	variance := stat.Variance(col, nil)
	if variance == 0 {
		return float64(n)
	}

	rho := func(lag int) float64 {
		sum := 0.0
		for t := 0; t < n-lag; t++ {
			sum += (col[t] - mean) * (col[t+lag] - mean)
		}
		return sum / (float64(n-1) * variance)
	}

	acSum := 0.0
	for lag := 1; lag < n/2; lag += 2 {
		pair := rho(lag) + rho(lag+1)
		if pair <= 0 {
			break
		}
		acSum += pair
	}

	ess := float64(n) / (1 + 2*acSum)
	if ess > float64(n) {
		ess = float64(n)
	}
	return ess
}

// Merge concatenates chains sample-wise. All chains must agree on names.
func Merge(chains ...*Chain) (*Chain, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("no chains to merge")
	}
	total := 0
	for _, c := range chains {
		if len(c.Names) != len(chains[0].Names) {
			return nil, fmt.Errorf("cannot merge chains with %d and %d parameters",
				len(chains[0].Names), len(c.Names))
		}
		total += c.Len()
	}

	merged := New(chains[0].Backend, chains[0].Names, total)
	for _, c := range chains {
		merged.Samples = append(merged.Samples, c.Samples...)
		merged.Accepted += c.Accepted
		merged.Elapsed += c.Elapsed
	}
	return merged, nil
}

// RHat computes the split-Rhat convergence diagnostic for parameter i across
// chains. Values near 1 indicate the chains mixed over the same distribution.
func RHat(chains []*Chain, i int) float64 {
	// Truncate to the shortest chain so every half carries equal weight.
	shortest := 0
	for _, c := range chains {
		if n := c.Len(); shortest == 0 || n < shortest {
			shortest = n
		}
	}
	if shortest < 4 {
		return 1
	}
	mid := shortest / 2

	var halves [][]float64
	for _, c := range chains {
		col := c.Param(i)
		halves = append(halves, col[:mid], col[mid:mid*2])
	}
	if len(halves) < 2 {
		return 1
	}

	m := float64(len(halves))
	n := float64(len(halves[0]))

	var chainMeans []float64
	w := 0.0
	for _, h := range halves {
		chainMeans = append(chainMeans, stat.Mean(h, nil))
		w += stat.Variance(h, nil)
	}
	w /= m
	b := n * stat.Variance(chainMeans, nil)

	if w == 0 {
		return 1
	}
	varPlus := (n-1)/n*w + b/n
	return math.Sqrt(varPlus / w)
}

// Summary renders a per-parameter statistics table.
func (c *Chain) Summary() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tMEAN\tSTDDEV\t2.5%\t97.5%\tESS")
	for i, name := range c.Names {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.0f\n",
			name, c.Mean(i), c.StdDev(i), c.Quantile(i, 0.025), c.Quantile(i, 0.975), c.ESS(i))
	}
	w.Flush()
	return b.String()
}
