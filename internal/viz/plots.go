// Package viz renders terminal plots for trajectories and posterior
// chains, and a live view of a running sampler.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/stat"

	"github.com/kmadler/bayesode/internal/chain"
	"github.com/kmadler/bayesode/internal/sim"
)

const (
	defaultWidth  = 70
	defaultHeight = 12
)

// TracePlot renders the sampled values of one parameter against
// iteration number.
func TracePlot(ch *chain.Chain, param int) string {
	series := ch.Param(param)
	if len(series) < 2 {
		return "(not enough samples)"
	}
	return asciigraph.Plot(series,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(fmt.Sprintf("trace: %s", ch.Names[param])))
}

// HistogramPlot renders the marginal posterior of one parameter as a
// binned density curve.
func HistogramPlot(ch *chain.Chain, param, bins int) string {
	series := ch.Param(param)
	if len(series) < 2 {
		return "(not enough samples)"
	}
	if bins < 2 {
		bins = 30
	}

	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return fmt.Sprintf("%s = %g (degenerate)", ch.Names[param], lo)
	}

	counts := make([]float64, bins)
	binWidth := (hi - lo) / float64(bins)
	for _, v := range series {
		b := int((v - lo) / binWidth)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}

	mean := stat.Mean(series, nil)
	return asciigraph.Plot(counts,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(fmt.Sprintf("%s  [%.4g, %.4g]  mean %.4g", ch.Names[param], lo, hi, mean)))
}

// TrajectoryPlot renders all components of a solved trajectory on a
// shared axis, sampled at n evenly spaced times.
func TrajectoryPlot(tr *sim.Trajectory, n int) (string, error) {
	if n < 2 {
		n = 200
	}
	t0, t1 := tr.Span()
	times := sim.UniformTimes(t0, t1, n)

	dim := tr.Dim()
	series := make([][]float64, dim)
	for c := 0; c < dim; c++ {
		series[c] = make([]float64, n)
	}
	for i, t := range times {
		x, err := tr.At(t)
		if err != nil {
			return "", err
		}
		for c := 0; c < dim; c++ {
			series[c][i] = x[c]
		}
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(defaultHeight+4),
		asciigraph.Width(defaultWidth),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red, asciigraph.Blue, asciigraph.Yellow),
		asciigraph.Caption(fmt.Sprintf("trajectory t=[%.2f, %.2f]", t0, t1))), nil
}

// ObservationPlot renders noisy observations alongside the underlying
// trajectory component they were drawn from.
func ObservationPlot(tr *sim.Trajectory, obs *sim.Observations) (string, error) {
	n := len(obs.Times)
	truth := make([]float64, n)
	observed := make([]float64, n)
	for i, t := range obs.Times {
		x, err := tr.At(t)
		if err != nil {
			return "", err
		}
		truth[i] = x[0]
		observed[i] = obs.Values[i][0]
	}

	var b strings.Builder
	b.WriteString(asciigraph.PlotMany([][]float64{truth, observed},
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("truth (green) vs observed (red)")))
	b.WriteString(fmt.Sprintf("\n%d observations, sigma=%g\n", n, obs.Sigma))
	return b.String(), nil
}

// CompareTable renders per-parameter posterior means for several chains
// side by side.
func CompareTable(chains ...*chain.Chain) string {
	if len(chains) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-12s", "param"))
	for _, ch := range chains {
		b.WriteString(fmt.Sprintf("%16s", ch.Backend))
	}
	b.WriteString("\n")
	for i, name := range chains[0].Names {
		b.WriteString(fmt.Sprintf("%-12s", name))
		for _, ch := range chains {
			if i < ch.Dim() {
				b.WriteString(fmt.Sprintf("%16.4f", ch.Mean(i)))
			} else {
				b.WriteString(fmt.Sprintf("%16s", "-"))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
