package config

import "github.com/kmadler/bayesode/internal/prior"

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"default": {
			Model: "pendulum", Integrator: "rk45", Backend: "metropolis",
			Samples: 10000, Warmup: 1000, Chains: 1, Seed: 1,
			StepSize: 0.05, Leapfrog: 10,
			Data: DataConfig{
				TrueParams: []float64{1.0, 2.5},
				InitState:  []float64{1.0, 0.1},
				T1:         10.0, ObsCount: 50, Sigma: 0.01,
			},
			Priors: []prior.Spec{
				{Dist: "uniform", Low: 0.0, High: 5.0},
				{Dist: "uniform", Low: 0.1, High: 10.0},
			},
		},
		"noisy": {
			Model: "pendulum", Integrator: "rk45", Backend: "metropolis",
			Samples: 20000, Warmup: 2000, Chains: 1, Seed: 1,
			StepSize: 0.05, Leapfrog: 10,
			Data: DataConfig{
				TrueParams: []float64{1.0, 2.5},
				InitState:  []float64{1.0, 0.1},
				T1:         10.0, ObsCount: 50, Sigma: 0.1,
			},
			Priors: []prior.Spec{
				{Dist: "uniform", Low: 0.0, High: 5.0},
				{Dist: "uniform", Low: 0.1, High: 10.0},
			},
		},
		"informative": {
			Model: "pendulum", Integrator: "rk45", Backend: "hmc",
			Samples: 5000, Warmup: 500, Chains: 1, Seed: 1,
			StepSize: 0.02, Leapfrog: 15,
			Data: DataConfig{
				TrueParams: []float64{1.0, 2.5},
				InitState:  []float64{1.0, 0.1},
				T1:         10.0, ObsCount: 50, Sigma: 0.01,
			},
			Priors: []prior.Spec{
				{Dist: "lognormal", Mean: 0.0, Stddev: 0.5},
				{Dist: "normal", Mean: 2.5, Stddev: 1.0},
			},
		},
	},
	"oscillator": {
		"default": {
			Model: "oscillator", Integrator: "rk45", Backend: "metropolis",
			Samples: 10000, Warmup: 1000, Chains: 1, Seed: 1,
			StepSize: 0.05, Leapfrog: 10,
			Data: DataConfig{
				TrueParams: []float64{4.0, 0.4},
				InitState:  []float64{1.0, 0.0},
				T1:         10.0, ObsCount: 50, Sigma: 0.01,
			},
			Priors: []prior.Spec{
				{Dist: "uniform", Low: 0.1, High: 20.0},
				{Dist: "uniform", Low: 0.0, High: 2.0},
			},
		},
		"stiff": {
			Model: "oscillator", Integrator: "rk45", Backend: "hmc",
			Samples: 5000, Warmup: 500, Chains: 1, Seed: 1,
			StepSize: 0.02, Leapfrog: 15,
			Data: DataConfig{
				TrueParams: []float64{50.0, 0.5},
				InitState:  []float64{1.0, 0.0},
				T1:         5.0, ObsCount: 100, Sigma: 0.01,
			},
			Priors: []prior.Spec{
				{Dist: "uniform", Low: 1.0, High: 100.0},
				{Dist: "uniform", Low: 0.0, High: 2.0},
			},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
