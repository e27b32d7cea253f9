package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kmadler/bayesode/internal/prior"
)

const (
	DefaultSamples  = 10000
	DefaultWarmup   = 1000
	DefaultSigma    = 0.01
	DefaultT1       = 10.0
	DefaultObsCount = 50
	DefaultStepSize = 0.05
	DefaultLeapfrog = 10
)

type Config struct {
	Model      string       `yaml:"model"`
	Integrator string       `yaml:"integrator"`
	Backend    string       `yaml:"backend"`
	Samples    int          `yaml:"samples"`
	Warmup     int          `yaml:"warmup"`
	Chains     int          `yaml:"chains"`
	Seed       uint64       `yaml:"seed"`
	StepSize   float64      `yaml:"step_size"`
	Leapfrog   int          `yaml:"leapfrog"`
	Command    string       `yaml:"command,omitempty"`
	Args       []string     `yaml:"args,omitempty"`
	Data       DataConfig   `yaml:"data"`
	Priors     []prior.Spec `yaml:"priors"`
}

// DataConfig describes the synthetic observation set: the true parameter
// values used to generate it, the initial state, the time span, and the
// noise level.
type DataConfig struct {
	TrueParams []float64 `yaml:"true_params"`
	InitState  []float64 `yaml:"init_state"`
	T0         float64   `yaml:"t0"`
	T1         float64   `yaml:"t1"`
	ObsCount   int       `yaml:"obs_count"`
	Sigma      float64   `yaml:"sigma"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "pendulum",
		Integrator: "rk45",
		Backend:    "metropolis",
		Samples:    DefaultSamples,
		Warmup:     DefaultWarmup,
		Chains:     1,
		Seed:       1,
		StepSize:   DefaultStepSize,
		Leapfrog:   DefaultLeapfrog,
		Data: DataConfig{
			TrueParams: []float64{1.0, 2.5},
			InitState:  []float64{1.0, 0.1},
			T0:         0,
			T1:         DefaultT1,
			ObsCount:   DefaultObsCount,
			Sigma:      DefaultSigma,
		},
		Priors: []prior.Spec{
			{Dist: "uniform", Low: 0.0, High: 5.0},
			{Dist: "uniform", Low: 0.1, High: 10.0},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
