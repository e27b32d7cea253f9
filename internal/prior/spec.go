package prior

import (
	"fmt"
	"math/rand/v2"
)

// Spec is the declarative (yaml/flag) form of one prior.
type Spec struct {
	Dist   string  `yaml:"dist" json:"dist"`
	Low    float64 `yaml:"low" json:"low,omitempty"`
	High   float64 `yaml:"high" json:"high,omitempty"`
	Mean   float64 `yaml:"mean" json:"mean,omitempty"`
	Stddev float64 `yaml:"stddev" json:"stddev,omitempty"`
}

// Build turns a spec into a distribution drawing from src.
func (sp Spec) Build(src rand.Source) (Dist, error) {
	switch sp.Dist {
	case "uniform":
		if sp.High <= sp.Low {
			return nil, fmt.Errorf("uniform prior needs low < high, got [%g, %g]", sp.Low, sp.High)
		}
		return Uniform(sp.Low, sp.High, src), nil
	case "normal":
		if sp.Stddev <= 0 {
			return nil, fmt.Errorf("normal prior needs stddev > 0, got %g", sp.Stddev)
		}
		return Normal(sp.Mean, sp.Stddev, src), nil
	case "lognormal":
		if sp.Stddev <= 0 {
			return nil, fmt.Errorf("lognormal prior needs stddev > 0, got %g", sp.Stddev)
		}
		return LogNormal(sp.Mean, sp.Stddev, src), nil
	default:
		return nil, fmt.Errorf("unknown prior distribution: %q", sp.Dist)
	}
}

func (sp Spec) String() string {
	switch sp.Dist {
	case "uniform":
		return fmt.Sprintf("uniform(%g, %g)", sp.Low, sp.High)
	case "normal":
		return fmt.Sprintf("normal(%g, %g)", sp.Mean, sp.Stddev)
	case "lognormal":
		return fmt.Sprintf("lognormal(%g, %g)", sp.Mean, sp.Stddev)
	default:
		return sp.Dist
	}
}

// BuildSet builds a prior set from specs, all drawing from src.
func BuildSet(specs []Spec, src rand.Source) (Set, error) {
	set := make(Set, len(specs))
	for i, sp := range specs {
		d, err := sp.Build(src)
		if err != nil {
			return nil, fmt.Errorf("prior %d: %w", i, err)
		}
		set[i] = d
	}
	return set, nil
}
