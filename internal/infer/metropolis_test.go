package infer

import (
	"math"
	"testing"
)

func TestAcceptProposal(t *testing.T) {
	negInf := math.Inf(-1)

	tests := []struct {
		name     string
		propLogp float64
		curLogp  float64
		u        float64
		want     bool
	}{
		{"uphill always accepted", -5, -10, 0.999, true},
		{"downhill accepted on small draw", -10.5, -10, 0.1, true},
		{"downhill rejected on large draw", -15, -10, 0.999, false},
		{"zero density rejected", negInf, -10, 0.5, false},
		{"zero density rejected on zero draw", negInf, -10, 0, false},
		{"nan rejected on zero draw", math.NaN(), -10, 0, false},
		{"escape from zero-density start", -10, negInf, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := acceptProposal(tt.propLogp, tt.curLogp, tt.u); got != tt.want {
				t.Errorf("acceptProposal(%g, %g, %g) = %v, want %v",
					tt.propLogp, tt.curLogp, tt.u, got, tt.want)
			}
		})
	}
}
