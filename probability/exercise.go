package probability

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/brokeberg/gexengine/options"
	"github.com/brokeberg/gexengine/pricing"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ExerciseProbability compares the three models' estimates that a contract
// finishes in the money.
type ExerciseProbability struct {
	BlackScholes float64 `json:"prob_black_scholes"`
	Fractal      float64 `json:"prob_fractal"`
	MonteCarlo   float64 `json:"prob_monte_carlo"`
}

// ExerciseBS is the risk-neutral in-the-money probability: N(d2) for calls,
// N(-d2) for puts. Degenerate inputs collapse to the intrinsic indicator.
func ExerciseBS(typ options.OptionType, S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return itmIndicator(typ, S, K)
	}
	d2 := pricing.D2(S, K, T, r, sigma)
	if typ == options.Call {
		return stdNormal.CDF(d2)
	}
	return stdNormal.CDF(-d2)
}

// ExerciseFractal replaces the T scaling of the diffusion variance with
// T^{2H} (fractional Brownian motion scaling). At hurst=0.5 it reduces to
// ExerciseBS.
func ExerciseFractal(typ options.OptionType, S, K, T, r, sigma, hurst float64) float64 {
	if T <= 0 || sigma <= 0 {
		return itmIndicator(typ, S, K)
	}
	if S <= 0 || K <= 0 {
		return 0
	}
	th := math.Pow(T, hurst)
	d2 := (math.Log(S/K) + r*T - 0.5*sigma*sigma*math.Pow(T, 2*hurst)) / (sigma * th)
	if typ == options.Call {
		return stdNormal.CDF(d2)
	}
	return stdNormal.CDF(-d2)
}

func itmIndicator(typ options.OptionType, S, K float64) float64 {
	if typ == options.Call {
		if S > K {
			return 1
		}
		return 0
	}
	if S < K {
		return 1
	}
	return 0
}
