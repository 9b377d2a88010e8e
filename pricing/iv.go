package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/brokeberg/gexengine/options"
)

// ErrNoConvergence is returned when the implied-volatility search fails to
// land inside the acceptance band. Callers must treat the IV as
// unavailable; it is never reported as zero.
var ErrNoConvergence = errors.New("implied volatility did not converge")

const (
	ivMaxIterations = 100
	ivTolerance     = 1e-6
	ivVegaFloor     = 1e-10

	ivSeedMin = 0.01
	ivSeedMax = 5.0
	ivStepMin = 0.001
	ivStepMax = 10.0
)

// ImpliedVolatility solves for the annualized volatility that reproduces
// marketPrice under the Black-Scholes closed form.
//
// The search seeds with the Brenner-Subrahmanyam approximation and iterates
// Newton-Raphson on vega, nudging multiplicatively through flat-vega
// regions. A run that exhausts its iterations still returns the last
// estimate when it sits strictly inside (0.01, 5.0); anything else is
// ErrNoConvergence.
func ImpliedVolatility(marketPrice float64, typ options.OptionType, S, K, T, r float64) (float64, error) {
	if S <= 0 || K <= 0 || T <= 0 {
		return 0, fmt.Errorf("%w: S=%.4f K=%.4f T=%.6f", options.ErrInvalidInput, S, K, T)
	}
	if marketPrice <= 0 {
		return 0, fmt.Errorf("%w: market price %.4f", ErrNoConvergence, marketPrice)
	}

	// No-arbitrage floor: a price below discounted intrinsic has no IV.
	var intrinsic float64
	if typ == options.Call {
		intrinsic = math.Max(S-K*math.Exp(-r*T), 0)
	} else {
		intrinsic = math.Max(K*math.Exp(-r*T)-S, 0)
	}
	if marketPrice < intrinsic-ivTolerance {
		return 0, fmt.Errorf("%w: price %.4f below intrinsic %.4f", ErrNoConvergence, marketPrice, intrinsic)
	}

	// Brenner & Subrahmanyam (1988) seed.
	sigma := math.Sqrt(2*math.Pi/T) * marketPrice / S
	sigma = clamp(sigma, ivSeedMin, ivSeedMax)

	for i := 0; i < ivMaxIterations; i++ {
		diff := Price(typ, S, K, T, r, sigma) - marketPrice
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}

		vega := rawVega(S, K, T, r, sigma)
		if math.Abs(vega) < ivVegaFloor {
			// Flat region: nudge instead of dividing by a near-zero vega.
			if diff > 0 {
				sigma *= 0.9
			} else {
				sigma *= 1.1
			}
			sigma = clamp(sigma, ivStepMin, ivStepMax)
			continue
		}

		sigma = clamp(sigma-diff/vega, ivStepMin, ivStepMax)
	}

	// Best-effort: accept the last estimate only inside a sane band.
	if sigma > ivSeedMin && sigma < ivSeedMax {
		return sigma, nil
	}
	return 0, fmt.Errorf("%w: final estimate %.4f outside acceptance band", ErrNoConvergence, sigma)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
