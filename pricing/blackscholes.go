package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/brokeberg/gexengine/options"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// D1 computes the Black-Scholes d1 parameter. Degenerate inputs (T<=0 or
// sigma<=0) return 0 so callers collapse to intrinsic value instead of
// propagating NaN.
func D1(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 || S <= 0 || K <= 0 {
		return 0
	}
	return (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
}

// D2 computes the Black-Scholes d2 parameter.
func D2(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 || S <= 0 || K <= 0 {
		return 0
	}
	return D1(S, K, T, r, sigma) - sigma*math.Sqrt(T)
}

// CallPrice returns the European call price, collapsing to intrinsic value
// on degenerate inputs.
func CallPrice(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return math.Max(S-K, 0)
	}
	d1 := D1(S, K, T, r, sigma)
	d2 := d1 - sigma*math.Sqrt(T)
	return S*stdNormal.CDF(d1) - K*math.Exp(-r*T)*stdNormal.CDF(d2)
}

// PutPrice returns the European put price, collapsing to intrinsic value on
// degenerate inputs.
func PutPrice(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return math.Max(K-S, 0)
	}
	d1 := D1(S, K, T, r, sigma)
	d2 := d1 - sigma*math.Sqrt(T)
	return K*math.Exp(-r*T)*stdNormal.CDF(-d2) - S*stdNormal.CDF(-d1)
}

// Price dispatches on option type.
func Price(typ options.OptionType, S, K, T, r, sigma float64) float64 {
	if typ == options.Call {
		return CallPrice(S, K, T, r, sigma)
	}
	return PutPrice(S, K, T, r, sigma)
}

// Gamma is identical for calls and puts. It is strictly non-negative and
// collapses to 0 on degenerate inputs.
func Gamma(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 || S <= 0 {
		return 0
	}
	d1 := D1(S, K, T, r, sigma)
	return stdNormal.Prob(d1) / (S * sigma * math.Sqrt(T))
}

// Vega returns price sensitivity per one percentage-point change in
// volatility, identical for calls and puts.
func Vega(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 || S <= 0 {
		return 0
	}
	d1 := D1(S, K, T, r, sigma)
	return S * stdNormal.Prob(d1) * math.Sqrt(T) / 100
}

// rawVega is the unscaled dPrice/dSigma used by the Newton iteration.
func rawVega(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 || S <= 0 {
		return 0
	}
	d1 := D1(S, K, T, r, sigma)
	return S * stdNormal.Prob(d1) * math.Sqrt(T)
}

// Greeks computes the full per-contract sensitivity set.
func Greeks(typ options.OptionType, S, K, T, r, sigma float64) options.PricedGreeks {
	if T <= 0 || sigma <= 0 {
		return options.PricedGreeks{}
	}

	d1 := D1(S, K, T, r, sigma)
	d2 := d1 - sigma*math.Sqrt(T)

	var delta, thetaAnnual float64
	if typ == options.Call {
		delta = stdNormal.CDF(d1)
		thetaAnnual = -(S*stdNormal.Prob(d1)*sigma)/(2*math.Sqrt(T)) -
			r*K*math.Exp(-r*T)*stdNormal.CDF(d2)
	} else {
		delta = stdNormal.CDF(d1) - 1
		thetaAnnual = -(S*stdNormal.Prob(d1)*sigma)/(2*math.Sqrt(T)) +
			r*K*math.Exp(-r*T)*stdNormal.CDF(-d2)
	}

	return options.PricedGreeks{
		Delta:       delta,
		Gamma:       Gamma(S, K, T, r, sigma),
		Vega:        Vega(S, K, T, r, sigma),
		ThetaAnnual: thetaAnnual,
		ThetaDaily:  thetaAnnual / 365,
	}
}
