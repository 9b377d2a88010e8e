package fractal

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/brokeberg/gexengine/options"
)

const (
	smaWindow      = 21
	momentumWindow = 30
	slopeWindow    = 60
)

// TrendFilters are three independent bullish/bearish reads on the recent
// price series.
type TrendFilters struct {
	PriceAboveSMA21 bool    `json:"price_above_sma21"`
	SMA21           float64 `json:"sma_21"`

	MomentumPositive bool    `json:"momentum_positive"`
	Momentum30Pct    float64 `json:"momentum_30_pct"`

	SlopePositive bool    `json:"slope_positive"`
	Slope         float64 `json:"slope"`
	RSquared      float64 `json:"r_squared"`
}

// AllBullish reports whether every filter agrees on the upside.
func (f TrendFilters) AllBullish() bool {
	return f.PriceAboveSMA21 && f.MomentumPositive && f.SlopePositive
}

// BullishCount returns how many of the three filters are bullish.
func (f TrendFilters) BullishCount() int {
	n := 0
	if f.PriceAboveSMA21 {
		n++
	}
	if f.MomentumPositive {
		n++
	}
	if f.SlopePositive {
		n++
	}
	return n
}

// CheckTrendFilters evaluates the three filters over the trailing window:
// last close vs 21-day SMA, 30-day momentum sign, and the sign of an OLS
// slope over the last 60 closes together with its R-squared. Short series
// degrade to whatever filters remain computable; everything defaults to
// bearish/zero rather than failing.
func CheckTrendFilters(closes options.PriceHistory) TrendFilters {
	var f TrendFilters
	last := closes.Last()
	if last <= 0 {
		return f
	}

	if len(closes) >= smaWindow {
		tail := closes.Tail(smaWindow)
		f.SMA21 = stat.Mean(tail, nil)
		f.PriceAboveSMA21 = last > f.SMA21
	}

	if len(closes) > momentumWindow {
		ref := closes[len(closes)-1-momentumWindow]
		if ref > 0 {
			f.Momentum30Pct = (last/ref - 1) * 100
			f.MomentumPositive = f.Momentum30Pct > 0
		}
	}

	if window := closes.Tail(slopeWindow); len(window) >= 3 {
		xs := make([]float64, len(window))
		for i := range xs {
			xs[i] = float64(i)
		}
		alpha, slope := stat.LinearRegression(xs, window, nil, false)
		r2 := stat.RSquared(xs, window, nil, alpha, slope)
		if !math.IsNaN(slope) {
			f.Slope = slope
			f.SlopePositive = slope > 0
		}
		if !math.IsNaN(r2) {
			f.RSquared = r2
		}
	}

	return f
}

// HistoricalVolatility is the annualized close-to-close volatility over the
// trailing year, computed from log returns. Series too short to estimate
// return 0.
func HistoricalVolatility(closes options.PriceHistory) float64 {
	rets := closes.Tail(options.FullHistoryWindow).LogReturns()
	if len(rets) < 2 {
		return 0
	}
	return stat.StdDev(rets, nil) * math.Sqrt(252)
}

// FractalProfile bundles the fractal read of a single underlying.
type FractalProfile struct {
	Hurst                float64      `json:"hurst_exponent"`
	Regime               Regime       `json:"regime"`
	HistoricalVolatility float64      `json:"historical_volatility"`
	Filters              TrendFilters `json:"trend_filters"`
}

// Profile runs the full fractal read over one price history. It never
// fails: insufficient data yields the neutral profile.
func Profile(closes options.PriceHistory) FractalProfile {
	h := HurstExponent(closes)
	return FractalProfile{
		Hurst:                h,
		Regime:               ClassifyHurst(h),
		HistoricalVolatility: HistoricalVolatility(closes),
		Filters:              CheckTrendFilters(closes),
	}
}
