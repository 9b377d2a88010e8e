package options

import "math"

// PriceHistory is a chronological series of daily closing prices, oldest
// first. The fractal estimators expect at least MinHistoryPoints
// observations and use at most the trailing FullHistoryWindow.
type PriceHistory []float64

const (
	MinHistoryPoints  = 50
	FullHistoryWindow = 252
)

// Tail returns the trailing n observations (or the whole series when it is
// shorter).
func (h PriceHistory) Tail(n int) PriceHistory {
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// LogReturns computes successive log returns, dropping observations with
// non-positive prices.
func (h PriceHistory) LogReturns() []float64 {
	var rets []float64
	for i := 1; i < len(h); i++ {
		if h[i-1] > 0 && h[i] > 0 {
			rets = append(rets, math.Log(h[i]/h[i-1]))
		}
	}
	return rets
}

// Last returns the most recent close, or 0 for an empty series.
func (h PriceHistory) Last() float64 {
	if len(h) == 0 {
		return 0
	}
	return h[len(h)-1]
}
