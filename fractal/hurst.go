package fractal

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/brokeberg/gexengine/options"
)

// NeutralHurst is the random-walk exponent returned whenever the series is
// too short or too flat to estimate.
const NeutralHurst = 0.5

// Regime classification bands.
const (
	PersistentMin     = 0.55
	AntiPersistentMax = 0.45
)

// Regime labels a Hurst exponent band.
type Regime string

const (
	RegimePersistent    Regime = "PERSISTENT"
	RegimeMeanReverting Regime = "MEAN_REVERTING"
	RegimeRandomWalk    Regime = "RANDOM_WALK"
)

// ClassifyHurst maps an exponent onto its regime band.
func ClassifyHurst(h float64) Regime {
	switch {
	case h > PersistentMin:
		return RegimePersistent
	case h < AntiPersistentMax:
		return RegimeMeanReverting
	default:
		return RegimeRandomWalk
	}
}

// HurstExponent estimates the Hurst exponent of a close-price series by
// rescaled-range analysis on log returns over the trailing year.
//
// R/S is averaged over non-overlapping blocks for power-of-two window sizes
// from 8 up to half the series, and H is the OLS slope of log(R/S) against
// log(window). Series shorter than options.MinHistoryPoints, or with
// constant prices, return NeutralHurst.
func HurstExponent(closes options.PriceHistory) float64 {
	rets := closes.Tail(options.FullHistoryWindow).LogReturns()
	if len(rets) < options.MinHistoryPoints-1 {
		return NeutralHurst
	}

	var logN, logRS []float64
	for window := 8; window <= len(rets)/2; window *= 2 {
		rs := averageRescaledRange(rets, window)
		if rs <= 0 {
			continue
		}
		logN = append(logN, math.Log(float64(window)))
		logRS = append(logRS, math.Log(rs))
	}
	if len(logN) < 2 {
		return NeutralHurst
	}

	_, slope := stat.LinearRegression(logN, logRS, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return NeutralHurst
	}
	return slope
}

// averageRescaledRange computes the mean R/S statistic across the
// non-overlapping blocks of the given size. Blocks with zero dispersion are
// skipped; a series with no usable block yields 0.
func averageRescaledRange(rets []float64, window int) float64 {
	var sum float64
	var count int

	for start := 0; start+window <= len(rets); start += window {
		block := rets[start : start+window]
		mean := stat.Mean(block, nil)

		// Range of the mean-adjusted cumulative sum.
		var cum, minCum, maxCum float64
		for _, r := range block {
			cum += r - mean
			if cum < minCum {
				minCum = cum
			}
			if cum > maxCum {
				maxCum = cum
			}
		}

		sd := stat.StdDev(block, nil)
		if sd <= 0 {
			continue
		}
		sum += (maxCum - minCum) / sd
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
